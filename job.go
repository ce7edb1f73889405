// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Unit is the base time unit of a job's cadence.
type Unit int

const (
	unitUnset Unit = iota
	Seconds
	Minutes
	Hours
	Days
	Weeks
)

func (u Unit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	case Weeks:
		return "weeks"
	default:
		return "unset"
	}
}

// oneUnit returns the calendar-insensitive duration of one u: a day is
// always 86400s and a week 7*86400s, with no DST adjustment baked into
// the base cadence (the later wall-clock snap handles DST explicitly).
func oneUnit(u Unit) time.Duration {
	switch u {
	case Seconds:
		return time.Second
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	case Weeks:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Outcome is the tagged variant a Task returns to tell the dispatcher
// whether to keep the job scheduled. This replaces identity comparison
// against a singleton cancel sentinel with an explicit, exhaustive
// type, per the redesign note carried into this package.
type Outcome int

const (
	// Continue reschedules the job for its next period.
	Continue Outcome = iota
	// Cancel unschedules the job; it is removed from the registry.
	Cancel
)

// Task is the unit of work bound to a Job. ctx is the context passed to
// RunPending or RunAll (for AsyncScheduler, one derived from it). A
// returned error is a runtime
// callable error: it is logged and does not, by itself, cancel the
// job, only Outcome does.
type Task func(ctx context.Context) (Outcome, error)

// FromFunc adapts a plain func() into a Task that always continues and
// never errors, the common case of scheduling an ordinary function.
func FromFunc(f func()) Task {
	return func(context.Context) (Outcome, error) {
		f()
		return Continue, nil
	}
}

// atClock is the wall-clock anchor (at_time).
type atClock struct {
	hour, minute, second int
}

// jobSpec is the declarative recurrence, accumulated by a Builder and
// consumed by computeNext. It is immutable once a Job is installed.
type jobSpec struct {
	interval int
	latest   int // 0 means unset
	unit     Unit
	weekday  *time.Weekday // weekday_anchor
	atTime   *atClock
	timezone *time.Location // nil => host local zone
	deadline *time.Time
	tags     map[string]struct{}
	task     Task
}

func (s *jobSpec) hasWeekday() bool { return s.weekday != nil }

// Job is the installed, runtime state of a scheduled recurrence. A Job
// is returned by Builder.Do and is safe to read concurrently; only the
// owning Scheduler/AsyncScheduler mutates it.
type Job struct {
	id   string
	spec *jobSpec

	mu      sync.Mutex
	index   int // heap index, -1 when not installed
	lastRun time.Time
	nextRun time.Time
	period  time.Duration
}

// ID returns the job's stable identifier. Handles are UUIDs rather than
// bare pointers so a host can log or compare a handle without reaching
// into the job's private fields.
func (j *Job) ID() string { return j.id }

// Tags returns a defensive copy of the job's tag set.
func (j *Job) Tags() []string {
	out := make([]string, 0, len(j.spec.tags))
	for t := range j.spec.tags {
		out = append(out, t)
	}
	return out
}

// HasTag reports whether tag was attached to the job.
func (j *Job) HasTag(tag string) bool {
	_, ok := j.spec.tags[tag]
	return ok
}

// LastRun returns the instant of the job's last execution, or the zero
// Time if it has never run.
func (j *Job) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// NextRun returns the instant at which the job is next due.
func (j *Job) NextRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextRun
}

// Period returns the duration chosen for the job's current cycle. It
// may differ run to run when the job was built with To(latest).
func (j *Job) Period() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.period
}

// Unit returns the job's configured time unit.
func (j *Job) Unit() Unit { return j.spec.unit }

// Interval returns the job's configured interval.
func (j *Job) Interval() int { return j.spec.interval }

func (j *Job) setNext(next time.Time, period time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextRun = next
	j.period = period
}

func (j *Job) setLastRun(t time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = t
}

func newJobID() string {
	return uuid.NewString()
}
