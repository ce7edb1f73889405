// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anchortime/schedule/clock"
)

// base is the state shared by Scheduler and AsyncScheduler: the job
// registry, time source, and ambient-stack knobs configured through
// Option. Neither dispatcher owns a long-lived goroutine. Scheduler
// drives the registry from the goroutine that calls RunPending/RunAll;
// AsyncScheduler.RunPending starts one goroutine per due job and waits
// for all of them before returning.
type base struct {
	mu  sync.Mutex
	reg *registry

	clock clock.Clock
	loc   *time.Location

	fold    FoldPolicy
	logger  zerolog.Logger
	onError func(job *Job, err error)
	onPanic func(job *Job, recovered interface{})
}

func newBase(options ...Option) *base {
	b := &base{
		reg:    newRegistry(),
		logger: zerolog.Nop(),
	}
	for _, o := range options {
		o.apply(b)
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.clock == nil {
		b.clock = clock.NewSystem(b.loc)
	}
	if b.onPanic == nil {
		b.onPanic = func(job *Job, r interface{}) {
			b.logger.Error().
				Str("job_id", job.ID()).
				Strs("tags", job.Tags()).
				Interface("panic", r).
				Msg("task panicked")
		}
	}
	return b
}

// dueSnapshot returns every installed job whose NextRun is not after
// now, ordered earliest-first. Shared by Scheduler.RunPending and
// AsyncScheduler.RunPending.
func (b *base) dueSnapshot() []*Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.clock.NowLocal()
	due := make([]*Job, 0, b.reg.len())
	for _, j := range b.reg.all() {
		if !j.NextRun().After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRun().Before(due[j].NextRun()) })
	return due
}

// Every starts a fluent Builder chain for a new job run every interval
// units (the unit itself is chosen by the next method in the chain,
// e.g. .Seconds(), .Days(), .Monday()). interval defaults to 1 when
// omitted, matching a bare Every().Days()-style call.
func (b *base) Every(interval ...int) *Builder {
	n := 1
	if len(interval) > 0 {
		n = interval[0]
	}
	return newBuilder(b, n)
}

// CancelJob removes job from the registry. A no-op if job was already
// removed or belongs to a different scheduler.
func (b *base) CancelJob(job *Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.remove(job)
}

// Clear removes every job carrying tag, or every job when tag is "".
func (b *base) Clear(tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.clear(tag)
}

// GetJobs returns a defensive snapshot of every installed job carrying
// tag, or every installed job when tag is "".
func (b *base) GetJobs(tag string) []*Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.byTag(tag)
}

// NextRun returns the NextRun of the earliest job carrying tag (or the
// earliest job overall when tag is ""), and false when there is none.
func (b *base) NextRun(tag string) (next time.Time, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	jobs := b.reg.byTag(tag)
	var earliest *Job
	for _, j := range jobs {
		if earliest == nil || j.NextRun().Before(earliest.NextRun()) {
			earliest = j
		}
	}
	if earliest == nil {
		return time.Time{}, false
	}
	return earliest.NextRun(), true
}

// IdleSeconds returns the duration until the earliest installed job is
// due, or 0 when no job is installed. It may be negative when a job is
// already overdue.
func (b *base) IdleSeconds() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.idleSeconds(b.clock)
}

// Location returns the host zone this scheduler resolves "now" and
// unzoned at_time values in.
func (b *base) Location() *time.Location { return b.loc }

// Clock returns this scheduler's time source.
func (b *base) Clock() clock.Clock { return b.clock }
