// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"strconv"
	"strings"
	"time"
)

// weekdayByName maps the lower-case day names used by the singular
// weekday builder methods to their time.Weekday.
var weekdayByName = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// TimeOfDay is a wall-clock moment with no associated date, accepted by
// Builder.Until to mean "today at this time".
type TimeOfDay struct {
	Hour, Minute, Second int
}

// Builder is the fluent configuration surface. It accumulates
// a jobSpec, validating as it goes; the first validation failure is
// stuck on the builder and returned by Do, so a caller never has to
// check every intermediate method call, only the one that finalizes
// the chain. Grounded on the Python library's Job properties/at/to/
// until/do, translated from Python property access into Go method
// chaining.
type Builder struct {
	base *base
	spec *jobSpec
	err  *Error
}

func newBuilder(b *base, interval int) *Builder {
	return &Builder{
		base: b,
		spec: &jobSpec{
			interval: interval,
			tags:     make(map[string]struct{}),
		},
	}
}

func (b *Builder) fail(err *Error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Seconds sets the job's unit to seconds.
func (b *Builder) Seconds() *Builder { b.spec.unit = Seconds; return b }

// Minutes sets the job's unit to minutes.
func (b *Builder) Minutes() *Builder { b.spec.unit = Minutes; return b }

// Hours sets the job's unit to hours.
func (b *Builder) Hours() *Builder { b.spec.unit = Hours; return b }

// Days sets the job's unit to days.
func (b *Builder) Days() *Builder { b.spec.unit = Days; return b }

// Weeks sets the job's unit to weeks.
func (b *Builder) Weeks() *Builder { b.spec.unit = Weeks; return b }

// Second is a singular alias for Seconds that additionally asserts
// interval == 1.
func (b *Builder) Second() *Builder { return b.singular("second", b.Seconds) }

// Minute is a singular alias for Minutes that additionally asserts
// interval == 1.
func (b *Builder) Minute() *Builder { return b.singular("minute", b.Minutes) }

// Hour is a singular alias for Hours that additionally asserts
// interval == 1.
func (b *Builder) Hour() *Builder { return b.singular("hour", b.Hours) }

// Day is a singular alias for Days that additionally asserts
// interval == 1.
func (b *Builder) Day() *Builder { return b.singular("day", b.Days) }

// Week is a singular alias for Weeks that additionally asserts
// interval == 1.
func (b *Builder) Week() *Builder { return b.singular("week", b.Weeks) }

func (b *Builder) singular(name string, plural func() *Builder) *Builder {
	if b.spec.interval != 1 {
		return b.fail(newIntervalError("use %ss instead of %s for interval != 1", name, name))
	}
	return plural()
}

// weekday sets the weekday anchor for one of the singular day-name
// methods (Monday ... Sunday), which are only valid for interval == 1.
func (b *Builder) weekday(name string) *Builder {
	if b.spec.interval != 1 {
		return b.fail(newIntervalError(
			"scheduling .%s() is only allowed for weekly jobs with interval 1", name))
	}
	wd := weekdayByName[name]
	b.spec.weekday = &wd
	return b.Weeks()
}

// Monday anchors the job to run weekly on Monday.
func (b *Builder) Monday() *Builder { return b.weekday("monday") }

// Tuesday anchors the job to run weekly on Tuesday.
func (b *Builder) Tuesday() *Builder { return b.weekday("tuesday") }

// Wednesday anchors the job to run weekly on Wednesday.
func (b *Builder) Wednesday() *Builder { return b.weekday("wednesday") }

// Thursday anchors the job to run weekly on Thursday.
func (b *Builder) Thursday() *Builder { return b.weekday("thursday") }

// Friday anchors the job to run weekly on Friday.
func (b *Builder) Friday() *Builder { return b.weekday("friday") }

// Saturday anchors the job to run weekly on Saturday.
func (b *Builder) Saturday() *Builder { return b.weekday("saturday") }

// Sunday anchors the job to run weekly on Sunday.
func (b *Builder) Sunday() *Builder { return b.weekday("sunday") }

// To schedules the job to run at a randomized interval uniformly drawn
// from [interval, latest] each cycle.
func (b *Builder) To(latest int) *Builder {
	if latest < b.spec.interval {
		return b.fail(newValueError("`latest` (%d) is less than `interval` (%d)", latest, b.spec.interval))
	}
	b.spec.latest = latest
	return b
}

// Tag attaches one or more tags to the job. Duplicate tags are
// coalesced.
func (b *Builder) Tag(tags ...string) *Builder {
	for _, t := range tags {
		b.spec.tags[t] = struct{}{}
	}
	return b
}

// At specifies the wall-clock time the job should run at. The accepted
// string format depends on the unit already selected (or the weekday
// anchor): "HH:MM"/"HH:MM:SS" for days/weekday jobs, "MM:SS"/":MM" for
// hourly jobs (a bare ":MM" names a minute-in-hour, not a second), and
// ":SS" for minute jobs. An optional IANA zone name interprets at_time
// in that zone instead of the host's local zone.
func (b *Builder) At(timeStr string, tz ...string) *Builder {
	if b.err != nil {
		return b
	}
	if b.spec.unit != Days && b.spec.unit != Hours && b.spec.unit != Minutes && !b.spec.hasWeekday() {
		return b.fail(newValueError("at() requires unit in {days, hours, minutes} or a weekday anchor"))
	}
	at, err := parseAtTime(timeStr, b.spec.unit, b.spec.hasWeekday())
	if err != nil {
		return b.fail(err)
	}
	b.spec.atTime = &at
	if len(tz) > 0 && tz[0] != "" {
		loc, lerr := time.LoadLocation(tz[0])
		if lerr != nil {
			return b.fail(wrapValueError(lerr, "unknown timezone %q", tz[0]))
		}
		b.spec.timezone = loc
	}
	return b
}

// Until schedules the job to be cancelled once its next computed run
// would fall after the given deadline. v may be a time.Time, a
// time.Duration (added to now), a TimeOfDay (combined with today's
// date), or a string in "2006-01-02 15:04:05", "2006-01-02 15:04",
// "2006-01-02", "15:04:05", or "15:04" layout.
func (b *Builder) Until(v interface{}) *Builder {
	if b.err != nil {
		return b
	}
	now := b.base.clock.NowLocal()
	var deadline time.Time
	switch t := v.(type) {
	case time.Time:
		deadline = t
	case time.Duration:
		deadline = now.Add(t)
	case TimeOfDay:
		deadline = time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, t.Second, 0, now.Location())
	case string:
		d, err := parseUntilString(t, now)
		if err != nil {
			return b.fail(err)
		}
		deadline = d
	default:
		return b.fail(newValueError("until() takes a time.Time, time.Duration, TimeOfDay, or string"))
	}
	if !deadline.After(now) {
		return b.fail(newValueError("cannot schedule a job to run until a time in the past"))
	}
	b.spec.deadline = &deadline
	return b
}

// Do binds task as the job's callable, computes its initial NextRun,
// installs it into the owning scheduler's registry, and returns its
// handle. Do is the only method that finalizes the chain; every
// validation error detected by an earlier method in the chain surfaces
// here.
func (b *Builder) Do(task Task) (*Job, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.spec.unit == unitUnset {
		return nil, newScheduleError("unable to finalize: no unit was set before Do()")
	}
	if task == nil {
		return nil, newScheduleError("unable to finalize: Do() requires a non-nil task")
	}
	b.spec.task = task

	b.base.mu.Lock()
	defer b.base.mu.Unlock()

	next, period, err := computeNext(b.spec, b.base.clock.NowLocal(), b.base.loc, b.base.fold)
	if err != nil {
		return nil, err
	}

	job := &Job{id: newJobID(), spec: b.spec, index: -1}
	job.setNext(next, period)
	b.base.reg.install(job)
	return job, nil
}

func parseAtTime(s string, unit Unit, hasWeekday bool) (atClock, error) {
	switch {
	case unit == Days || hasWeekday:
		return parseHMS(s)
	case unit == Hours:
		return parseHourField(s)
	case unit == Minutes:
		return parseMinuteField(s)
	default:
		return atClock{}, newValueError("at() is not valid for unit %s", unit)
	}
}

func parseHMS(s string) (atClock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return atClock{}, newValueError("invalid time format for a daily job (expected HH:MM or HH:MM:SS, got %q)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return atClock{}, newValueError("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return atClock{}, newValueError("invalid minute in %q", s)
	}
	second := 0
	if len(parts) == 3 {
		second, err = strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return atClock{}, newValueError("invalid second in %q", s)
		}
	}
	return atClock{hour: hour, minute: minute, second: second}, nil
}

func parseHourField(s string) (atClock, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return atClock{}, newValueError("invalid time format for an hourly job (expected MM:SS or :MM, got %q)", s)
	}
	if parts[0] == "" {
		// ":MM" form: the lone number names a minute-in-hour, second=0.
		minute, err := strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return atClock{}, newValueError("invalid minute in %q", s)
		}
		return atClock{minute: minute}, nil
	}
	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return atClock{}, newValueError("invalid minute in %q", s)
	}
	second, err := strconv.Atoi(parts[1])
	if err != nil || second < 0 || second > 59 {
		return atClock{}, newValueError("invalid second in %q", s)
	}
	return atClock{minute: minute, second: second}, nil
}

func parseMinuteField(s string) (atClock, error) {
	if !strings.HasPrefix(s, ":") {
		return atClock{}, newValueError("invalid time format for a minutely job (expected :SS, got %q)", s)
	}
	second, err := strconv.Atoi(s[1:])
	if err != nil || second < 0 || second > 59 {
		return atClock{}, newValueError("invalid second in %q", s)
	}
	return atClock{second: second}, nil
}

var untilLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"15:04:05",
	"15:04",
}

func parseUntilString(s string, now time.Time) (time.Time, error) {
	for _, layout := range untilLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "2006") {
			t = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		}
		return t, nil
	}
	return time.Time{}, newValueError("invalid string format for until(): %q", s)
}
