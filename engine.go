// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"math/rand"
	"time"
)

// FoldPolicy decides which occurrence of a wall-clock time that exists
// twice (a DST "fall back" fold) a timezone-anchored job resolves to.
// This is exposed scheduler-wide rather than threaded through a private
// "fixate_time" parameter.
type FoldPolicy int

const (
	// FoldFirst resolves a folded time to its earlier (pre-transition)
	// occurrence. This is the default.
	FoldFirst FoldPolicy = iota
	// FoldLast resolves a folded time to its later (post-transition)
	// occurrence.
	FoldLast
	// FoldRaise returns an error instead of silently picking an
	// occurrence.
	FoldRaise
)

// computeNext is the recurrence engine's single contract: given a
// finalized spec and a reference instant (either "now" at finalize
// time, or last_run after a firing), return the absolute instant, in
// the host's local zone, at which the job should next fire.
//
// reference doubles as "now" for the wall-clock "catch up today" rule:
// the caller always passes the current instant, whether that is the
// finalize-time now or the last_run captured at firing time.
func computeNext(spec *jobSpec, reference time.Time, hostLoc *time.Location, fold FoldPolicy) (time.Time, time.Duration, error) {
	if err := validateSpec(spec); err != nil {
		return time.Time{}, 0, err
	}

	n := spec.interval
	if spec.latest != 0 {
		n = spec.interval + rand.Intn(spec.latest-spec.interval+1)
	}
	period := time.Duration(n) * oneUnit(spec.unit)

	candidate := reference.Add(period)

	if spec.hasWeekday() {
		candidate = anchorWeekday(candidate, *spec.weekday, period)
	}

	if spec.atTime != nil {
		targetLoc := hostLoc
		zoned := candidate
		now := reference
		if spec.timezone != nil {
			targetLoc = spec.timezone
			zoned = candidate.In(targetLoc)
			now = reference.In(targetLoc)
		}

		snapped := snapAtTime(zoned, *spec.atTime, spec.unit, spec.interval, spec.hasWeekday(), now, period)

		if spec.timezone != nil {
			resolved, err := resolveDST(snapped, targetLoc, fold)
			if err != nil {
				return time.Time{}, 0, err
			}
			candidate = resolved.In(hostLoc)
		} else {
			candidate = snapped
		}
	}

	// Weekday + at_time overshoot guard: replacement may have pushed
	// the candidate into next week unnecessarily.
	if spec.hasWeekday() && spec.atTime != nil {
		if candidate.Sub(reference) >= 7*24*time.Hour {
			candidate = candidate.Add(-period)
		}
	}

	return candidate, period, nil
}

// anchorWeekday rewinds/advances candidate onto the next occurrence of
// anchor, removing the base week the cadence step already added so the
// result lands in the current or next week rather than one week later
// than intended.
func anchorWeekday(candidate time.Time, anchor time.Weekday, period time.Duration) time.Time {
	daysAhead := mondayIndex(anchor) - mondayIndex(candidate.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return candidate.Add(time.Duration(daysAhead)*24*time.Hour - period)
}

// mondayIndex re-indexes a time.Weekday (Sunday=0) to a Monday=0 scale,
// matching the order weekday anchors are listed in.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// snapAtTime accounts for the unconditional period add already having
// pushed the candidate one cycle ahead (e.g. tomorrow, for a daily
// job), so replace the fields at_time governs with its own fields, then
// pull the result back by one period when at_time's slot in the
// *current* cycle (today, for a daily job) hasn't passed yet, the
// "run today if we still can" rule. For a Days job this catch-up only
// applies when interval == 1: a job scheduled every 2+ days always
// waits for its next full cycle, it never fires today just because
// at_time hasn't passed yet. Hours/Minutes jobs have no such interval
// gate. A weekday anchor has its own overshoot guard in computeNext and
// is left untouched here. A wall-clock value that falls in a DST gap is
// moved forward by the gap's length (02:30 on a spring-forward day
// becomes 03:30).
func snapAtTime(t time.Time, at atClock, unit Unit, interval int, hasWeekday bool, now time.Time, period time.Duration) time.Time {
	hour, minute, second := t.Hour(), t.Minute(), t.Second()

	switch {
	case unit == Days || hasWeekday:
		hour, minute, second = at.hour, at.minute, at.second
	case unit == Hours:
		minute, second = at.minute, at.second
	case unit == Minutes:
		second = at.second
	}

	snapped := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, second, 0, t.Location())
	if snapped.Hour() != hour || snapped.Minute() != minute || snapped.Second() != second {
		// The wall-clock value falls in a DST gap, and time.Date may have
		// resolved it to either side of the gap. Read it with the offset in
		// force before the gap, which moves it forward by the gap's length.
		_, offBefore := snapped.Add(-3 * time.Hour).Zone()
		snapped = time.Date(t.Year(), t.Month(), t.Day(), hour, minute, second, 0, time.UTC).
			Add(-time.Duration(offBefore) * time.Second).In(t.Location())
	}

	if hasWeekday {
		return snapped
	}

	var ahead bool
	switch unit {
	case Days:
		ahead = interval == 1 && (at.hour > now.Hour() ||
			(at.hour == now.Hour() && at.minute > now.Minute()) ||
			(at.hour == now.Hour() && at.minute == now.Minute() && at.second > now.Second()))
	case Hours:
		ahead = at.minute > now.Minute() || (at.minute == now.Minute() && at.second > now.Second())
	case Minutes:
		ahead = at.second > now.Second()
	}
	if ahead {
		snapped = snapped.Add(-period)
	}
	return snapped
}

// resolveDST validates a zoned wall-clock instant against DST
// transitions in its own Location.
//
// Gap (the wall-clock value does not exist, e.g. 02:30 on a spring-
// forward day): snapAtTime has already moved such a value forward by
// the gap's length, so candidate's fields normally round-trip through
// loc. If they do not, time.Date's normalized reconstruction is
// returned as-is.
//
// Fold (the wall-clock value exists twice, e.g. 01:30 on a fall-back
// day): time.Date picks one of the two valid offsets without
// guaranteeing which. This function detects the fold by comparing the
// instant's offset against the offset a few hours either side, then
// resolves to the occurrence fold selects.
func resolveDST(candidate time.Time, loc *time.Location, fold FoldPolicy) (time.Time, error) {
	reconstructed := time.Date(candidate.Year(), candidate.Month(), candidate.Day(),
		candidate.Hour(), candidate.Minute(), candidate.Second(), 0, loc)

	if reconstructed.Hour() != candidate.Hour() || reconstructed.Minute() != candidate.Minute() {
		// Gap: the nominal wall-clock instant doesn't exist; return
		// time.Date's normalized reconstruction.
		return reconstructed, nil
	}

	_, off := reconstructed.Zone()
	_, offBefore := reconstructed.Add(-2 * time.Hour).Zone()
	_, offAfter := reconstructed.Add(2 * time.Hour).Zone()

	delta := offBefore - offAfter // seconds; positive only near a fall-back transition
	if delta <= 0 {
		return reconstructed, nil // no nearby transition, or a spring-forward (handled as a gap above)
	}

	// A fall-back transition sits within roughly 2 hours of reconstructed.
	// The candidate wall-clock value occurs twice, delta seconds apart in
	// absolute time, under offBefore and offAfter respectively. Confirm
	// the other occurrence actually reproduces the same wall-clock fields
	// before trusting it, reconstructed may simply be near, not inside,
	// the repeated window.
	first, second := reconstructed, reconstructed
	switch off {
	case offBefore:
		candidate := reconstructed.Add(time.Duration(delta) * time.Second)
		if !sameWallClock(candidate, reconstructed, loc) {
			return reconstructed, nil
		}
		second = candidate
	case offAfter:
		candidate := reconstructed.Add(-time.Duration(delta) * time.Second)
		if !sameWallClock(candidate, reconstructed, loc) {
			return reconstructed, nil
		}
		first = candidate
	default:
		return reconstructed, nil
	}

	switch fold {
	case FoldLast:
		return second, nil
	case FoldRaise:
		return time.Time{}, newScheduleError(
			"ambiguous local time %s in zone %s (occurs twice across a DST transition)",
			reconstructed.Format("2006-01-02 15:04:05"), loc)
	default:
		return first, nil
	}
}

// sameWallClock reports whether a and b, both read in loc, name the same
// year/month/day/hour/minute/second.
func sameWallClock(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day() &&
		a.Hour() == b.Hour() && a.Minute() == b.Minute() && a.Second() == b.Second()
}

// validateSpec rejects jobSpec combinations that computeNext cannot
// resolve to a sensible occurrence.
func validateSpec(spec *jobSpec) error {
	switch spec.unit {
	case Seconds, Minutes, Hours, Days, Weeks:
	default:
		return newValueError("invalid unit (valid units are seconds, minutes, hours, days, weeks)")
	}
	if spec.hasWeekday() && (spec.unit != Weeks || spec.interval != 1) {
		return newValueError("weekday anchor requires unit=weeks and interval=1")
	}
	if spec.atTime != nil {
		ok := spec.unit == Days || spec.unit == Hours || spec.unit == Minutes || spec.hasWeekday()
		if !ok {
			return newValueError("at() is not valid for unit %s without a weekday anchor", spec.unit)
		}
	}
	if spec.latest != 0 && spec.latest < spec.interval {
		return newValueError("`latest` (%d) is less than `interval` (%d)", spec.latest, spec.interval)
	}
	return nil
}
