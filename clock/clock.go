// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package clock isolates "now" so the recurrence engine and the
// dispatchers can be driven deterministically from tests.
package clock

import "time"

// Clock is the scheduler's only source of the current instant. Tests
// override it by injecting a different implementation; production code
// always uses System.
type Clock interface {
	// NowLocal returns the current instant in the clock's local zone,
	// truncated to the second.
	NowLocal() time.Time
	// NowIn returns the current instant expressed in loc, truncated to
	// the second.
	NowIn(loc *time.Location) time.Time
	// Localize interprets a naive (zone-less) instant's wall-clock
	// fields in loc.
	Localize(naive time.Time, loc *time.Location) time.Time
}

// System is the production Clock, backed by time.Now.
type System struct {
	// Location is the host's local zone. Defaults to time.Local.
	Location *time.Location
}

// NewSystem returns a System clock anchored to loc. A nil loc defaults
// to time.Local.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{Location: loc}
}

func (s *System) loc() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// NowLocal returns time.Now in the System's configured location,
// truncated to the second per the scheduler's seconds-resolution
// invariant.
func (s *System) NowLocal() time.Time {
	return time.Now().In(s.loc()).Truncate(time.Second)
}

// NowIn returns time.Now expressed in loc, truncated to the second.
func (s *System) NowIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = s.loc()
	}
	return time.Now().In(loc).Truncate(time.Second)
}

// Localize re-expresses naive's wall-clock fields as an instant in loc.
func (s *System) Localize(naive time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = s.loc()
	}
	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, loc)
}
