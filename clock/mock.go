// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import "time"

// Mock is a Clock whose instant is set explicitly by a test. It never
// mutates global state; each test owns its own Mock.
type Mock struct {
	now *time.Time
	loc *time.Location
}

// NewMock returns a Mock fixed at now. now's own location is used as the
// mock's local zone; Set and Advance change only the instant, not the
// zone.
func NewMock(now time.Time) *Mock {
	loc := now.Location()
	return &Mock{now: &now, loc: loc}
}

// Set moves the mock's current instant.
func (m *Mock) Set(now time.Time) {
	*m.now = now
}

// Advance moves the mock's current instant forward by d.
func (m *Mock) Advance(d time.Duration) {
	*m.now = m.now.Add(d)
}

// NowLocal returns the mock's instant in its configured local zone,
// truncated to the second.
func (m *Mock) NowLocal() time.Time {
	return m.now.In(m.loc).Truncate(time.Second)
}

// NowIn returns the mock's instant expressed in loc, truncated to the
// second.
func (m *Mock) NowIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = m.loc
	}
	return m.now.In(loc).Truncate(time.Second)
}

// Localize re-expresses naive's wall-clock fields as an instant in loc.
func (m *Mock) Localize(naive time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = m.loc
	}
	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, loc)
}
