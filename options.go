// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/anchortime/schedule/clock"
)

// Option configures a Scheduler or AsyncScheduler at construction time,
// via the functional-options pattern (optionFunc implementing a private
// apply method).
type Option interface {
	apply(*base)
}

// optionFunc wraps a func so it satisfies the Option interface.
type optionFunc func(*base)

func (f optionFunc) apply(b *base) { f(b) }

// WithLocation configures the host zone a scheduler computes "now" and
// unzoned at_time values in. The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(b *base) {
		b.loc = loc
	})
}

// WithClock replaces a scheduler's time source. Tests should use this
// with a clock.Mock instead of sleeping on a wall clock.
func WithClock(c clock.Clock) Option {
	return optionFunc(func(b *base) {
		b.clock = c
	})
}

// WithLogger replaces a scheduler's logger. The default logs nothing
// above zerolog.Disabled.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(b *base) {
		b.logger = logger
	})
}

// WithErrorHandler installs a callback invoked whenever a Task returns
// a non-nil error, in addition to the default debug-level log.
func WithErrorHandler(handler func(job *Job, err error)) Option {
	return optionFunc(func(b *base) {
		b.onError = handler
	})
}

// WithFoldPolicy sets how a timezone-anchored job resolves a wall-clock
// time that occurs twice across a DST fall-back transition. The
// default is FoldFirst.
func WithFoldPolicy(p FoldPolicy) Option {
	return optionFunc(func(b *base) {
		b.fold = p
	})
}

// WithPanicHandler configures the panic recovery handler. A panicking
// Task is always recovered and its job stays scheduled; without this
// option the panic is logged at error level, and with it the panic
// value is passed to handler instead.
func WithPanicHandler(handler func(job *Job, recovered interface{})) Option {
	return optionFunc(func(b *base) {
		b.onPanic = handler
	})
}
