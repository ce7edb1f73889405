// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import "fmt"

// Kind classifies an Error. IntervalError specializes ScheduleValueError,
// which in turn specializes ScheduleError, mirroring the Python library's
// exception hierarchy (schedule.job.ScheduleError / ScheduleValueError /
// IntervalError) this package was distilled from.
type Kind int

const (
	// KindSchedule is the base kind: something about the job or
	// scheduler's runtime state is wrong (e.g. Do without a unit or a
	// task, an ambiguous wall-clock time under FoldRaise).
	KindSchedule Kind = iota
	// KindValue marks a bad builder argument: bad unit, bad time
	// string, unknown timezone, a deadline already in the past.
	KindValue
	// KindInterval marks a singular-alias method (.Second(), .Monday(),
	// ...) used on a job whose interval is not 1.
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "ScheduleValueError"
	case KindInterval:
		return "IntervalError"
	default:
		return "ScheduleError"
	}
}

// Error is the single error type raised by this package. A builder
// error is recorded by the method that detects it and returned by
// Builder.Do, as are finalize errors; the partially built job is
// discarded and never installed.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of e's Kind or of a Kind that
// e's Kind specializes: every *Error matches KindSchedule, and a
// KindInterval error also matches KindValue. This lets callers write
// errors.Is(err, schedule.ErrValueError) style checks via the Kind
// sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindSchedule:
		return true
	case KindValue:
		return e.Kind == KindValue || e.Kind == KindInterval
	default:
		return e.Kind == t.Kind
	}
}

// Sentinels for errors.Is comparisons against a Kind, e.g.
// errors.Is(err, schedule.ErrIntervalError).
var (
	ErrScheduleError = &Error{Kind: KindSchedule}
	ErrValueError    = &Error{Kind: KindValue}
	ErrIntervalError = &Error{Kind: KindInterval}
)

func newScheduleError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSchedule, Msg: fmt.Sprintf(format, args...)}
}

func newValueError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValue, Msg: fmt.Sprintf(format, args...)}
}

func newIntervalError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInterval, Msg: fmt.Sprintf(format, args...)}
}

func wrapValueError(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValue, Msg: fmt.Sprintf(format, args...), Err: err}
}
