// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anchortime/schedule/clock"
)

func TestAsyncScheduler_RunPendingRunsDueJobsConcurrently(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewAsync(WithClock(mock), WithLocation(time.UTC))

	const n = 8
	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		_, err := s.Every().Seconds().Do(func(context.Context) (Outcome, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				max := atomic.LoadInt32(&maxInFlight)
				if cur <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			wg.Done()
			return Continue, nil
		})
		assert.NoError(t, err)
	}

	mock.Advance(time.Second)
	assert.NoError(t, s.RunPending(context.Background()))
	wg.Wait()

	assert.Greater(t, atomic.LoadInt32(&maxInFlight), int32(1))
}

func TestAsyncScheduler_JobErrorDoesNotStopSiblings(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var observedErrs int32
	s := NewAsync(WithClock(mock), WithLocation(time.UTC), WithErrorHandler(func(job *Job, err error) {
		atomic.AddInt32(&observedErrs, 1)
	}))

	var okRuns int32
	_, err := s.Every().Seconds().Do(func(context.Context) (Outcome, error) {
		return Continue, assert.AnError
	})
	assert.NoError(t, err)
	_, err = s.Every().Seconds().Do(FromFunc(func() { atomic.AddInt32(&okRuns, 1) }))
	assert.NoError(t, err)

	mock.Advance(time.Second)
	assert.NoError(t, s.RunPending(context.Background()))

	assert.EqualValues(t, 1, atomic.LoadInt32(&observedErrs))
	assert.EqualValues(t, 1, atomic.LoadInt32(&okRuns))
	assert.Len(t, s.GetJobs(""), 2) // a runtime error never cancels by itself
}

func TestAsyncScheduler_PanicInOneJobDoesNotStopSiblings(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	var panicked int32
	s := NewAsync(WithClock(mock), WithLocation(time.UTC), WithPanicHandler(func(job *Job, r interface{}) {
		atomic.AddInt32(&panicked, 1)
	}))

	var okRuns int32
	_, err := s.Every().Seconds().Do(FromFunc(func() { panic("boom") }))
	assert.NoError(t, err)
	_, err = s.Every().Seconds().Do(FromFunc(func() { atomic.AddInt32(&okRuns, 1) }))
	assert.NoError(t, err)

	mock.Advance(time.Second)
	assert.NotPanics(t, func() {
		assert.NoError(t, s.RunPending(context.Background()))
	})

	assert.EqualValues(t, 1, atomic.LoadInt32(&panicked))
	assert.EqualValues(t, 1, atomic.LoadInt32(&okRuns))
}

func TestAsyncScheduler_RunPendingNoDueJobsIsNoop(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := NewAsync(WithClock(mock), WithLocation(time.UTC))

	_, err := s.Every(1).Hours().Do(FromFunc(func() {}))
	assert.NoError(t, err)

	assert.NoError(t, s.RunPending(context.Background()))
}
