// Copyright (c) 2018,TianJin Tomatox  Technology Ltd. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGlobalEveryRunPending(t *testing.T) {
	defer Clear("")

	var calls int
	_, err := Every().Seconds().Do(FromFunc(func() { calls++ }))
	assert.NoError(t, err)

	job := GetJobs("")[0]
	job.setNext(defaultScheduler.clock.NowLocal().Add(-time.Second), time.Second)

	assert.NoError(t, RunPending(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestGlobalClearByTag(t *testing.T) {
	defer Clear("")

	_, _ = Every().Seconds().Tag("a").Do(FromFunc(func() {}))
	_, _ = Every().Seconds().Tag("b").Do(FromFunc(func() {}))
	assert.Len(t, GetJobs(""), 2)

	Clear("a")
	assert.Len(t, GetJobs(""), 1)
	assert.True(t, GetJobs("")[0].HasTag("b"))
}

func TestGlobalCancelJob(t *testing.T) {
	defer Clear("")

	job, err := Every().Seconds().Do(FromFunc(func() {}))
	assert.NoError(t, err)
	assert.Len(t, GetJobs(""), 1)

	CancelJob(job)
	assert.Len(t, GetJobs(""), 0)
}

func TestGlobalIdleSecondsAndNextRun(t *testing.T) {
	defer Clear("")

	_, err := Every(5).Seconds().Do(FromFunc(func() {}))
	assert.NoError(t, err)

	next, ok := NextRun("")
	assert.True(t, ok)
	assert.False(t, next.IsZero())
	assert.True(t, IdleSeconds() <= 5*time.Second)
}
