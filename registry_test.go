// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anchortime/schedule/clock"
)

func newTestJob(tags ...string) *Job {
	spec := &jobSpec{interval: 1, unit: Seconds, tags: make(map[string]struct{})}
	for _, t := range tags {
		spec.tags[t] = struct{}{}
	}
	return &Job{id: newJobID(), spec: spec, index: -1}
}

func TestRegistry_InstallOrdersByNextRun(t *testing.T) {
	r := newRegistry()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j1 := newTestJob()
	j1.setNext(base.Add(3*time.Second), time.Second)
	j2 := newTestJob()
	j2.setNext(base.Add(1*time.Second), time.Second)
	j3 := newTestJob()
	j3.setNext(base.Add(2*time.Second), time.Second)

	r.install(j1)
	r.install(j2)
	r.install(j3)

	assert.Equal(t, j2, r.earliest())
	assert.Equal(t, 3, r.len())
}

func TestRegistry_RemoveFixesHeapAndTags(t *testing.T) {
	r := newRegistry()
	j1 := newTestJob("a")
	j2 := newTestJob("a", "b")

	r.install(j1)
	r.install(j2)
	assert.Len(t, r.byTag("a"), 2)

	r.remove(j1)
	assert.Equal(t, 1, r.len())
	assert.Equal(t, -1, j1.index)
	assert.Len(t, r.byTag("a"), 1)
	assert.Len(t, r.byTag("b"), 1)

	// removing an already-removed job is a no-op
	r.remove(j1)
	assert.Equal(t, 1, r.len())
}

func TestRegistry_ByTagEmptyReturnsAll(t *testing.T) {
	r := newRegistry()
	r.install(newTestJob("a"))
	r.install(newTestJob("b"))

	assert.Len(t, r.byTag(""), 2)
	assert.Len(t, r.byTag("nonexistent"), 0)
}

func TestRegistry_ClearByTagAndAll(t *testing.T) {
	r := newRegistry()
	r.install(newTestJob("a"))
	r.install(newTestJob("a"))
	r.install(newTestJob("b"))

	r.clear("a")
	assert.Equal(t, 1, r.len())
	assert.Len(t, r.byTag("a"), 0)

	r.clear("")
	assert.Equal(t, 0, r.len())
}

func TestRegistry_UpdateNextReordersHeap(t *testing.T) {
	r := newRegistry()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	j1 := newTestJob()
	j1.setNext(base.Add(1*time.Second), time.Second)
	j2 := newTestJob()
	j2.setNext(base.Add(2*time.Second), time.Second)
	r.install(j1)
	r.install(j2)

	assert.Equal(t, j1, r.earliest())

	r.updateNext(j1, base.Add(5*time.Second), time.Second)
	assert.Equal(t, j2, r.earliest())
}

func TestRegistry_IdleSecondsReflectsEarliest(t *testing.T) {
	r := newRegistry()
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Duration(0), r.idleSeconds(mock))

	j := newTestJob()
	j.setNext(mock.NowLocal().Add(10*time.Second), time.Second)
	r.install(j)

	assert.Equal(t, 10*time.Second, r.idleSeconds(mock))

	mock.Advance(12 * time.Second)
	assert.Equal(t, -2*time.Second, r.idleSeconds(mock))
}
