// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"container/heap"
	"time"

	"github.com/anchortime/schedule/clock"
)

// registry is an ordered, min-heap-by-next-run collection of installed
// Jobs plus a secondary tag index. It owns no goroutine of its own;
// Scheduler and AsyncScheduler drive it synchronously from their own
// call sites.
//
// Built on a container/heap ordered by next run time, with a tag index
// adapted from the Python library's Scheduler.get_jobs(tag)/clear(tag).
type registry struct {
	jobs jobHeap
	tags map[string]map[*Job]struct{}
}

func newRegistry() *registry {
	return &registry{
		jobs: make(jobHeap, 0, 16),
		tags: make(map[string]map[*Job]struct{}),
	}
}

// install appends job, indexing it by every tag it carries.
func (r *registry) install(job *Job) {
	heap.Push(&r.jobs, job)
	for _, t := range job.Tags() {
		set, ok := r.tags[t]
		if !ok {
			set = make(map[*Job]struct{})
			r.tags[t] = set
		}
		set[job] = struct{}{}
	}
}

// remove removes job by identity; a no-op if job is not installed.
func (r *registry) remove(job *Job) {
	if job.index < 0 || job.index >= len(r.jobs) || r.jobs[job.index] != job {
		return
	}
	heap.Remove(&r.jobs, job.index)
	for _, t := range job.Tags() {
		if set, ok := r.tags[t]; ok {
			delete(set, job)
			if len(set) == 0 {
				delete(r.tags, t)
			}
		}
	}
}

// all returns a defensive copy of every installed job.
func (r *registry) all() []*Job {
	out := make([]*Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

// byTag returns a defensive copy of the jobs carrying tag. An empty tag
// returns every installed job, matching all().
func (r *registry) byTag(tag string) []*Job {
	if tag == "" {
		return r.all()
	}
	set := r.tags[tag]
	out := make([]*Job, 0, len(set))
	for j := range set {
		out = append(out, j)
	}
	return out
}

// clear removes every job carrying tag, or every job when tag is empty.
func (r *registry) clear(tag string) {
	for _, j := range r.byTag(tag) {
		r.remove(j)
	}
}

// earliest returns an installed job with the smallest NextRun, or nil
// when the registry is empty. Among jobs with equal NextRun, which one
// is returned is not defined; insertion order is not tracked.
func (r *registry) earliest() *Job {
	if len(r.jobs) == 0 {
		return nil
	}
	return r.jobs[0]
}

// idleSeconds returns the duration from c's current instant to the
// earliest job's NextRun, or 0 when the registry is empty. It may be
// negative when a job is overdue.
func (r *registry) idleSeconds(c clock.Clock) time.Duration {
	j := r.earliest()
	if j == nil {
		return 0
	}
	return j.NextRun().Sub(c.NowLocal())
}

func (r *registry) len() int { return len(r.jobs) }

// updateNext repositions job in the heap after its NextRun changes.
func (r *registry) updateNext(job *Job, next time.Time, period time.Duration) {
	job.setNext(next, period)
	heap.Fix(&r.jobs, job.index)
}

// jobHeap implements heap.Interface, ordering *Jobs by NextRun.
type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	return h[i].nextRun.Before(h[j].nextRun)
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *jobHeap) Push(x interface{}) {
	n := len(*h)
	job := x.(*Job)
	job.index = n
	*h = append(*h, job)
}

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	job.index = -1
	*h = old[0 : n-1]
	return job
}
