// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AsyncScheduler maintains the same job registry and builder grammar as
// Scheduler, but runs every due job concurrently instead of one at a
// time, fanning out with an errgroup.Group and fanning back in before
// RunPending returns. Grounded on the Python library's asyncio-based
// AsyncScheduler/Job, with errgroup standing in for asyncio.gather.
type AsyncScheduler struct {
	*base
}

// NewAsync returns an AsyncScheduler configured by options.
func NewAsync(options ...Option) *AsyncScheduler {
	return &AsyncScheduler{base: newBase(options...)}
}

// RunPending runs every due job concurrently, one goroutine per job,
// and waits for all of them to finish before returning; cancelling ctx
// does not make it return before every started job has returned. A
// job's own error does not cancel its siblings: it
// is reported through reportError the same way Scheduler.RunPending
// reports it, and RunPending itself only ever returns ctx's error.
func (s *AsyncScheduler) RunPending(ctx context.Context) error {
	due := s.dueSnapshot()
	if len(due) == 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range due {
		job := job
		g.Go(func() error {
			s.runOne(gctx, job)
			return gctx.Err()
		})
	}
	return g.Wait()
}
