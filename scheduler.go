// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"
	"sort"
	"time"
)

// Scheduler maintains a registry of Jobs and runs them synchronously,
// one at a time, from whichever goroutine calls RunPending or RunAll.
// It owns no background goroutine and no channels: a host is expected
// to drive it from its own loop (a ticker, a cron trigger, an HTTP
// handler's tick endpoint).
type Scheduler struct {
	*base
}

// New returns a Scheduler configured by options. With no options, it
// uses time.Local, a real wall clock, FoldFirst, and a no-op logger.
func New(options ...Option) *Scheduler {
	return &Scheduler{base: newBase(options...)}
}

// RunPending runs every job whose NextRun is due (NextRun <= now),
// earliest first, serially on the calling goroutine. A job whose
// deadline has passed is cancelled instead of run. Due jobs are
// snapshotted once at entry, but each is re-checked for installation
// immediately before it runs, so a job that cancels another job via
// CancelJob from within its own Task is honored.
//
// RunPending returns ctx's error, if any, once every job due at entry
// has been attempted.
func (s *Scheduler) RunPending(ctx context.Context) error {
	for _, job := range s.dueSnapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runOne(ctx, job)
	}
	return ctx.Err()
}

// RunAll runs every installed job once, in NextRun order, regardless of
// whether it is currently due, waiting delay between each run. It is
// meant for manual or test-driven invocation, mirroring the Python
// library's run_all(delay_seconds=...).
func (s *Scheduler) RunAll(ctx context.Context, delay time.Duration) error {
	s.mu.Lock()
	all := s.reg.all()
	sort.Slice(all, func(i, j int) bool { return all[i].NextRun().Before(all[j].NextRun()) })
	s.mu.Unlock()

	for i, job := range all {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runOne(ctx, job)
	}
	return ctx.Err()
}

// runOne executes job's Task, applies its Outcome, and reschedules it.
// It is shared by Scheduler's RunPending/RunAll and by AsyncScheduler's
// per-job goroutines.
func (b *base) runOne(ctx context.Context, job *Job) {
	b.mu.Lock()
	if job.index < 0 {
		b.mu.Unlock()
		return
	}
	// A job polled exactly at its deadline still gets this run; only a
	// poll strictly after the deadline cancels it instead of running it.
	if job.spec.deadline != nil && b.clock.NowLocal().After(*job.spec.deadline) {
		b.reg.remove(job)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	outcome, err := b.safeRun(ctx, job)
	now := b.clock.NowLocal()
	job.setLastRun(now)
	if err != nil {
		b.reportError(job, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if job.index < 0 {
		return // removed (by itself, or by another job) during the run
	}
	if outcome == Cancel {
		b.reg.remove(job)
		return
	}
	next, period, cerr := computeNext(job.spec, now, b.loc, b.fold)
	if cerr != nil {
		b.reportError(job, cerr)
		b.reg.remove(job)
		return
	}
	// This run already executed; it just has no next occurrence left
	// inside its deadline, so the job is removed now rather than left
	// installed for a later poll to clean up.
	if job.spec.deadline != nil && next.After(*job.spec.deadline) {
		b.reg.remove(job)
		return
	}
	b.reg.updateNext(job, next, period)
}

// safeRun invokes job's Task, converting a panic into a reported error
// through onPanic (which newBase always installs, defaulting to a log
// line) so a panicking Task never crashes the caller's goroutine.
func (b *base) safeRun(ctx context.Context, job *Job) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.onPanic(job, r)
			outcome, err = Continue, nil
		}
	}()
	return job.spec.task(ctx)
}

// reportError logs a Task's runtime error at debug level and forwards
// it to an installed WithErrorHandler, if any. A runtime error never
// cancels a job by itself, only Outcome does.
func (b *base) reportError(job *Job, err error) {
	b.logger.Debug().
		Str("job_id", job.ID()).
		Strs("tags", job.Tags()).
		Err(err).
		Msg("task returned an error")
	if b.onError != nil {
		b.onError(job, err)
	}
}
