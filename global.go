// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package schedule

import (
	"context"
	"time"
)

// defaultScheduler is the package-level Scheduler the shortcut
// functions below delegate to, mirroring the Python library's module-
// level "every(...)"/"run_pending()" surface (schedule/__init__.py).
var defaultScheduler = New()

// Every starts a fluent Builder chain on the default Scheduler.
func Every(interval ...int) *Builder {
	return defaultScheduler.Every(interval...)
}

// RunPending runs every due job on the default Scheduler.
func RunPending(ctx context.Context) error {
	return defaultScheduler.RunPending(ctx)
}

// RunAll runs every job on the default Scheduler once, regardless of
// whether it is due.
func RunAll(ctx context.Context, delay time.Duration) error {
	return defaultScheduler.RunAll(ctx, delay)
}

// Clear removes every job carrying tag (or every job, if tag is "")
// from the default Scheduler.
func Clear(tag string) {
	defaultScheduler.Clear(tag)
}

// CancelJob removes job from the default Scheduler.
func CancelJob(job *Job) {
	defaultScheduler.CancelJob(job)
}

// GetJobs returns the jobs carrying tag (or every job, if tag is "")
// installed on the default Scheduler.
func GetJobs(tag string) []*Job {
	return defaultScheduler.GetJobs(tag)
}

// NextRun returns the NextRun of the default Scheduler's earliest job
// carrying tag, and false if there is none.
func NextRun(tag string) (time.Time, bool) {
	return defaultScheduler.NextRun(tag)
}

// IdleSeconds returns the duration until the default Scheduler's
// earliest job is due.
func IdleSeconds() time.Duration {
	return defaultScheduler.IdleSeconds()
}
