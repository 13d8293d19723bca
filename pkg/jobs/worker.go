// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

const (
	DefaultBatchSize uint64 = 25
	DefaultLease            = 5 * time.Minute
)

type SweepResult struct {
	Claimed   int
	Completed int
	Retried   int
	Failed    int
	Abandoned int
}

// Task is housekeeping run at the start of every sweep. Tasks must be safe to
// run concurrently from several workers.
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Worker drains the outbox. Several workers may sweep the same table, the
// claim statement hands each job to one of them only. A claimed job is
// leased, if its worker never reports back the job is claimed again once the
// lease ran out.
type Worker struct {
	storage   StorageInterface
	handlers  map[types.JobType]Handler
	tasks     []namedTask
	batchSize uint64
	backoff   time.Duration
	lease     time.Duration
	now       func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Register binds h to t. Registration happens at wiring time, before Run.
func (w *Worker) Register(t types.JobType, h Handler) {
	w.handlers[t] = h
}

// RegisterTask adds a task run before each sweep. Registration happens at
// wiring time, before Run.
func (w *Worker) RegisterTask(name string, t Task) {
	w.tasks = append(w.tasks, namedTask{name: name, run: t})
}

func (w *Worker) jobTypes() []types.JobType {
	known := make([]types.JobType, 0, len(w.handlers))
	for t := range w.handlers {
		known = append(known, t)
	}
	slices.Sort(known)
	return known
}

// Sweep runs the tasks, then claims one batch of due jobs of the registered
// types and processes it sequentially, oldest first. Jobs of other types are
// left pending and reported.
func (w *Worker) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := w.tracer.Start(ctx, "jobs.Worker.Sweep")
	defer span.End()

	var result SweepResult

	for _, t := range w.tasks {
		if err := t.run(ctx); err != nil {
			w.logger.Errorf("task %s failed: %v", t.name, err)
		}
	}

	now := w.now().UTC()

	abandoned, err := w.storage.FailAbandonedJobs(ctx, now)
	if err != nil {
		w.logger.Errorf("failed to settle abandoned jobs: %v", err)
	}
	if abandoned > 0 {
		result.Abandoned = int(abandoned)
		w.monitor.IncJobOutcome(map[string]string{"type": "any", "outcome": "abandoned"})
		w.logger.Errorf("%d jobs lost their worker on the last attempt and were marked failed", abandoned)
	}

	known := w.jobTypes()
	w.reportUnhandled(ctx, known)

	claimed, err := w.storage.ClaimJobs(ctx, known, w.batchSize, now, w.lease)
	if err != nil {
		return result, fmt.Errorf("failed to claim jobs: %w", err)
	}

	result.Claimed = len(claimed)

	for _, job := range claimed {
		switch w.process(ctx, job) {
		case "completed":
			result.Completed++
		case "retried":
			result.Retried++
		case "failed":
			result.Failed++
		}
	}

	if result.Claimed > 0 || result.Abandoned > 0 {
		w.logger.Infof(
			"sweep processed %d jobs: %d completed, %d retried, %d failed, %d abandoned",
			result.Claimed, result.Completed, result.Retried, result.Failed, result.Abandoned,
		)
	}

	return result, nil
}

// reportUnhandled logs pending jobs no handler of this worker knows about,
// a deployment or configuration error rather than a job failure.
func (w *Worker) reportUnhandled(ctx context.Context, known []types.JobType) {
	counts, err := w.storage.CountUnhandledJobs(ctx, known)
	if err != nil {
		w.logger.Errorf("failed to count unhandled jobs: %v", err)
		return
	}

	for t, n := range counts {
		w.logger.Warnf("%d pending jobs of type %s have no registered handler", n, t)
	}
}

func (w *Worker) process(ctx context.Context, job *types.Job) string {
	ctx, span := w.tracer.Start(ctx, "jobs.Worker.process")
	defer span.End()

	h, ok := w.handlers[job.Type]
	if !ok {
		// claims only cover registered types, the lease hands the job back
		w.logger.Errorf("claimed job %s of unregistered type %s", job.ID, job.Type)
		return "skipped"
	}

	outcome := "completed"
	defer func() {
		w.monitor.IncJobOutcome(map[string]string{"type": string(job.Type), "outcome": outcome})
	}()

	hctx, cancel := context.WithTimeout(ctx, w.lease)
	herr := w.handle(hctx, h, job)
	cancel()

	now := w.now().UTC()

	if herr == nil {
		if err := w.storage.CompleteJob(ctx, job.ID, now); err != nil {
			w.logger.Errorf("failed to mark job %s completed: %v", job.ID, err)
		}
		return outcome
	}

	terminal := IsPermanent(herr) || job.Attempts >= job.MaxAttempts
	retryAt := now.Add(time.Duration(job.Attempts) * w.backoff)

	if terminal {
		outcome = "failed"
		retryAt = now
		w.logger.Errorf("job %s (%s) failed after %d attempts: %v", job.ID, job.Type, job.Attempts, herr)
	} else {
		outcome = "retried"
		w.logger.Warnf("job %s (%s) attempt %d failed, retrying at %s: %v", job.ID, job.Type, job.Attempts, retryAt, herr)
	}

	if err := w.storage.FailJob(ctx, job.ID, herr.Error(), terminal, retryAt); err != nil {
		w.logger.Errorf("failed to record failure of job %s: %v", job.ID, err)
	}

	return outcome
}

// handle runs h, a panic counts as a failed attempt.
func (w *Worker) handle(ctx context.Context, h Handler, job *types.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("handler of job %s (%s) panicked: %v\n%s", job.ID, job.Type, r, debug.Stack())
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return h.Handle(ctx, job)
}

// Run sweeps every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	w.logger.Infof("job worker started, sweeping every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Sweep(ctx); err != nil {
			w.logger.Errorf("sweep failed: %v", err)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("job worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func NewWorker(storage StorageInterface, batchSize uint64, backoff, lease time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Worker {
	w := new(Worker)

	w.storage = storage
	w.handlers = make(map[types.JobType]Handler)
	w.batchSize = batchSize
	if w.batchSize == 0 {
		w.batchSize = DefaultBatchSize
	}
	w.backoff = backoff
	w.lease = lease
	if w.lease <= 0 {
		w.lease = DefaultLease
	}
	w.now = time.Now

	w.tracer = tracer
	w.monitor = monitor
	w.logger = logger

	return w
}
