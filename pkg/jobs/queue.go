// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

const DefaultMaxAttempts = 3

var _ EnqueuerInterface = (*Queue)(nil)

type EnqueueOptions struct {
	// ScheduledFor defaults to now.
	ScheduledFor time.Time
	// MaxAttempts defaults to the queue setting.
	MaxAttempts int
	// DedupeKey, when set, keeps a second job with the same key out of the
	// queue while the first one is pending or processing.
	DedupeKey string
}

type Queue struct {
	storage     StorageInterface
	maxAttempts int
	now         func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Enqueue durably records a job. The insert joins the caller's transaction
// when ctx carries one.
func (q *Queue) Enqueue(ctx context.Context, p Payload, opts EnqueueOptions) (*types.Job, error) {
	ctx, span := q.tracer.Start(ctx, "jobs.Queue.Enqueue")
	defer span.End()

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.JobType(), err)
	}

	job := &types.Job{
		Type:         p.JobType(),
		Payload:      payload,
		MaxAttempts:  q.maxAttempts,
		ScheduledFor: opts.ScheduledFor,
	}

	if opts.MaxAttempts > 0 {
		job.MaxAttempts = opts.MaxAttempts
	}
	if job.ScheduledFor.IsZero() {
		job.ScheduledFor = q.now().UTC()
	}
	if opts.DedupeKey != "" {
		job.DedupeKey = &opts.DedupeKey
	}

	created, err := q.storage.InsertJob(ctx, job)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyQueued, opts.DedupeKey)
		}
		return nil, fmt.Errorf("failed to enqueue %s job: %w", p.JobType(), err)
	}

	q.logger.Debugf("enqueued %s job %s scheduled for %s", created.Type, created.ID, created.ScheduledFor)
	return created, nil
}

// Retry resets a failed job so the sweeper picks it up again.
func (q *Queue) Retry(ctx context.Context, id string) error {
	ctx, span := q.tracer.Start(ctx, "jobs.Queue.Retry")
	defer span.End()

	if err := q.storage.RetryJob(ctx, id, q.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotRetryable
		}
		return err
	}

	return nil
}

func (q *Queue) ListByStatus(ctx context.Context, status types.JobStatus, page, size int64) ([]*types.Job, error) {
	ctx, span := q.tracer.Start(ctx, "jobs.Queue.ListByStatus")
	defer span.End()

	return q.storage.ListJobsByStatus(ctx, status, page, size)
}

func NewQueue(storage StorageInterface, maxAttempts int, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Queue {
	q := new(Queue)

	q.storage = storage
	q.maxAttempts = maxAttempts
	if q.maxAttempts <= 0 {
		q.maxAttempts = DefaultMaxAttempts
	}
	q.now = time.Now

	q.tracer = tracer
	q.monitor = monitor
	q.logger = logger

	return q
}
