// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
)

// StorageInterface is the outbox subset of internal/storage.
type StorageInterface interface {
	InsertJob(ctx context.Context, j *types.Job) (*types.Job, error)
	GetJobByID(ctx context.Context, id string) (*types.Job, error)
	ClaimJobs(ctx context.Context, jobTypes []types.JobType, limit uint64, now time.Time, lease time.Duration) ([]*types.Job, error)
	FailAbandonedJobs(ctx context.Context, now time.Time) (int64, error)
	CountUnhandledJobs(ctx context.Context, known []types.JobType) (map[types.JobType]int, error)
	CompleteJob(ctx context.Context, id string, now time.Time) error
	FailJob(ctx context.Context, id string, lastError string, terminal bool, retryAt time.Time) error
	RetryJob(ctx context.Context, id string, now time.Time) error
	ListJobsByStatus(ctx context.Context, status types.JobStatus, page, size int64) ([]*types.Job, error)
}

// EnqueuerInterface is what producers of side effects depend on.
type EnqueuerInterface interface {
	Enqueue(ctx context.Context, p Payload, opts EnqueueOptions) (*types.Job, error)
}

// Handler processes one claimed job. Returning an error leaves the job for a
// retry unless it is wrapped with Permanent.
type Handler interface {
	Handle(ctx context.Context, job *types.Job) error
}

type HandlerFunc func(ctx context.Context, job *types.Job) error

func (f HandlerFunc) Handle(ctx context.Context, job *types.Job) error {
	return f(ctx, job)
}
