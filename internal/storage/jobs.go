// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-access-service/internal/db"
	"github.com/canonical/tenant-access-service/internal/types"
)

var jobColumns = []string{"id", "type", "payload", "status", "attempts", "max_attempts", "last_error", "scheduled_for", "claimed_until", "dedupe_key", "created_at", "processed_at"}

func scanJob(row sq.RowScanner) (*types.Job, error) {
	var (
		j       types.Job
		jobType string
		status  string
		payload []byte
	)

	if err := row.Scan(&j.ID, &jobType, &payload, &status, &j.Attempts, &j.MaxAttempts, &j.LastError, &j.ScheduledFor, &j.ClaimedUntil, &j.DedupeKey, &j.CreatedAt, &j.ProcessedAt); err != nil {
		return nil, err
	}

	j.Type = types.JobType(jobType)
	j.Status = types.JobStatus(status)
	j.Payload = payload
	return &j, nil
}

// InsertJob records a pending job. A job carrying the dedupe key of a job
// that is still pending or processing is not inserted, ErrDuplicateKey is
// returned instead.
func (s *Storage) InsertJob(ctx context.Context, j *types.Job) (*types.Job, error) {
	ctx, span := s.tracer.Start(ctx, "storage.InsertJob")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate job ID: %w", err)
	}

	suffix := "RETURNING " + strings.Join(jobColumns, ", ")
	if j.DedupeKey != nil {
		suffix = "ON CONFLICT (dedupe_key) WHERE status IN ('pending', 'processing') DO NOTHING " + suffix
	}

	created, err := scanJob(
		s.db.Statement(ctx).
			Insert("jobs").
			Columns("id", "type", "payload", "status", "attempts", "max_attempts", "scheduled_for", "dedupe_key").
			Values(id.String(), string(j.Type), []byte(j.Payload), string(types.JobPending), 0, j.MaxAttempts, j.ScheduledFor, j.DedupeKey).
			Suffix(suffix).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) && j.DedupeKey != nil {
			return nil, fmt.Errorf("%w: job %s is already queued", ErrDuplicateKey, *j.DedupeKey)
		}
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}

	return created, nil
}

func (s *Storage) GetJobByID(ctx context.Context, id string) (*types.Job, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetJobByID")
	defer span.End()

	j, err := scanJob(
		s.db.Statement(ctx).
			Select(jobColumns...).
			From("jobs").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return j, nil
}

// claimable matches pending jobs that are due and processing jobs whose
// claim lease ran out, their worker crashed or lost track of them.
func claimable(now time.Time) sq.Sqlizer {
	return sq.Or{
		sq.And{sq.Eq{"status": string(types.JobPending)}, sq.LtOrEq{"scheduled_for": now}},
		sq.And{sq.Eq{"status": string(types.JobProcessing)}, sq.LtOrEq{"claimed_until": now}},
	}
}

// ClaimJobs marks up to limit claimable jobs of the given types as processing
// until now+lease and increments their attempts in one statement. The inner
// select skips rows locked by a concurrent sweeper and the outer guard makes
// the claim conditional, so a job is handed to a single sweeper only. A
// reclaimed job is charged one more attempt.
func (s *Storage) ClaimJobs(ctx context.Context, jobTypes []types.JobType, limit uint64, now time.Time, lease time.Duration) ([]*types.Job, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ClaimJobs")
	defer span.End()

	if len(jobTypes) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(jobTypes))
	for _, t := range jobTypes {
		names = append(names, string(t))
	}

	due := sq.Select("id").
		From("jobs").
		Where(claimable(now)).
		Where(sq.Eq{"type": names}).
		Where("attempts < max_attempts").
		OrderBy("created_at ASC").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED")

	rows, err := s.db.Statement(ctx).
		Update("jobs").
		Set("status", string(types.JobProcessing)).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("claimed_until", now.Add(lease)).
		Where(sq.Expr("id IN (?)", due)).
		Where(claimable(now)).
		Suffix("RETURNING " + strings.Join(jobColumns, ", ")).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	// RETURNING does not preserve the subquery order
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].CreatedAt.Before(jobs[k].CreatedAt) })

	return jobs, nil
}

// FailAbandonedJobs parks as failed the processing jobs whose lease ran out
// on their last allowed attempt, they can not be reclaimed anymore.
func (s *Storage) FailAbandonedJobs(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.FailAbandonedJobs")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("jobs").
		Set("status", string(types.JobFailed)).
		Set("last_error", "claim lease expired on the last attempt").
		Set("processed_at", now).
		Set("claimed_until", nil).
		Where(sq.Eq{"status": string(types.JobProcessing)}).
		Where(sq.LtOrEq{"claimed_until": now}).
		Where("attempts >= max_attempts").
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fail abandoned jobs: %w", err)
	}

	return res.RowsAffected()
}

// CountUnhandledJobs counts the pending jobs per type outside of known, no
// sweeper of this deployment claims them.
func (s *Storage) CountUnhandledJobs(ctx context.Context, known []types.JobType) (map[types.JobType]int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountUnhandledJobs")
	defer span.End()

	names := make([]string, 0, len(known))
	for _, t := range known {
		names = append(names, string(t))
	}

	q := s.db.Statement(ctx).
		Select("type", "COUNT(*)").
		From("jobs").
		Where(sq.Eq{"status": string(types.JobPending)}).
		GroupBy("type")
	if len(names) > 0 {
		q = q.Where(sq.NotEq{"type": names})
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count unhandled jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.JobType]int)
	for rows.Next() {
		var (
			jobType string
			n       int
		)
		if err := rows.Scan(&jobType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[types.JobType(jobType)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return counts, nil
}

func (s *Storage) CompleteJob(ctx context.Context, id string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.CompleteJob")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("jobs").
		Set("status", string(types.JobCompleted)).
		Set("processed_at", now).
		Set("last_error", nil).
		Set("claimed_until", nil).
		Where(sq.Eq{"id": id, "status": string(types.JobProcessing)}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return expectAffected(res)
}

// FailJob records a handler failure. A terminal failure parks the job as
// failed for operator attention, otherwise it goes back to pending and becomes
// due again at retryAt.
func (s *Storage) FailJob(ctx context.Context, id string, lastError string, terminal bool, retryAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.FailJob")
	defer span.End()

	q := s.db.Statement(ctx).
		Update("jobs").
		Set("last_error", lastError).
		Set("claimed_until", nil).
		Where(sq.Eq{"id": id, "status": string(types.JobProcessing)})

	if terminal {
		q = q.Set("status", string(types.JobFailed)).Set("processed_at", retryAt)
	} else {
		q = q.Set("status", string(types.JobPending)).Set("scheduled_for", retryAt)
	}

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}

	return expectAffected(res)
}

// RetryJob is the manual intervention path for a terminally failed job.
func (s *Storage) RetryJob(ctx context.Context, id string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.RetryJob")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("jobs").
		Set("status", string(types.JobPending)).
		Set("attempts", 0).
		Set("scheduled_for", now).
		Set("processed_at", nil).
		Where(sq.Eq{"id": id, "status": string(types.JobFailed)}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) ListJobsByStatus(ctx context.Context, status types.JobStatus, page, size int64) ([]*types.Job, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListJobsByStatus")
	defer span.End()

	pageSize := db.PageSize(size)

	rows, err := s.db.Statement(ctx).
		Select(jobColumns...).
		From("jobs").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("created_at ASC").
		Limit(pageSize).
		Offset(db.Offset(page, pageSize)).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*types.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return jobs, nil
}
