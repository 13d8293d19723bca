// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-access-service/internal/types"
)

var enrollmentColumns = []string{
	"id",
	"principal_id",
	"program_id",
	"status",
	"orientation_completed_at",
	"documents_submitted_at",
	"retired_at",
	"created_at",
	"updated_at",
}

func scanEnrollment(row sq.RowScanner) (*types.Enrollment, error) {
	var (
		e      types.Enrollment
		status string
	)

	if err := row.Scan(&e.ID, &e.PrincipalID, &e.ProgramID, &status, &e.OrientationCompletedAt, &e.DocumentsSubmittedAt, &e.RetiredAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.Status = types.EnrollmentStatus(status)
	return &e, nil
}

func (s *Storage) CreateEnrollment(ctx context.Context, e *types.Enrollment) (*types.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateEnrollment")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate enrollment ID: %w", err)
	}

	created, err := scanEnrollment(
		s.db.Statement(ctx).
			Insert("enrollments").
			Columns("id", "principal_id", "program_id", "status").
			Values(id.String(), e.PrincipalID, e.ProgramID, string(types.EnrollmentApplied)).
			Suffix("RETURNING " + strings.Join(enrollmentColumns, ", ")).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, classify(err, "insert enrollment", "principal already enrolled in program")
	}

	return created, nil
}

func (s *Storage) GetEnrollmentByID(ctx context.Context, id string) (*types.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetEnrollmentByID")
	defer span.End()

	e, err := scanEnrollment(
		s.db.Statement(ctx).
			Select(enrollmentColumns...).
			From("enrollments").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return e, nil
}

// GetEnrollmentByPrincipalID returns the most recent enrollment that has not
// been retired.
func (s *Storage) GetEnrollmentByPrincipalID(ctx context.Context, principalID string) (*types.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetEnrollmentByPrincipalID")
	defer span.End()

	e, err := scanEnrollment(
		s.db.Statement(ctx).
			Select(enrollmentColumns...).
			From("enrollments").
			Where(sq.Eq{"principal_id": principalID, "retired_at": nil}).
			OrderBy("created_at DESC").
			Limit(1).
			QueryRowContext(ctx),
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return e, nil
}

// TransitionEnrollment moves an enrollment from one status to the next, the
// update only applies while the row is still in the expected status.
func (s *Storage) TransitionEnrollment(ctx context.Context, id string, from, to types.EnrollmentStatus, stamps EnrollmentStamps) error {
	ctx, span := s.tracer.Start(ctx, "storage.TransitionEnrollment")
	defer span.End()

	q := s.db.Statement(ctx).
		Update("enrollments").
		Set("status", string(to)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": string(from), "retired_at": nil})

	if stamps.OrientationCompletedAt != nil {
		q = q.Set("orientation_completed_at", *stamps.OrientationCompletedAt)
	}
	if stamps.DocumentsSubmittedAt != nil {
		q = q.Set("documents_submitted_at", *stamps.DocumentsSubmittedAt)
	}

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to transition enrollment: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) RetireEnrollment(ctx context.Context, id string, now time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.RetireEnrollment")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("enrollments").
		Set("retired_at", now).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "retired_at": nil}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to retire enrollment: %w", err)
	}

	return expectAffected(res)
}
