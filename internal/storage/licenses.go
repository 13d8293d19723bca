// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-access-service/internal/types"
)

var licenseColumns = []string{
	"id",
	"tenant_id",
	"plan",
	"status",
	"current_period_start",
	"current_period_end",
	"billing_customer_id",
	"billing_subscription_id",
	"features",
	"seat_limit",
	"suspension_reason",
	"created_at",
	"updated_at",
}

func scanLicense(row sq.RowScanner) (*types.License, error) {
	var (
		l        types.License
		plan     string
		status   string
		features []byte
	)

	err := row.Scan(
		&l.ID,
		&l.TenantID,
		&plan,
		&status,
		&l.CurrentPeriodStart,
		&l.CurrentPeriodEnd,
		&l.BillingCustomerID,
		&l.BillingSubscriptionID,
		&features,
		&l.SeatLimit,
		&l.SuspensionReason,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Plan = types.Plan(plan)
	l.Status = types.LicenseStatus(status)
	l.Features = map[string]bool{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &l.Features); err != nil {
			return nil, fmt.Errorf("failed to decode license features: %w", err)
		}
	}

	return &l, nil
}

func (s *Storage) CreateLicense(ctx context.Context, l *types.License) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateLicense")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate license ID: %w", err)
	}

	features, err := json.Marshal(l.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to encode license features: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("licenses").
		Columns(
			"id",
			"tenant_id",
			"plan",
			"status",
			"current_period_start",
			"current_period_end",
			"billing_customer_id",
			"billing_subscription_id",
			"features",
			"seat_limit",
			"suspension_reason",
		).
		Values(
			id.String(),
			l.TenantID,
			string(l.Plan),
			string(l.Status),
			l.CurrentPeriodStart,
			l.CurrentPeriodEnd,
			l.BillingCustomerID,
			l.BillingSubscriptionID,
			features,
			l.SeatLimit,
			l.SuspensionReason,
		).
		Suffix("RETURNING " + strings.Join(licenseColumns, ", ")).
		QueryRowContext(ctx)

	created, err := scanLicense(row)
	if err != nil {
		return nil, classify(err, "insert license", "license of tenant "+l.TenantID)
	}

	return created, nil
}

func (s *Storage) getLicense(ctx context.Context, where sq.Sqlizer, orderBy string) (*types.License, error) {
	q := s.db.Statement(ctx).
		Select(licenseColumns...).
		From("licenses").
		Where(where)

	if orderBy != "" {
		q = q.OrderBy(orderBy).Limit(1)
	}

	l, err := scanLicense(q.QueryRowContext(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}

	return l, nil
}

func (s *Storage) GetLicenseByID(ctx context.Context, id string) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetLicenseByID")
	defer span.End()

	return s.getLicense(ctx, sq.Eq{"id": id}, "")
}

func (s *Storage) GetActiveLicenseByTenantID(ctx context.Context, tenantID string) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetActiveLicenseByTenantID")
	defer span.End()

	return s.getLicense(ctx, sq.Eq{"tenant_id": tenantID, "status": string(types.LicenseActive)}, "")
}

func (s *Storage) GetLatestLicenseByTenantID(ctx context.Context, tenantID string) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetLatestLicenseByTenantID")
	defer span.End()

	return s.getLicense(ctx, sq.Eq{"tenant_id": tenantID}, "updated_at DESC")
}

func (s *Storage) GetLicenseBySubscriptionID(ctx context.Context, subscriptionID string) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetLicenseBySubscriptionID")
	defer span.End()

	return s.getLicense(ctx, sq.Eq{"billing_subscription_id": subscriptionID}, "created_at DESC")
}

func (s *Storage) UpdateLicenseStatus(ctx context.Context, id string, status types.LicenseStatus, reason *string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateLicenseStatus")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("licenses").
		Set("status", string(status)).
		Set("suspension_reason", reason).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return classify(err, "update license status", "license "+id)
	}

	return expectAffected(res)
}

// ExpireLicenses moves every active license whose period ended before cutoff
// to expired and returns the updated rows.
func (s *Storage) ExpireLicenses(ctx context.Context, cutoff time.Time) ([]*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ExpireLicenses")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Update("licenses").
		Set("status", string(types.LicenseExpired)).
		Set("suspension_reason", "period_ended").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"status": string(types.LicenseActive)}).
		Where(sq.Lt{"current_period_end": cutoff}).
		Suffix("RETURNING " + strings.Join(licenseColumns, ", ")).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to expire licenses: %w", err)
	}
	defer rows.Close()

	var expired []*types.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan license: %w", err)
		}
		expired = append(expired, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return expired, nil
}

func (s *Storage) UpdateLicensePeriod(ctx context.Context, id string, start, end time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateLicensePeriod")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("licenses").
		Set("current_period_start", start).
		Set("current_period_end", end).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update license period: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) UpdateLicensePlan(ctx context.Context, id string, plan types.Plan, features map[string]bool, seatLimit int) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateLicensePlan")
	defer span.End()

	encoded, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to encode license features: %w", err)
	}

	res, err := s.db.Statement(ctx).
		Update("licenses").
		Set("plan", string(plan)).
		Set("features", encoded).
		Set("seat_limit", seatLimit).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update license plan: %w", err)
	}

	return expectAffected(res)
}
