// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/tenant-access-service/internal/types"
)

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	var newTenant types.Tenant
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "enabled").
		Values(id.String(), t.Name, t.Enabled).
		Suffix("RETURNING id, name, created_at, enabled").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Name, &newTenant.CreatedAt, &newTenant.Enabled)

	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	var t types.Tenant
	err := s.db.Statement(ctx).
		Select("id", "name", "created_at", "enabled").
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.Enabled)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

func (s *Storage) SetTenantStatus(ctx context.Context, id string, enabled bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatus")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("enabled", enabled).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) AddMember(ctx context.Context, tenantID, principalID string, role types.Role) (string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.AddMember")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate membership ID: %w", err)
	}

	_, err = s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "tenant_id", "principal_id", "role").
		Values(id.String(), tenantID, principalID, string(role)).
		ExecContext(ctx)

	if err != nil {
		return "", classify(err, "add member", "membership "+principalID)
	}

	return id.String(), nil
}

// GetMembershipByPrincipalID returns the tenant association of a principal,
// a principal belongs to at most one tenant.
func (s *Storage) GetMembershipByPrincipalID(ctx context.Context, principalID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembershipByPrincipalID")
	defer span.End()

	var (
		m    types.Membership
		role string
	)
	err := s.db.Statement(ctx).
		Select("m.id", "m.tenant_id", "m.principal_id", "m.role", "m.created_at").
		From("memberships m").
		Join("tenants t ON t.id = m.tenant_id").
		Where(sq.Eq{"m.principal_id": principalID, "t.enabled": true}).
		OrderBy("m.created_at ASC").
		Limit(1).
		QueryRowContext(ctx).
		Scan(&m.ID, &m.TenantID, &m.PrincipalID, &role, &m.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	m.Role = types.Role(role)
	return &m, nil
}

func (s *Storage) CountMembersByTenantID(ctx context.Context, tenantID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountMembersByTenantID")
	defer span.End()

	var count int
	err := s.db.Statement(ctx).
		Select("COUNT(*)").
		From("memberships").
		Where(sq.Eq{"tenant_id": tenantID}).
		QueryRowContext(ctx).
		Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func expectAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
