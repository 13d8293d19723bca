// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-access-service/internal/db"
	"github.com/canonical/tenant-access-service/internal/types"
)

// InsertAuditEntry appends an entry to the audit trail. There is deliberately
// no update or delete counterpart. The insert never joins a transaction of
// the caller, a failed write must not abort the audited operation.
func (s *Storage) InsertAuditEntry(ctx context.Context, e *types.AuditEntry) error {
	ctx, span := s.tracer.Start(ctx, "storage.InsertAuditEntry")
	defer span.End()

	ctx = db.WithoutTx(ctx)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate audit entry ID: %w", err)
	}

	metadata := []byte(e.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	_, err = s.db.Statement(ctx).
		Insert("audit_entries").
		Columns("id", "kind", "license_id", "tenant_id", "user_id", "ip_address", "metadata", "created_at").
		Values(id.String(), string(e.Kind), e.LicenseID, e.TenantID, e.UserID, e.IPAddress, metadata, e.CreatedAt).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	e.ID = id.String()
	return nil
}

func (s *Storage) ListAuditEntries(ctx context.Context, filter AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListAuditEntries")
	defer span.End()

	pageSize := db.PageSize(filter.Size)

	query := s.db.Statement(ctx).
		Select("id", "kind", "license_id", "tenant_id", "user_id", "ip_address", "metadata", "created_at").
		From("audit_entries").
		OrderBy("created_at DESC").
		Limit(pageSize).
		Offset(db.Offset(filter.Page, pageSize))

	if filter.TenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": filter.TenantID})
	}
	if filter.LicenseID != "" {
		query = query.Where(sq.Eq{"license_id": filter.LicenseID})
	}
	if filter.Kind != "" {
		query = query.Where(sq.Eq{"kind": string(filter.Kind)})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*types.AuditEntry
	for rows.Next() {
		var (
			e        types.AuditEntry
			kind     string
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &kind, &e.LicenseID, &e.TenantID, &e.UserID, &e.IPAddress, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Kind = types.AuditKind(kind)
		e.Metadata = metadata
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
