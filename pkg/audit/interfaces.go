// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
)

// StorageInterface is the insert-only subset of internal/storage the sink needs.
type StorageInterface interface {
	InsertAuditEntry(ctx context.Context, e *types.AuditEntry) error
}

// RecorderInterface is what the rest of the service depends on to emit audit
// entries, a failed write never surfaces to the caller.
type RecorderInterface interface {
	Record(ctx context.Context, ev Recordable)
}

// ReaderInterface backs the administrative audit listing.
type ReaderInterface interface {
	ListAuditEntries(ctx context.Context, filter storage.AuditFilter) ([]*types.AuditEntry, error)
}
