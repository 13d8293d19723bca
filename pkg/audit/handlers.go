// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
)

type API struct {
	reader ReaderInterface
	logger logging.LoggerInterface
}

// RegisterEndpoints mounts the read-only listing, callers are expected to
// wrap r with the administrator gate.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/admin/audit", a.list)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	size, _ := strconv.ParseInt(q.Get("size"), 10, 64)

	entries, err := a.reader.ListAuditEntries(r.Context(), storage.AuditFilter{
		TenantID:  q.Get("tenant_id"),
		LicenseID: q.Get("license_id"),
		Kind:      types.AuditKind(q.Get("kind")),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		a.logger.Errorf("failed to list audit entries: %v", err)
		http.Error(w, "Failed to list audit entries", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []*types.AuditEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": entries}); err != nil {
		a.logger.Errorf("failed to encode audit entries: %v", err)
	}
}

func NewAPI(reader ReaderInterface, logger logging.LoggerInterface) *API {
	return &API{
		reader: reader,
		logger: logger,
	}
}
