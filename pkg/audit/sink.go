// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

var _ RecorderInterface = (*Sink)(nil)

// Sink persists audit entries. Recording is best-effort: a failed write is
// logged and counted and the caller carries on.
type Sink struct {
	storage StorageInterface
	now     func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Sink) Record(ctx context.Context, ev Recordable) {
	ctx, span := s.tracer.Start(ctx, "audit.Sink.Record")
	defer span.End()

	e := ev.AuditEvent()

	entry := &types.AuditEntry{
		Kind:      e.Kind,
		LicenseID: optional(e.LicenseID),
		TenantID:  optional(e.TenantID),
		UserID:    optional(e.UserID),
		CreatedAt: s.now().UTC(),
	}

	if ip, ok := RequestIP(ctx); ok {
		entry.IPAddress = &ip
	}

	if e.Metadata != nil {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			s.logger.Errorf("failed to encode audit metadata for %s: %v", e.Kind, err)
		} else {
			entry.Metadata = metadata
		}
	}

	if err := s.storage.InsertAuditEntry(ctx, entry); err != nil {
		s.logger.Errorf("failed to record audit entry %s: %v", e.Kind, err)
		s.monitor.IncAuditWriteFailure(map[string]string{"kind": string(e.Kind)})
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func NewSink(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Sink {
	s := new(Sink)

	s.storage = storage
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
