// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	tx       TransactorInterface
	audit    AuditInterface
	queue    EnqueuerInterface
	notifier NotifierInterface

	gracePeriod time.Duration
	expiryGrace time.Duration
	now         func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CheckAccess gates a request on the license status of its tenant. Anything
// other than an active license is denied, unknown statuses included.
func (s *Service) CheckAccess(ctx context.Context, tc *TenantContext) Decision {
	ctx, span := s.tracer.Start(ctx, "license.Service.CheckAccess")
	defer span.End()

	var d Decision

	switch {
	case tc == nil:
		d = deny(ReasonUnauthenticated)
	case tc.LicenseStatus == types.LicenseActive:
		d = allow()
	case tc.LicenseStatus == types.LicenseSuspended:
		d = deny(ReasonSuspended)
	case tc.LicenseStatus == types.LicenseExpired:
		d = deny(ReasonExpired)
	case tc.LicenseStatus == types.LicenseCancelled:
		d = deny(ReasonCancelled)
	default:
		d = deny(ReasonUnknownStatus)
	}

	s.observe(ctx, "license", tc, "license", d)
	return d
}

// CheckTenantAccess enforces the tenant boundary, only super administrators
// may act on a tenant other than their own.
func (s *Service) CheckTenantAccess(ctx context.Context, tc *TenantContext, tenantID string) Decision {
	ctx, span := s.tracer.Start(ctx, "license.Service.CheckTenantAccess")
	defer span.End()

	var d Decision

	switch {
	case tc == nil:
		d = deny(ReasonUnauthenticated)
	case tc.IsSuperAdmin():
		d = allow()
	case tenantID != "" && tc.TenantID == tenantID:
		d = allow()
	default:
		d = deny(ReasonCrossTenant)
		s.logger.Security().AuthzFailure(tc.UserID, "tenant:"+tenantID)
	}

	s.observe(ctx, "tenant", tc, "tenant:"+tenantID, d)
	return d
}

// CheckFeature audits both outcomes.
func (s *Service) CheckFeature(ctx context.Context, tc *TenantContext, feature string) Decision {
	ctx, span := s.tracer.Start(ctx, "license.Service.CheckFeature")
	defer span.End()

	d := deny(ReasonFeature)
	if tc == nil {
		d = deny(ReasonUnauthenticated)
	} else if featureEnabled(tc.License, feature) {
		d = allow()
	}

	s.monitor.IncAccessDecision(map[string]string{"gate": "feature", "outcome": string(d.Reason)})

	ev := audit.FeatureAccess{Feature: feature, Granted: d.Allowed}
	if !d.Allowed {
		ev.Reason = string(d.Reason)
	}
	if tc != nil {
		ev.TenantID, ev.UserID, ev.LicenseID = tc.TenantID, tc.UserID, tc.LicenseID()
	}
	s.audit.Record(ctx, ev)

	return d
}

// CheckLimit compares current usage against maximum, zero or less means
// unlimited.
func (s *Service) CheckLimit(ctx context.Context, tc *TenantContext, limit string, current, maximum int) Decision {
	ctx, span := s.tracer.Start(ctx, "license.Service.CheckLimit")
	defer span.End()

	if tc == nil {
		return deny(ReasonUnauthenticated)
	}

	if maximum <= 0 || current < maximum {
		return allow()
	}

	d := deny(ReasonLimit)

	s.monitor.IncAccessDecision(map[string]string{"gate": "limit", "outcome": string(d.Reason)})
	s.audit.Record(ctx, audit.LimitExceeded{
		LicenseID: tc.LicenseID(),
		TenantID:  tc.TenantID,
		UserID:    tc.UserID,
		Limit:     limit,
		Current:   current,
		Max:       maximum,
	})

	return d
}

// CheckSeatLimit applies the license seat limit to the tenant's member count.
func (s *Service) CheckSeatLimit(ctx context.Context, tc *TenantContext) Decision {
	ctx, span := s.tracer.Start(ctx, "license.Service.CheckSeatLimit")
	defer span.End()

	if tc == nil || tc.TenantID == "" {
		return deny(ReasonUnauthenticated)
	}

	seats := PlanSeatLimit(types.PlanTrial)
	if tc.License != nil {
		seats = tc.License.SeatLimit
	}

	members, err := s.storage.CountMembersByTenantID(ctx, tc.TenantID)
	if err != nil {
		s.logger.Errorf("failed to count members of tenant %s: %v", tc.TenantID, err)
		return deny(ReasonLimit)
	}

	return s.CheckLimit(ctx, tc, LimitSeats, members, seats)
}

// LatestLicense returns the license currently governing tenantID, the
// active one when there is one.
func (s *Service) LatestLicense(ctx context.Context, tenantID string) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.Service.LatestLicense")
	defer span.End()

	l, err := s.storage.GetActiveLicenseByTenantID(ctx, tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		l, err = s.storage.GetLatestLicenseByTenantID(ctx, tenantID)
	}

	switch {
	case err == nil:
		return l, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrLicenseNotFound
	default:
		return nil, fmt.Errorf("failed to get license of tenant %s: %w", tenantID, err)
	}
}

// SeatUsage returns the member count of tenantID and its seat limit, zero
// meaning unlimited.
func (s *Service) SeatUsage(ctx context.Context, tenantID string) (int, int, error) {
	ctx, span := s.tracer.Start(ctx, "license.Service.SeatUsage")
	defer span.End()

	limit := PlanSeatLimit(types.PlanTrial)

	l, err := s.LatestLicense(ctx, tenantID)
	switch {
	case err == nil:
		limit = l.SeatLimit
	case !errors.Is(err, ErrLicenseNotFound):
		return 0, 0, err
	}

	used, err := s.storage.CountMembersByTenantID(ctx, tenantID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count members of tenant %s: %w", tenantID, err)
	}

	return used, limit, nil
}

func (s *Service) observe(ctx context.Context, gate string, tc *TenantContext, resource string, d Decision) {
	s.monitor.IncAccessDecision(map[string]string{"gate": gate, "outcome": string(d.Reason)})

	if d.Allowed {
		return
	}

	ev := audit.FeatureAccess{Feature: resource, Granted: false, Reason: string(d.Reason)}
	if tc != nil {
		ev.TenantID, ev.UserID, ev.LicenseID = tc.TenantID, tc.UserID, tc.LicenseID()
	}
	s.audit.Record(ctx, ev)
}

func NewService(
	storage StorageInterface,
	tx TransactorInterface,
	auditor AuditInterface,
	queue EnqueuerInterface,
	notifier NotifierInterface,
	gracePeriod time.Duration,
	expiryGrace time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.tx = tx
	s.audit = auditor
	s.queue = queue
	s.notifier = notifier
	s.gracePeriod = gracePeriod
	s.expiryGrace = expiryGrace
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
