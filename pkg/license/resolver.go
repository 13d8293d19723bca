// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"
	"slices"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
)

var _ ResolverInterface = (*Resolver)(nil)

// Resolver turns an authenticated principal into a TenantContext. It never
// writes.
type Resolver struct {
	storage     StorageInterface
	superAdmins []string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Resolve reports false when the principal has no usable tenant context,
// including on any storage failure. Callers deny in that case.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (*TenantContext, bool) {
	ctx, span := r.tracer.Start(ctx, "license.Resolver.Resolve")
	defer span.End()

	if principalID == "" {
		return nil, false
	}

	platformAdmin := slices.Contains(r.superAdmins, principalID)

	m, err := r.storage.GetMembershipByPrincipalID(ctx, principalID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Errorf("failed to resolve membership for %s: %v", principalID, err)
			return nil, false
		}
		if !platformAdmin {
			return nil, false
		}
		// platform administrators may have no home tenant
		return &TenantContext{UserID: principalID, Role: types.RoleSuperAdmin, LicenseStatus: DefaultLicenseStatus}, true
	}

	tc := &TenantContext{
		TenantID: m.TenantID,
		UserID:   principalID,
		Role:     m.Role,
	}
	if platformAdmin {
		tc.Role = types.RoleSuperAdmin
	}

	l, err := r.storage.GetActiveLicenseByTenantID(ctx, m.TenantID)
	switch {
	case err == nil:
		tc.License = l
		tc.LicenseStatus = l.Status
		return tc, true
	case !errors.Is(err, storage.ErrNotFound):
		r.logger.Errorf("failed to resolve active license for tenant %s: %v", m.TenantID, err)
		return nil, false
	}

	l, err = r.storage.GetLatestLicenseByTenantID(ctx, m.TenantID)
	switch {
	case err == nil:
		tc.License = l
		tc.LicenseStatus = l.Status
	case errors.Is(err, storage.ErrNotFound):
		tc.LicenseStatus = DefaultLicenseStatus
	default:
		r.logger.Errorf("failed to resolve latest license for tenant %s: %v", m.TenantID, err)
		return nil, false
	}

	return tc, true
}

func NewResolver(storage StorageInterface, superAdmins []string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.storage = storage
	r.superAdmins = superAdmins

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
