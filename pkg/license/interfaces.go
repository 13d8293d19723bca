// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

// StorageInterface defines the storage operations required by the license package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetMembershipByPrincipalID(ctx context.Context, principalID string) (*types.Membership, error)
	CountMembersByTenantID(ctx context.Context, tenantID string) (int, error)
	CreateLicense(ctx context.Context, l *types.License) (*types.License, error)
	GetLicenseByID(ctx context.Context, id string) (*types.License, error)
	GetActiveLicenseByTenantID(ctx context.Context, tenantID string) (*types.License, error)
	GetLatestLicenseByTenantID(ctx context.Context, tenantID string) (*types.License, error)
	GetLicenseBySubscriptionID(ctx context.Context, subscriptionID string) (*types.License, error)
	UpdateLicenseStatus(ctx context.Context, id string, status types.LicenseStatus, reason *string) error
	UpdateLicensePeriod(ctx context.Context, id string, start, end time.Time) error
	UpdateLicensePlan(ctx context.Context, id string, plan types.Plan, features map[string]bool, seatLimit int) error
	ExpireLicenses(ctx context.Context, cutoff time.Time) ([]*types.License, error)
}

// TransactorInterface runs fn in a single database transaction, status
// changes and the jobs they schedule commit together.
type TransactorInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type AuditInterface interface {
	Record(ctx context.Context, ev audit.Recordable)
}

type EnqueuerInterface interface {
	Enqueue(ctx context.Context, p jobs.Payload, opts jobs.EnqueueOptions) (*types.Job, error)
}

type NotifierInterface interface {
	EnqueueNotification(ctx context.Context, n notifications.Notification) (string, bool)
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*TenantContext, bool)
}

// ServiceInterface is the decision surface the middleware depends on.
type ServiceInterface interface {
	CheckAccess(ctx context.Context, tc *TenantContext) Decision
	CheckTenantAccess(ctx context.Context, tc *TenantContext, tenantID string) Decision
	CheckFeature(ctx context.Context, tc *TenantContext, feature string) Decision
	CheckLimit(ctx context.Context, tc *TenantContext, limit string, current, maximum int) Decision
}
