// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
)

type StorageInterface interface {
	TenantStorage
	LicenseStorage
	AuditStorage
	TokenStorage
	JobStorage
	EnrollmentStorage
}

type TenantStorage interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, enabled bool) error
	AddMember(ctx context.Context, tenantID, principalID string, role types.Role) (string, error)
	GetMembershipByPrincipalID(ctx context.Context, principalID string) (*types.Membership, error)
	CountMembersByTenantID(ctx context.Context, tenantID string) (int, error)
}

type LicenseStorage interface {
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

// AuditStorage is insert and read only, audit entries are never updated or deleted.
type AuditStorage interface {
	InsertAuditEntry(ctx context.Context, e *types.AuditEntry) error
	ListAuditEntries(ctx context.Context, filter AuditFilter) ([]*types.AuditEntry, error)
}

type AuditFilter struct {
	TenantID  string
	LicenseID string
	Kind      types.AuditKind
	Page      int64
	Size      int64
}

// TokenStorage is insert, read and increment only.
type TokenStorage interface {
	CreateAccessToken(ctx context.Context, t *types.AccessToken) (*types.AccessToken, error)
	GetAccessToken(ctx context.Context, token string) (*types.AccessToken, error)
	ConsumeAccessToken(ctx context.Context, token string, purpose types.TokenPurpose, now time.Time) (*types.AccessToken, error)
}

type JobStorage interface {
	InsertJob(ctx context.Context, j *types.Job) (*types.Job, error)
	GetJobByID(ctx context.Context, id string) (*types.Job, error)
	ClaimJobs(ctx context.Context, jobTypes []types.JobType, limit uint64, now time.Time, lease time.Duration) ([]*types.Job, error)
	FailAbandonedJobs(ctx context.Context, now time.Time) (int64, error)
	CountUnhandledJobs(ctx context.Context, known []types.JobType) (map[types.JobType]int, error)
	CompleteJob(ctx context.Context, id string, now time.Time) error
	FailJob(ctx context.Context, id string, lastError string, terminal bool, retryAt time.Time) error
	RetryJob(ctx context.Context, id string, now time.Time) error
	ListJobsByStatus(ctx context.Context, status types.JobStatus, page, size int64) ([]*types.Job, error)
}

type EnrollmentStorage interface {
	CreateEnrollment(ctx context.Context, e *types.Enrollment) (*types.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id string) (*types.Enrollment, error)
	GetEnrollmentByPrincipalID(ctx context.Context, principalID string) (*types.Enrollment, error)
	TransitionEnrollment(ctx context.Context, id string, from, to types.EnrollmentStatus, stamps EnrollmentStamps) error
	RetireEnrollment(ctx context.Context, id string, now time.Time) error
}

// EnrollmentStamps carries the gating timestamps set alongside a transition,
// nil fields are left untouched.
type EnrollmentStamps struct {
	OrientationCompletedAt *time.Time
	DocumentsSubmittedAt   *time.Time
}
