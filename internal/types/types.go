// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleStudent        Role = "student"
	RoleStaff          Role = "staff"
	RoleInstructor     Role = "instructor"
	RoleAdmin          Role = "admin"
	RoleSuperAdmin     Role = "super_admin"
	RolePartner        Role = "partner"
	RoleProgramHolder  Role = "program_holder"
	RoleWorkforceBoard Role = "workforce_board"
	RoleEmployer       Role = "employer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleInstructor, RoleAdmin, RoleSuperAdmin,
		RolePartner, RoleProgramHolder, RoleWorkforceBoard, RoleEmployer:
		return true
	}
	return false
}

type Tenant struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Enabled   bool      `db:"enabled" json:"enabled"`
}

type Membership struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenant_id"`
	PrincipalID string    `db:"principal_id" json:"principal_id"`
	Role        Role      `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "active"
	LicenseSuspended LicenseStatus = "suspended"
	LicenseExpired   LicenseStatus = "expired"
	LicenseCancelled LicenseStatus = "cancelled"
)

type Plan string

const (
	PlanTrial        Plan = "trial"
	PlanBasic        Plan = "basic"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

type License struct {
	ID                    string          `db:"id" json:"id"`
	TenantID              string          `db:"tenant_id" json:"tenant_id"`
	Plan                  Plan            `db:"plan" json:"plan"`
	Status                LicenseStatus   `db:"status" json:"status"`
	CurrentPeriodStart    *time.Time      `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd      *time.Time      `db:"current_period_end" json:"current_period_end"`
	BillingCustomerID     string          `db:"billing_customer_id" json:"billing_customer_id"`
	BillingSubscriptionID string          `db:"billing_subscription_id" json:"billing_subscription_id"`
	Features              map[string]bool `db:"features" json:"features"`
	SeatLimit             int             `db:"seat_limit" json:"seat_limit"`
	SuspensionReason      *string         `db:"suspension_reason" json:"suspension_reason"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at" json:"updated_at"`
}

type AuditKind string

const (
	AuditLicenseCreated          AuditKind = "license.created"
	AuditLicenseValidated        AuditKind = "license.validated"
	AuditLicenseValidationFailed AuditKind = "license.validation_failed"
	AuditLicenseExpired          AuditKind = "license.expired"
	AuditLicenseSuspended        AuditKind = "license.suspended"
	AuditLicenseRenewed          AuditKind = "license.renewed"
	AuditLicenseTierChanged      AuditKind = "license.tier_changed"
	AuditLicenseRevoked          AuditKind = "license.revoked"
	AuditLicenseReactivated      AuditKind = "license.reactivated"
	AuditFeatureAccessed         AuditKind = "feature.accessed"
	AuditFeatureDenied           AuditKind = "feature.denied"
	AuditLimitExceeded           AuditKind = "limit.exceeded"
	AuditCloneRequested          AuditKind = "clone.requested"
	AuditCloneCompleted          AuditKind = "clone.completed"
	AuditEnrollmentAdvanced      AuditKind = "enrollment.advanced"
)

// AuditEntry is immutable once inserted, Metadata is the JSON encoded payload
// of the kind specific event.
type AuditEntry struct {
	ID        string          `db:"id" json:"id"`
	Kind      AuditKind       `db:"kind" json:"kind"`
	LicenseID *string         `db:"license_id" json:"license_id"`
	TenantID  *string         `db:"tenant_id" json:"tenant_id"`
	UserID    *string         `db:"user_id" json:"user_id"`
	IPAddress *string         `db:"ip_address" json:"ip_address"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type TokenPurpose string

const (
	PurposeHostShopHours         TokenPurpose = "host_shop_hours"
	PurposeTransferHours         TokenPurpose = "transfer_hours"
	PurposeCESubmission          TokenPurpose = "ce_submission"
	PurposePartnerDocumentUpload TokenPurpose = "partner_document_upload"
)

type AccessToken struct {
	ID        string       `db:"id" json:"id"`
	Token     string       `db:"token" json:"token"`
	Purpose   TokenPurpose `db:"purpose" json:"purpose"`
	TargetID  *string      `db:"target_id" json:"target_id"`
	ExpiresAt time.Time    `db:"expires_at" json:"expires_at"`
	MaxUses   int          `db:"max_uses" json:"max_uses"`
	UsesCount int          `db:"uses_count" json:"uses_count"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

type JobType string

const (
	JobSendEmail        JobType = "send_email"
	JobProvisionLicense JobType = "provision_license"
	JobSuspendLicense   JobType = "suspend_license"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is the persisted outbox row, Payload is the JSON encoded payload of the
// type specific job.
type Job struct {
	ID           string          `db:"id" json:"id"`
	Type         JobType         `db:"type" json:"type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       JobStatus       `db:"status" json:"status"`
	Attempts     int             `db:"attempts" json:"attempts"`
	MaxAttempts  int             `db:"max_attempts" json:"max_attempts"`
	LastError    *string         `db:"last_error" json:"last_error"`
	ScheduledFor time.Time       `db:"scheduled_for" json:"scheduled_for"`
	ClaimedUntil *time.Time      `db:"claimed_until" json:"claimed_until,omitempty"`
	DedupeKey    *string         `db:"dedupe_key" json:"dedupe_key,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at"`
}

type EnrollmentStatus string

const (
	EnrollmentApplied             EnrollmentStatus = "applied"
	EnrollmentApproved            EnrollmentStatus = "approved"
	EnrollmentPaid                EnrollmentStatus = "paid"
	EnrollmentConfirmed           EnrollmentStatus = "confirmed"
	EnrollmentOrientationComplete EnrollmentStatus = "orientation_complete"
	EnrollmentDocumentsComplete   EnrollmentStatus = "documents_complete"
	EnrollmentActive              EnrollmentStatus = "active"
)

type Enrollment struct {
	ID                     string           `db:"id" json:"id"`
	PrincipalID            string           `db:"principal_id" json:"principal_id"`
	ProgramID              string           `db:"program_id" json:"program_id"`
	Status                 EnrollmentStatus `db:"status" json:"status"`
	OrientationCompletedAt *time.Time       `db:"orientation_completed_at" json:"orientation_completed_at"`
	DocumentsSubmittedAt   *time.Time       `db:"documents_submitted_at" json:"documents_submitted_at"`
	RetiredAt              *time.Time       `db:"retired_at" json:"retired_at"`
	CreatedAt              time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time        `db:"updated_at" json:"updated_at"`
}
