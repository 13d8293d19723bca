// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"github.com/canonical/tenant-access-service/internal/types"
)

// Event is the generic envelope persisted for every audit kind. Metadata is
// encoded as JSON when the entry is written.
type Event struct {
	Kind      types.AuditKind
	LicenseID string
	TenantID  string
	UserID    string
	Metadata  any
}

// Recordable is implemented by every typed event.
type Recordable interface {
	AuditEvent() Event
}

func (e Event) AuditEvent() Event { return e }

type LicenseCreated struct {
	LicenseID string
	TenantID  string
	UserID    string
	Plan      types.Plan
}

func (e LicenseCreated) AuditEvent() Event {
	return Event{
		Kind:      types.AuditLicenseCreated,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"plan": e.Plan},
	}
}

// ValidationAttempt records the outcome of a license check on the request path.
type ValidationAttempt struct {
	LicenseID string
	TenantID  string
	UserID    string
	Status    types.LicenseStatus
	Valid     bool
	Reason    string
}

func (e ValidationAttempt) AuditEvent() Event {
	kind := types.AuditLicenseValidated
	if !e.Valid {
		kind = types.AuditLicenseValidationFailed
	}

	return Event{
		Kind:      kind,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"status": e.Status, "reason": e.Reason},
	}
}

// FeatureAccess covers both outcomes of a feature or gate check.
type FeatureAccess struct {
	LicenseID string
	TenantID  string
	UserID    string
	Feature   string
	Granted   bool
	Reason    string
}

func (e FeatureAccess) AuditEvent() Event {
	kind := types.AuditFeatureAccessed
	if !e.Granted {
		kind = types.AuditFeatureDenied
	}

	metadata := map[string]any{"feature": e.Feature}
	if e.Reason != "" {
		metadata["reason"] = e.Reason
	}

	return Event{
		Kind:      kind,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  metadata,
	}
}

type LimitExceeded struct {
	LicenseID string
	TenantID  string
	UserID    string
	Limit     string
	Current   int
	Max       int
}

func (e LimitExceeded) AuditEvent() Event {
	return Event{
		Kind:      types.AuditLimitExceeded,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"limit": e.Limit, "current": e.Current, "max": e.Max},
	}
}

type CloneRequested struct {
	TenantID       string
	SourceTenantID string
	UserID         string
}

func (e CloneRequested) AuditEvent() Event {
	return Event{
		Kind:     types.AuditCloneRequested,
		TenantID: e.TenantID,
		UserID:   e.UserID,
		Metadata: map[string]any{"source_tenant_id": e.SourceTenantID},
	}
}

type CloneCompleted struct {
	LicenseID      string
	TenantID       string
	SourceTenantID string
	UserID         string
}

func (e CloneCompleted) AuditEvent() Event {
	return Event{
		Kind:      types.AuditCloneCompleted,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"source_tenant_id": e.SourceTenantID},
	}
}

// LicenseStatusChanged maps a lifecycle transition onto its audit kind.
type LicenseStatusChanged struct {
	LicenseID string
	TenantID  string
	UserID    string
	From      types.LicenseStatus
	To        types.LicenseStatus
	Reason    string
}

func (e LicenseStatusChanged) AuditEvent() Event {
	var kind types.AuditKind

	switch e.To {
	case types.LicenseSuspended:
		kind = types.AuditLicenseSuspended
	case types.LicenseExpired:
		kind = types.AuditLicenseExpired
	case types.LicenseCancelled:
		kind = types.AuditLicenseRevoked
	default:
		kind = types.AuditLicenseReactivated
	}

	return Event{
		Kind:      kind,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"from": e.From, "to": e.To, "reason": e.Reason},
	}
}

type LicenseRenewed struct {
	LicenseID   string
	TenantID    string
	PeriodStart string
	PeriodEnd   string
}

func (e LicenseRenewed) AuditEvent() Event {
	return Event{
		Kind:      types.AuditLicenseRenewed,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		Metadata:  map[string]any{"period_start": e.PeriodStart, "period_end": e.PeriodEnd},
	}
}

type TierChanged struct {
	LicenseID string
	TenantID  string
	UserID    string
	From      types.Plan
	To        types.Plan
}

func (e TierChanged) AuditEvent() Event {
	return Event{
		Kind:      types.AuditLicenseTierChanged,
		LicenseID: e.LicenseID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		Metadata:  map[string]any{"from": e.From, "to": e.To},
	}
}

type EnrollmentAdvanced struct {
	EnrollmentID string
	UserID       string
	From         types.EnrollmentStatus
	To           types.EnrollmentStatus
}

func (e EnrollmentAdvanced) AuditEvent() Event {
	return Event{
		Kind:     types.AuditEnrollmentAdvanced,
		UserID:   e.UserID,
		Metadata: map[string]any{"enrollment_id": e.EnrollmentID, "from": e.From, "to": e.To},
	}
}
