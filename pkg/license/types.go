// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"

	"github.com/canonical/tenant-access-service/internal/types"
)

// DefaultLicenseStatus applies to tenants with no license row at all, free
// and demo tenants are let through.
const DefaultLicenseStatus = types.LicenseActive

var (
	ErrLicenseNotFound    = errors.New("license not found")
	ErrActiveConflict     = errors.New("tenant already has an active license")
	ErrUnsupportedEvent   = errors.New("unsupported billing event")
	ErrInvalidBillingData = errors.New("invalid billing event")
)

// TenantContext is the resolved identity of a request, it is read only.
type TenantContext struct {
	TenantID      string
	UserID        string
	Role          types.Role
	LicenseStatus types.LicenseStatus
	// License is nil when the tenant has no license row.
	License *types.License
}

func (tc *TenantContext) LicenseID() string {
	if tc == nil || tc.License == nil {
		return ""
	}
	return tc.License.ID
}

func (tc *TenantContext) IsSuperAdmin() bool {
	return tc != nil && tc.Role == types.RoleSuperAdmin
}

type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonSuspended       Reason = "license_suspended"
	ReasonExpired         Reason = "license_expired"
	ReasonCancelled       Reason = "license_cancelled"
	ReasonUnknownStatus   Reason = "license_status_unknown"
	ReasonCrossTenant     Reason = "cross_tenant"
	ReasonFeature         Reason = "feature_not_in_plan"
	ReasonLimit           Reason = "limit_reached"
	ReasonRole            Reason = "role_not_allowed"
)

// Decision is the outcome of a policy check, denials are values rather than
// errors.
type Decision struct {
	Allowed bool
	Reason  Reason
	Status  int
	Message string
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonOK, Status: http.StatusOK}
}

func deny(reason Reason) Decision {
	d := Decision{Reason: reason}

	switch reason {
	case ReasonUnauthenticated:
		d.Status, d.Message = http.StatusUnauthorized, "Please sign in to continue."
	case ReasonSuspended:
		d.Status, d.Message = http.StatusPaymentRequired, "Your organization's access is on hold. Please contact your administrator about billing."
	case ReasonExpired:
		d.Status, d.Message = http.StatusPaymentRequired, "Your organization's license has expired. Please renew to continue."
	case ReasonCancelled:
		d.Status, d.Message = http.StatusForbidden, "Your organization's access has ended."
	case ReasonFeature:
		d.Status, d.Message = http.StatusForbidden, "This feature is not included in your organization's plan."
	case ReasonLimit:
		d.Status, d.Message = http.StatusForbidden, "Your organization has reached its plan limit."
	default:
		d.Status, d.Message = http.StatusForbidden, "You do not have access to this resource."
	}

	return d
}

// GRPCCode maps the decision onto the gRPC status taxonomy.
func (d Decision) GRPCCode() codes.Code {
	switch {
	case d.Allowed:
		return codes.OK
	case d.Status == http.StatusUnauthorized:
		return codes.Unauthenticated
	case d.Status == http.StatusPaymentRequired:
		return codes.FailedPrecondition
	default:
		return codes.PermissionDenied
	}
}

type BillingEventType string

const (
	EventSubscriptionActivated BillingEventType = "subscription.activated"
	EventInvoicePaymentFailed  BillingEventType = "invoice.payment_failed"
	EventSubscriptionPastDue   BillingEventType = "subscription.past_due"
	EventSubscriptionCanceled  BillingEventType = "subscription.canceled"
	EventChargeRefunded        BillingEventType = "charge.refunded"
	EventDisputeOpened         BillingEventType = "dispute.opened"
	EventDisputeClosed         BillingEventType = "dispute.closed"
)

const (
	DisputeWon  = "won"
	DisputeLost = "lost"
)

// BillingEvent is the processor neutral form of a subscription lifecycle event.
type BillingEvent struct {
	ID             string
	Type           BillingEventType
	SubscriptionID string
	CustomerID     string
	TenantID       string
	Plan           types.Plan
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	Reason         string
	Outcome        string
	ContactEmail   string
}
