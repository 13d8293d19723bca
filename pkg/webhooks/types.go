// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/license"
)

// SignatureHeader carries the hex encoded HMAC-SHA256 of the raw body,
// optionally prefixed with "sha256=".
const SignatureHeader = "X-Billing-Signature"

// BillingPayload is the wire form of a billing processor event.
type BillingPayload struct {
	ID             string     `json:"id" validate:"required,max=255"`
	Type           string     `json:"type" validate:"required,max=64"`
	SubscriptionID string     `json:"subscription_id" validate:"required_without=TenantID,max=255"`
	CustomerID     string     `json:"customer_id" validate:"max=255"`
	TenantID       string     `json:"tenant_id" validate:"required_without=SubscriptionID,max=64"`
	Plan           types.Plan `json:"plan" validate:"omitempty,oneof=trial basic professional enterprise"`
	PeriodStart    *time.Time `json:"period_start" validate:"required_with=PeriodEnd"`
	PeriodEnd      *time.Time `json:"period_end" validate:"omitempty,gtfield=PeriodStart"`
	Reason         string     `json:"reason" validate:"max=500"`
	Outcome        string     `json:"outcome" validate:"omitempty,oneof=won lost"`
	ContactEmail   string     `json:"contact_email" validate:"omitempty,email,max=254"`
}

func (p *BillingPayload) event() license.BillingEvent {
	return license.BillingEvent{
		ID:             p.ID,
		Type:           license.BillingEventType(p.Type),
		SubscriptionID: p.SubscriptionID,
		CustomerID:     p.CustomerID,
		TenantID:       p.TenantID,
		Plan:           p.Plan,
		PeriodStart:    p.PeriodStart,
		PeriodEnd:      p.PeriodEnd,
		Reason:         p.Reason,
		Outcome:        p.Outcome,
		ContactEmail:   p.ContactEmail,
	}
}
