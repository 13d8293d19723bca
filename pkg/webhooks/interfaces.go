// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/canonical/tenant-access-service/pkg/license"
)

// BillingInterface applies normalized billing events to licenses.
type BillingInterface interface {
	ApplyBillingEvent(ctx context.Context, ev license.BillingEvent) error
}

// ServiceInterface defines the webhook service operations.
type ServiceInterface interface {
	VerifySignature(body []byte, signature string) bool
	HandleBillingEvent(ctx context.Context, p *BillingPayload) error
}
