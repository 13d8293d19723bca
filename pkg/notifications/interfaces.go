// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
)

// Deliverer is the outbound transport for rendered messages.
type Deliverer interface {
	Deliver(ctx context.Context, address, subject, body string) error
}

type ServiceInterface interface {
	EnqueueNotification(ctx context.Context, n Notification) (string, bool)
}
