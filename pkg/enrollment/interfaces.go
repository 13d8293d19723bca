// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"context"
	"time"

	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

// StorageInterface defines the storage operations required by the enrollment package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	CreateEnrollment(ctx context.Context, e *types.Enrollment) (*types.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id string) (*types.Enrollment, error)
	GetEnrollmentByPrincipalID(ctx context.Context, principalID string) (*types.Enrollment, error)
	TransitionEnrollment(ctx context.Context, id string, from, to types.EnrollmentStatus, stamps storage.EnrollmentStamps) error
	RetireEnrollment(ctx context.Context, id string, now time.Time) error
}

type AuditInterface interface {
	Record(ctx context.Context, ev audit.Recordable)
}

type NotifierInterface interface {
	EnqueueNotification(ctx context.Context, n notifications.Notification) (string, bool)
}

type GateInterface interface {
	GateAccess(ctx context.Context, principalID, currentPath string) GateResult
}
