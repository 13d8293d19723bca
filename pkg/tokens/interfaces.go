// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"context"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
)

// StorageInterface is the insert, read and increment subset of internal/storage.
type StorageInterface interface {
	CreateAccessToken(ctx context.Context, t *types.AccessToken) (*types.AccessToken, error)
	ConsumeAccessToken(ctx context.Context, token string, purpose types.TokenPurpose, now time.Time) (*types.AccessToken, error)
}

type ServiceInterface interface {
	Issue(ctx context.Context, purpose types.TokenPurpose, targetID string, c Constraints) (*types.AccessToken, error)
	Validate(ctx context.Context, token string, purpose types.TokenPurpose) (*types.AccessToken, bool)
}
