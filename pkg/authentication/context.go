// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type principalKey struct{}

// WithUserID stores the authenticated principal id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// GetUserID returns the authenticated principal id, false for anonymous
// requests.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey{}).(string)
	return id, ok && id != ""
}
