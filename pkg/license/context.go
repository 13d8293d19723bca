// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import "context"

type tenantContextKey struct{}

func WithTenantContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// TenantContextFrom returns the context placed by Middleware.RequireLicense.
func TenantContextFrom(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey{}).(*TenantContext)
	return tc, ok && tc != nil
}
