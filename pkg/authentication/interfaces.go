// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type TokenVerifierInterface interface {
	// VerifyToken returns the subject of rawToken when it is valid and passes
	// the configured access policy.
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}
