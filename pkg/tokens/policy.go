// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"errors"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
)

var ErrUnknownPurpose = errors.New("unknown token purpose")

const day = 24 * time.Hour

// Constraints override the purpose defaults, zero values keep the default.
type Constraints struct {
	ExpiresIn time.Duration
	MaxUses   int
}

// Policies are the per-purpose defaults applied at issue time.
var Policies = map[types.TokenPurpose]Constraints{
	// a host site logs hours for a cohort over a week
	types.PurposeHostShopHours: {ExpiresIn: 7 * day, MaxUses: 100},
	types.PurposeTransferHours: {ExpiresIn: 14 * day, MaxUses: 1},
	types.PurposeCESubmission:  {ExpiresIn: 30 * day, MaxUses: 1},
	// a partner may need to upload a handful of files
	types.PurposePartnerDocumentUpload: {ExpiresIn: 7 * day, MaxUses: 5},
}

func resolveConstraints(purpose types.TokenPurpose, c Constraints) (Constraints, error) {
	policy, ok := Policies[purpose]
	if !ok {
		return Constraints{}, ErrUnknownPurpose
	}

	if c.ExpiresIn > 0 {
		policy.ExpiresIn = c.ExpiresIn
	}
	if c.MaxUses > 0 {
		policy.MaxUses = c.MaxUses
	}

	return policy, nil
}

func ValidPurpose(p types.TokenPurpose) bool {
	_, ok := Policies[p]
	return ok
}
