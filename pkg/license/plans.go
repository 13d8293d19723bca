// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"maps"

	"github.com/canonical/tenant-access-service/internal/types"
)

const (
	FeatureReports        = "reports"
	FeatureBulkImport     = "bulk_import"
	FeatureAPIAccess      = "api_access"
	FeatureCustomBranding = "custom_branding"
	FeaturePartnerPortal  = "partner_portal"
	FeatureSSO            = "sso"
)

// LimitSeats is the member count limit checked against License.SeatLimit.
const LimitSeats = "seats"

type planDefaults struct {
	features  map[string]bool
	seatLimit int
}

// a seat limit of 0 means unlimited
var plans = map[types.Plan]planDefaults{
	types.PlanTrial: {
		features:  map[string]bool{FeatureReports: true},
		seatLimit: 5,
	},
	types.PlanBasic: {
		features:  map[string]bool{FeatureReports: true, FeatureBulkImport: true},
		seatLimit: 25,
	},
	types.PlanProfessional: {
		features: map[string]bool{
			FeatureReports:        true,
			FeatureBulkImport:     true,
			FeatureAPIAccess:      true,
			FeatureCustomBranding: true,
			FeaturePartnerPortal:  true,
		},
		seatLimit: 100,
	},
	types.PlanEnterprise: {
		features: map[string]bool{
			FeatureReports:        true,
			FeatureBulkImport:     true,
			FeatureAPIAccess:      true,
			FeatureCustomBranding: true,
			FeaturePartnerPortal:  true,
			FeatureSSO:            true,
		},
	},
}

func ValidPlan(p types.Plan) bool {
	_, ok := plans[p]
	return ok
}

// PlanFeatures returns a copy of the default feature map of p.
func PlanFeatures(p types.Plan) map[string]bool {
	return maps.Clone(plans[p].features)
}

func PlanSeatLimit(p types.Plan) int {
	return plans[p].seatLimit
}

// featureEnabled checks the license feature map, falling back to the trial
// plan for tenants without a license row.
func featureEnabled(l *types.License, feature string) bool {
	if l == nil {
		return plans[types.PlanTrial].features[feature]
	}

	if enabled, ok := l.Features[feature]; ok {
		return enabled
	}

	return plans[l.Plan].features[feature]
}
