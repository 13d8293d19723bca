// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

type MonitorInterface interface {
	GetService() string
	SetResponseTimeMetric(map[string]string, float64) error
	SetDependencyAvailability(map[string]string, float64) error
	// IncAccessDecision counts license/feature/tenant gate outcomes, tags: gate, outcome
	IncAccessDecision(map[string]string) error
	// IncAuditWriteFailure counts audit entries that could not be persisted, tags: kind
	IncAuditWriteFailure(map[string]string) error
	// IncJobOutcome counts processed jobs, tags: type, outcome
	IncJobOutcome(map[string]string) error
	// IncTokenValidation counts capability token validations, tags: purpose, outcome
	IncTokenValidation(map[string]string) error
}
