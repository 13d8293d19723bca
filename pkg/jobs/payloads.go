// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/canonical/tenant-access-service/internal/types"
)

// Payload is implemented by every typed job body.
type Payload interface {
	JobType() types.JobType
}

type SendEmail struct {
	To           string         `json:"to"`
	TemplateKey  string         `json:"template_key"`
	TemplateData map[string]any `json:"template_data,omitempty"`
}

func (SendEmail) JobType() types.JobType { return types.JobSendEmail }

// ProvisionLicense creates an active license for a tenant, optionally copying
// the plan of a template tenant.
type ProvisionLicense struct {
	TenantID              string     `json:"tenant_id"`
	Plan                  types.Plan `json:"plan,omitempty"`
	SourceTenantID        string     `json:"source_tenant_id,omitempty"`
	RequestedBy           string     `json:"requested_by,omitempty"`
	BillingCustomerID     string     `json:"billing_customer_id,omitempty"`
	BillingSubscriptionID string     `json:"billing_subscription_id,omitempty"`
	PeriodStart           *time.Time `json:"period_start,omitempty"`
	PeriodEnd             *time.Time `json:"period_end,omitempty"`
}

func (ProvisionLicense) JobType() types.JobType { return types.JobProvisionLicense }

// SuspendLicense suspends a license. When ExpectedPeriodEnd is set the
// suspension is skipped if the license period moved since the job was queued.
type SuspendLicense struct {
	LicenseID         string     `json:"license_id"`
	Reason            string     `json:"reason"`
	ExpectedPeriodEnd *time.Time `json:"expected_period_end,omitempty"`
}

func (SuspendLicense) JobType() types.JobType { return types.JobSuspendLicense }

// Decode unmarshals the payload of job into T, checking the job type first.
func Decode[T Payload](job *types.Job) (T, error) {
	var p T

	if job.Type != p.JobType() {
		return p, Permanent(fmt.Errorf("job %s has type %s, expected %s", job.ID, job.Type, p.JobType()))
	}

	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return p, Permanent(fmt.Errorf("failed to decode %s payload: %w", job.Type, err))
	}

	return p, nil
}
