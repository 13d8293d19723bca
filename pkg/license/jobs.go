// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"

	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/jobs"
)

// SuspendHandler processes suspend_license jobs.
type SuspendHandler struct {
	service *Service
}

func (h *SuspendHandler) Handle(ctx context.Context, job *types.Job) error {
	ctx, span := h.service.tracer.Start(ctx, "license.SuspendHandler.Handle")
	defer span.End()

	p, err := jobs.Decode[jobs.SuspendLicense](job)
	if err != nil {
		return err
	}

	return h.service.commit(ctx, func(ctx context.Context, c *change) error {
		l, err := h.service.getLicense(ctx, p.LicenseID)
		if err != nil {
			if errors.Is(err, ErrLicenseNotFound) {
				return jobs.Permanent(err)
			}
			return err
		}

		if l.Status != types.LicenseActive {
			h.service.logger.Infof("license %s already %s, nothing to suspend", l.ID, l.Status)
			return nil
		}

		if p.ExpectedPeriodEnd != nil && (l.CurrentPeriodEnd == nil || !l.CurrentPeriodEnd.Equal(*p.ExpectedPeriodEnd)) {
			h.service.logger.Infof("license %s was renewed since the suspension was scheduled, skipping", l.ID)
			return nil
		}

		_, err = h.service.transition(ctx, c, l, types.LicenseSuspended, SystemActor, p.Reason, "")
		return err
	})
}

// ProvisionHandler processes provision_license jobs.
type ProvisionHandler struct {
	service *Service
}

func (h *ProvisionHandler) Handle(ctx context.Context, job *types.Job) error {
	ctx, span := h.service.tracer.Start(ctx, "license.ProvisionHandler.Handle")
	defer span.End()

	p, err := jobs.Decode[jobs.ProvisionLicense](job)
	if err != nil {
		return err
	}

	if _, err := h.service.Provision(ctx, p); err != nil {
		if errors.Is(err, ErrInvalidBillingData) || errors.Is(err, ErrActiveConflict) {
			return jobs.Permanent(err)
		}
		return err
	}

	return nil
}

func NewSuspendHandler(s *Service) *SuspendHandler {
	return &SuspendHandler{service: s}
}

func NewProvisionHandler(s *Service) *ProvisionHandler {
	return &ProvisionHandler{service: s}
}
