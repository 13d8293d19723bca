// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

// SystemActor is recorded as the principal of transitions made by the service
// itself.
const SystemActor = "system"

// change collects what a write path produced, audit entries are recorded only
// once the transaction committed.
type change struct {
	events []audit.Recordable
}

func (c *change) add(ev audit.Recordable) {
	c.events = append(c.events, ev)
}

// commit runs fn in one transaction and then records the collected audit
// entries outside of it.
func (s *Service) commit(ctx context.Context, fn func(ctx context.Context, c *change) error) error {
	c := new(change)

	if err := s.tx.WithTx(ctx, func(ctx context.Context) error { return fn(ctx, c) }); err != nil {
		return err
	}

	for _, ev := range c.events {
		s.audit.Record(ctx, ev)
	}

	return nil
}

func (s *Service) getLicense(ctx context.Context, id string) (*types.License, error) {
	l, err := s.storage.GetLicenseByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to get license %s: %w", id, err)
	}
	return l, nil
}

// transition moves l to status and reports whether anything changed.
func (s *Service) transition(ctx context.Context, c *change, l *types.License, to types.LicenseStatus, actor, reason, contact string) (bool, error) {
	if l.Status == to {
		return false, nil
	}

	var stored *string
	if to != types.LicenseActive && reason != "" {
		stored = &reason
	}

	if err := s.storage.UpdateLicenseStatus(ctx, l.ID, to, stored); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			return false, ErrActiveConflict
		case errors.Is(err, storage.ErrNotFound):
			return false, ErrLicenseNotFound
		}
		return false, fmt.Errorf("failed to update license %s: %w", l.ID, err)
	}

	from := l.Status
	l.Status = to
	l.SuspensionReason = stored

	s.logger.Infof("license %s of tenant %s moved from %s to %s (%s)", l.ID, l.TenantID, from, to, reason)

	c.add(audit.LicenseStatusChanged{
		LicenseID: l.ID,
		TenantID:  l.TenantID,
		UserID:    actor,
		From:      from,
		To:        to,
		Reason:    reason,
	})

	switch to {
	case types.LicenseSuspended, types.LicenseCancelled:
		s.notify(ctx, l.TenantID, contact, notifications.TemplateLicenseSuspended, map[string]any{"Reason": reason})
	case types.LicenseActive:
		s.notify(ctx, l.TenantID, contact, notifications.TemplateLicenseReactivated, nil)
	}

	return true, nil
}

func (s *Service) notify(ctx context.Context, tenantID, contact, template string, data map[string]any) {
	if contact == "" {
		return
	}

	if data == nil {
		data = map[string]any{}
	}

	data["TenantName"] = tenantID
	if t, err := s.storage.GetTenantByID(ctx, tenantID); err == nil {
		data["TenantName"] = t.Name
	}

	if _, ok := s.notifier.EnqueueNotification(ctx, notifications.Notification{
		ToAddress:    contact,
		TemplateKey:  template,
		TemplateData: data,
	}); !ok {
		s.logger.Warnf("failed to enqueue %s notification for tenant %s", template, tenantID)
	}
}

func (s *Service) setStatus(ctx context.Context, licenseID string, to types.LicenseStatus, actor, reason string) error {
	return s.commit(ctx, func(ctx context.Context, c *change) error {
		l, err := s.getLicense(ctx, licenseID)
		if err != nil {
			return err
		}

		_, err = s.transition(ctx, c, l, to, actor, reason, "")
		return err
	})
}

// Suspend is the administrative override putting a license on hold.
func (s *Service) Suspend(ctx context.Context, licenseID, actor, reason string) error {
	ctx, span := s.tracer.Start(ctx, "license.Service.Suspend")
	defer span.End()

	if err := s.setStatus(ctx, licenseID, types.LicenseSuspended, actor, reason); err != nil {
		return err
	}

	s.logger.Security().AdminAction(actor, "license.suspend", licenseID)
	return nil
}

// Reactivate is the administrative override restoring a license to active.
func (s *Service) Reactivate(ctx context.Context, licenseID, actor, reason string) error {
	ctx, span := s.tracer.Start(ctx, "license.Service.Reactivate")
	defer span.End()

	if err := s.setStatus(ctx, licenseID, types.LicenseActive, actor, reason); err != nil {
		return err
	}

	s.logger.Security().AdminAction(actor, "license.reactivate", licenseID)
	return nil
}

// Provision creates the active license of a tenant, copying the plan of
// p.SourceTenantID when set. A tenant that already holds an active license
// has it renewed instead, so redelivered jobs converge.
func (s *Service) Provision(ctx context.Context, p jobs.ProvisionLicense) (*types.License, error) {
	ctx, span := s.tracer.Start(ctx, "license.Service.Provision")
	defer span.End()

	if p.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidBillingData)
	}

	var result *types.License

	err := s.commit(ctx, func(ctx context.Context, c *change) error {
		l, err := s.provision(ctx, c, p)
		result = l
		return err
	})

	return result, err
}

func (s *Service) provision(ctx context.Context, c *change, p jobs.ProvisionLicense) (*types.License, error) {
	if _, err := s.storage.GetTenantByID(ctx, p.TenantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: tenant %s does not exist", ErrInvalidBillingData, p.TenantID)
		}
		return nil, fmt.Errorf("failed to get tenant %s: %w", p.TenantID, err)
	}

	plan := p.Plan
	features := PlanFeatures(plan)
	seats := PlanSeatLimit(plan)

	if p.SourceTenantID != "" {
		c.add(audit.CloneRequested{TenantID: p.TenantID, SourceTenantID: p.SourceTenantID, UserID: p.RequestedBy})

		src, err := s.storage.GetActiveLicenseByTenantID(ctx, p.SourceTenantID)
		if errors.Is(err, storage.ErrNotFound) {
			src, err = s.storage.GetLatestLicenseByTenantID(ctx, p.SourceTenantID)
		}

		switch {
		case err == nil:
			plan, features, seats = src.Plan, src.Features, src.SeatLimit
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%w: template tenant %s has no license", ErrInvalidBillingData, p.SourceTenantID)
		default:
			return nil, fmt.Errorf("failed to get template license: %w", err)
		}
	}

	if !ValidPlan(plan) {
		plan = types.PlanTrial
		features, seats = PlanFeatures(plan), PlanSeatLimit(plan)
	}

	existing, err := s.storage.GetActiveLicenseByTenantID(ctx, p.TenantID)
	switch {
	case err == nil:
		if err := s.renew(ctx, c, existing, plan, features, seats, p.PeriodStart, p.PeriodEnd); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to get active license: %w", err)
	}

	l, err := s.storage.CreateLicense(ctx, &types.License{
		TenantID:              p.TenantID,
		Plan:                  plan,
		Status:                types.LicenseActive,
		CurrentPeriodStart:    p.PeriodStart,
		CurrentPeriodEnd:      p.PeriodEnd,
		BillingCustomerID:     p.BillingCustomerID,
		BillingSubscriptionID: p.BillingSubscriptionID,
		Features:              features,
		SeatLimit:             seats,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrActiveConflict
		}
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	c.add(audit.LicenseCreated{LicenseID: l.ID, TenantID: l.TenantID, UserID: p.RequestedBy, Plan: l.Plan})
	if p.SourceTenantID != "" {
		c.add(audit.CloneCompleted{LicenseID: l.ID, TenantID: l.TenantID, SourceTenantID: p.SourceTenantID, UserID: p.RequestedBy})
	}

	return l, nil
}

// renew applies a new billing period and plan to l.
func (s *Service) renew(ctx context.Context, c *change, l *types.License, plan types.Plan, features map[string]bool, seats int, start, end *time.Time) error {
	if start != nil && end != nil {
		if err := s.storage.UpdateLicensePeriod(ctx, l.ID, *start, *end); err != nil {
			return fmt.Errorf("failed to renew license %s: %w", l.ID, err)
		}
		l.CurrentPeriodStart, l.CurrentPeriodEnd = start, end

		c.add(audit.LicenseRenewed{
			LicenseID:   l.ID,
			TenantID:    l.TenantID,
			PeriodStart: start.UTC().Format(time.RFC3339),
			PeriodEnd:   end.UTC().Format(time.RFC3339),
		})
	}

	if ValidPlan(plan) && plan != l.Plan {
		if err := s.storage.UpdateLicensePlan(ctx, l.ID, plan, features, seats); err != nil {
			return fmt.Errorf("failed to change plan of license %s: %w", l.ID, err)
		}

		c.add(audit.TierChanged{LicenseID: l.ID, TenantID: l.TenantID, From: l.Plan, To: plan})
		l.Plan, l.Features, l.SeatLimit = plan, features, seats
	}

	return nil
}

// ExpireLapsed expires the active licenses whose billing period ended more
// than the expiry grace ago, no renewal arrived for them.
func (s *Service) ExpireLapsed(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "license.Service.ExpireLapsed")
	defer span.End()

	cutoff := s.now().UTC().Add(-s.expiryGrace)

	var expired []*types.License
	err := s.commit(ctx, func(ctx context.Context, c *change) error {
		var err error
		if expired, err = s.storage.ExpireLicenses(ctx, cutoff); err != nil {
			return err
		}

		for _, l := range expired {
			c.add(audit.LicenseStatusChanged{
				LicenseID: l.ID,
				TenantID:  l.TenantID,
				UserID:    SystemActor,
				From:      types.LicenseActive,
				To:        types.LicenseExpired,
				Reason:    reasonLapsed,
			})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed licenses: %w", err)
	}

	for _, l := range expired {
		s.logger.Infof("license %s of tenant %s expired, its billing period ended at %s", l.ID, l.TenantID, l.CurrentPeriodEnd)
	}

	return len(expired), nil
}
