// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

const (
	reasonPastDue  = "payment_past_due"
	reasonRefund   = "refund"
	reasonDispute  = "dispute_opened"
	reasonDisputed = "dispute_lost"
	reasonCanceled = "subscription_canceled"
	reasonLapsed   = "period_ended"
)

// ApplyBillingEvent maps a billing lifecycle event onto the license of the
// subscription. The status change and any job it schedules commit together.
func (s *Service) ApplyBillingEvent(ctx context.Context, ev BillingEvent) error {
	ctx, span := s.tracer.Start(ctx, "license.Service.ApplyBillingEvent")
	defer span.End()

	s.logger.Infof("applying billing event %s (%s) for subscription %s", ev.ID, ev.Type, ev.SubscriptionID)

	return s.commit(ctx, func(ctx context.Context, c *change) error {
		switch ev.Type {
		case EventSubscriptionActivated:
			return s.activate(ctx, c, ev)
		case EventSubscriptionPastDue, EventInvoicePaymentFailed:
			return s.startGracePeriod(ctx, c, ev)
		case EventChargeRefunded:
			return s.moveTo(ctx, c, ev, types.LicenseSuspended, reasonOr(ev.Reason, reasonRefund))
		case EventDisputeOpened:
			return s.moveTo(ctx, c, ev, types.LicenseSuspended, reasonOr(ev.Reason, reasonDispute))
		case EventDisputeClosed:
			return s.closeDispute(ctx, c, ev)
		case EventSubscriptionCanceled:
			return s.moveTo(ctx, c, ev, types.LicenseCancelled, reasonOr(ev.Reason, reasonCanceled))
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedEvent, ev.Type)
		}
	})
}

func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}

func (s *Service) findBillingLicense(ctx context.Context, ev BillingEvent) (*types.License, error) {
	var (
		l   *types.License
		err error
	)

	switch {
	case ev.SubscriptionID != "":
		l, err = s.storage.GetLicenseBySubscriptionID(ctx, ev.SubscriptionID)
	case ev.TenantID != "":
		l, err = s.storage.GetLatestLicenseByTenantID(ctx, ev.TenantID)
	default:
		return nil, fmt.Errorf("%w: subscription or tenant id is required", ErrInvalidBillingData)
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to find license for billing event: %w", err)
	}

	return l, nil
}

func (s *Service) activate(ctx context.Context, c *change, ev BillingEvent) error {
	l, err := s.findBillingLicense(ctx, ev)
	if errors.Is(err, ErrLicenseNotFound) {
		if ev.TenantID == "" {
			return fmt.Errorf("%w: tenant id is required for a new subscription", ErrInvalidBillingData)
		}

		_, err := s.provision(ctx, c, jobs.ProvisionLicense{
			TenantID:              ev.TenantID,
			Plan:                  ev.Plan,
			RequestedBy:           SystemActor,
			BillingCustomerID:     ev.CustomerID,
			BillingSubscriptionID: ev.SubscriptionID,
			PeriodStart:           ev.PeriodStart,
			PeriodEnd:             ev.PeriodEnd,
		})
		return err
	}
	if err != nil {
		return err
	}

	if _, err := s.transition(ctx, c, l, types.LicenseActive, SystemActor, "payment_received", ev.ContactEmail); err != nil {
		return err
	}

	return s.renew(ctx, c, l, ev.Plan, PlanFeatures(ev.Plan), PlanSeatLimit(ev.Plan), ev.PeriodStart, ev.PeriodEnd)
}

// startGracePeriod keeps the license active and schedules its suspension at
// the end of the grace window. The suspension is skipped if the license is
// renewed in the meantime. A repeated past due event while the suspension is
// still queued leaves the running grace window alone.
func (s *Service) startGracePeriod(ctx context.Context, c *change, ev BillingEvent) error {
	l, err := s.findBillingLicense(ctx, ev)
	if err != nil {
		return err
	}

	if l.Status != types.LicenseActive {
		s.logger.Infof("ignoring %s for license %s in status %s", ev.Type, l.ID, l.Status)
		return nil
	}

	graceEnds := s.now().UTC().Add(s.gracePeriod)

	if _, err := s.queue.Enqueue(
		ctx,
		jobs.SuspendLicense{LicenseID: l.ID, Reason: reasonPastDue, ExpectedPeriodEnd: l.CurrentPeriodEnd},
		jobs.EnqueueOptions{ScheduledFor: graceEnds, DedupeKey: suspensionKey(l)},
	); err != nil {
		if errors.Is(err, jobs.ErrAlreadyQueued) {
			s.logger.Infof("suspension of license %s is already scheduled, ignoring %s", l.ID, ev.Type)
			return nil
		}
		return fmt.Errorf("failed to schedule suspension of license %s: %w", l.ID, err)
	}

	c.add(audit.ValidationAttempt{
		LicenseID: l.ID,
		TenantID:  l.TenantID,
		UserID:    SystemActor,
		Status:    l.Status,
		Valid:     false,
		Reason:    reasonPastDue,
	})

	s.logger.Warnf("license %s of tenant %s is past due, suspension scheduled at %s", l.ID, l.TenantID, graceEnds)
	s.notify(ctx, l.TenantID, ev.ContactEmail, notifications.TemplateLicenseExpiring, map[string]any{
		"GraceEndsAt": graceEnds.Format(time.RFC1123),
	})

	return nil
}

// suspensionKey identifies the grace window of one billing period, a renewed
// license can be scheduled for suspension again in its next period.
func suspensionKey(l *types.License) string {
	key := "suspend_license:" + l.ID
	if l.CurrentPeriodEnd != nil {
		key += ":" + strconv.FormatInt(l.CurrentPeriodEnd.Unix(), 10)
	}
	return key
}

func (s *Service) moveTo(ctx context.Context, c *change, ev BillingEvent, to types.LicenseStatus, reason string) error {
	l, err := s.findBillingLicense(ctx, ev)
	if err != nil {
		return err
	}

	_, err = s.transition(ctx, c, l, to, SystemActor, reason, ev.ContactEmail)
	return err
}

func (s *Service) closeDispute(ctx context.Context, c *change, ev BillingEvent) error {
	switch ev.Outcome {
	case DisputeWon:
		l, err := s.findBillingLicense(ctx, ev)
		if err != nil {
			return err
		}

		// only a hold placed by the dispute is lifted
		if l.Status != types.LicenseSuspended {
			return nil
		}

		_, err = s.transition(ctx, c, l, types.LicenseActive, SystemActor, "dispute_won", ev.ContactEmail)
		return err
	case DisputeLost:
		return s.moveTo(ctx, c, ev, types.LicenseCancelled, reasonDisputed)
	default:
		return fmt.Errorf("%w: unknown dispute outcome %q", ErrInvalidBillingData, ev.Outcome)
	}
}
