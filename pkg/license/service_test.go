// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

//go:generate mockgen -build_flags=--mod=mod -package license -destination ./mock_license.go -source=./interfaces.go

type serviceMocks struct {
	storage  *MockStorageInterface
	tx       *MockTransactorInterface
	audit    *MockAuditInterface
	queue    *MockEnqueuerInterface
	notifier *MockNotifierInterface
}

func newTestService(ctrl *gomock.Controller) (*Service, serviceMocks) {
	m := serviceMocks{
		storage:  NewMockStorageInterface(ctrl),
		tx:       NewMockTransactorInterface(ctrl),
		audit:    NewMockAuditInterface(ctrl),
		queue:    NewMockEnqueuerInterface(ctrl),
		notifier: NewMockNotifierInterface(ctrl),
	}

	m.tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	logger := logging.NewNoopLogger()
	s := NewService(m.storage, m.tx, m.audit, m.queue, m.notifier, 72*time.Hour, 24*time.Hour, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return s, m
}

func activeLicense() *types.License {
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	return &types.License{
		ID:                    "lic-1",
		TenantID:              "tenant-1",
		Plan:                  types.PlanBasic,
		Status:                types.LicenseActive,
		CurrentPeriodEnd:      &end,
		BillingSubscriptionID: "sub-1",
		Features:              map[string]bool{},
		SeatLimit:             25,
	}
}

func TestService_CheckAccessFailsClosed(t *testing.T) {
	statuses := []struct {
		status  types.LicenseStatus
		allowed bool
		code    int
		reason  Reason
	}{
		{types.LicenseActive, true, http.StatusOK, ReasonOK},
		{types.LicenseSuspended, false, http.StatusPaymentRequired, ReasonSuspended},
		{types.LicenseExpired, false, http.StatusPaymentRequired, ReasonExpired},
		{types.LicenseCancelled, false, http.StatusForbidden, ReasonCancelled},
		{types.LicenseStatus("trialing"), false, http.StatusForbidden, ReasonUnknownStatus},
		{types.LicenseStatus(""), false, http.StatusForbidden, ReasonUnknownStatus},
	}
	roles := []types.Role{types.RoleStudent, types.RoleInstructor, types.RoleAdmin, types.RolePartner, types.RoleEmployer}

	for _, st := range statuses {
		for _, role := range roles {
			t.Run(string(st.status)+"/"+string(role), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				s, m := newTestService(ctrl)
				if !st.allowed {
					m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
				}

				d := s.CheckAccess(context.Background(), &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: role, LicenseStatus: st.status})

				if d.Allowed != st.allowed {
					t.Fatalf("expected allowed %v, got %v", st.allowed, d.Allowed)
				}
				if d.Status != st.code {
					t.Fatalf("expected status %d, got %d", st.code, d.Status)
				}
				if d.Reason != st.reason {
					t.Fatalf("expected reason %s, got %s", st.reason, d.Reason)
				}
				if !d.Allowed && d.Message == "" {
					t.Fatalf("expected a message on denial")
				}
			})
		}
	}
}

func TestService_CheckAccessWithoutContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestService(ctrl)
	m.audit.EXPECT().Record(gomock.Any(), gomock.Any())

	d := s.CheckAccess(context.Background(), nil)
	if d.Allowed || d.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 denial, got %+v", d)
	}
}

func TestService_CheckTenantAccess(t *testing.T) {
	testCases := []struct {
		name     string
		tc       *TenantContext
		tenantID string
		allowed  bool
	}{
		{name: "same tenant", tc: &TenantContext{TenantID: "t1", Role: types.RoleAdmin}, tenantID: "t1", allowed: true},
		{name: "other tenant", tc: &TenantContext{TenantID: "t1", Role: types.RoleAdmin}, tenantID: "t2", allowed: false},
		{name: "empty target", tc: &TenantContext{TenantID: "t1", Role: types.RoleAdmin}, tenantID: "", allowed: false},
		{name: "super admin crosses tenants", tc: &TenantContext{TenantID: "t1", Role: types.RoleSuperAdmin}, tenantID: "t2", allowed: true},
		{name: "no context", tc: nil, tenantID: "t1", allowed: false},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			if !test.allowed {
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			}

			d := s.CheckTenantAccess(context.Background(), test.tc, test.tenantID)
			if d.Allowed != test.allowed {
				t.Fatalf("expected allowed %v, got %+v", test.allowed, d)
			}
			if !test.allowed && test.tc != nil && d.Status != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", d.Status)
			}
		})
	}
}

func TestService_CheckFeature(t *testing.T) {
	overridden := activeLicense()
	overridden.Features = map[string]bool{FeatureReports: false, FeatureSSO: true}

	enterprise := activeLicense()
	enterprise.Plan = types.PlanEnterprise

	testCases := []struct {
		name    string
		license *types.License
		feature string
		allowed bool
	}{
		{name: "no license falls back to trial", license: nil, feature: FeatureReports, allowed: true},
		{name: "no license lacks bulk import", license: nil, feature: FeatureBulkImport, allowed: false},
		{name: "plan default", license: activeLicense(), feature: FeatureBulkImport, allowed: true},
		{name: "plan lacks feature", license: activeLicense(), feature: FeaturePartnerPortal, allowed: false},
		{name: "license disables plan feature", license: overridden, feature: FeatureReports, allowed: false},
		{name: "license enables extra feature", license: overridden, feature: FeatureSSO, allowed: true},
		{name: "enterprise has everything", license: enterprise, feature: FeatureSSO, allowed: true},
		{name: "unknown feature", license: enterprise, feature: "time_travel", allowed: false},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
				func(_ context.Context, ev audit.Recordable) {
					fa, ok := ev.(audit.FeatureAccess)
					if !ok {
						t.Fatalf("expected a feature access event, got %T", ev)
					}
					if fa.Granted != test.allowed || fa.Feature != test.feature {
						t.Fatalf("unexpected audit event %+v", fa)
					}
				})

			tc := &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: types.RoleAdmin, LicenseStatus: types.LicenseActive, License: test.license}

			d := s.CheckFeature(context.Background(), tc, test.feature)
			if d.Allowed != test.allowed {
				t.Fatalf("expected allowed %v, got %+v", test.allowed, d)
			}
		})
	}
}

func TestService_CheckLimit(t *testing.T) {
	testCases := []struct {
		name    string
		current int
		maximum int
		allowed bool
	}{
		{name: "below limit", current: 4, maximum: 5, allowed: true},
		{name: "at limit", current: 5, maximum: 5, allowed: false},
		{name: "over limit", current: 9, maximum: 5, allowed: false},
		{name: "unlimited", current: 1000, maximum: 0, allowed: true},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			if !test.allowed {
				m.audit.EXPECT().Record(gomock.Any(), audit.LimitExceeded{
					TenantID: "tenant-1",
					UserID:   "user-1",
					Limit:    LimitSeats,
					Current:  test.current,
					Max:      test.maximum,
				})
			}

			d := s.CheckLimit(context.Background(), &TenantContext{TenantID: "tenant-1", UserID: "user-1"}, LimitSeats, test.current, test.maximum)
			if d.Allowed != test.allowed {
				t.Fatalf("expected allowed %v, got %+v", test.allowed, d)
			}
		})
	}
}

func TestService_ApplyBillingEvent(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	suspended := func() *types.License {
		l := activeLicense()
		l.Status = types.LicenseSuspended
		return l
	}

	testCases := []struct {
		name        string
		event       BillingEvent
		setupMocks  func(serviceMocks)
		expectedErr error
	}{
		{
			name:  "refund suspends",
			event: BillingEvent{ID: "evt-1", Type: EventChargeRefunded, SubscriptionID: "sub-1"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseSuspended, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, _ types.LicenseStatus, reason *string) error {
						if reason == nil || *reason != "refund" {
							t.Fatalf("expected refund reason, got %v", reason)
						}
						return nil
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:  "dispute opened suspends and notifies",
			event: BillingEvent{ID: "evt-2", Type: EventDisputeOpened, SubscriptionID: "sub-1", ContactEmail: "billing@example.com"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseSuspended, gomock.Any()).Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Name: "Acme"}, nil)
				m.notifier.EXPECT().EnqueueNotification(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, n notifications.Notification) (string, bool) {
						if n.TemplateKey != notifications.TemplateLicenseSuspended || n.ToAddress != "billing@example.com" {
							t.Fatalf("unexpected notification %+v", n)
						}
						return "job-1", true
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:  "activation reactivates and renews",
			event: BillingEvent{ID: "evt-3", Type: EventSubscriptionActivated, SubscriptionID: "sub-1", Plan: types.PlanBasic, PeriodStart: &start, PeriodEnd: &end},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(suspended(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseActive, nil).Return(nil)
				m.storage.EXPECT().UpdateLicensePeriod(gomock.Any(), "lic-1", start, end).Return(nil)
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(2)
			},
		},
		{
			name:  "activation with a new plan changes tier",
			event: BillingEvent{ID: "evt-4", Type: EventSubscriptionActivated, SubscriptionID: "sub-1", Plan: types.PlanProfessional},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
				m.storage.EXPECT().UpdateLicensePlan(gomock.Any(), "lic-1", types.PlanProfessional, PlanFeatures(types.PlanProfessional), PlanSeatLimit(types.PlanProfessional)).Return(nil)
				m.audit.EXPECT().Record(gomock.Any(), audit.TierChanged{LicenseID: "lic-1", TenantID: "tenant-1", From: types.PlanBasic, To: types.PlanProfessional})
			},
		},
		{
			name:  "activation creates the first license",
			event: BillingEvent{ID: "evt-5", Type: EventSubscriptionActivated, SubscriptionID: "sub-9", TenantID: "tenant-9", Plan: types.PlanBasic},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-9").Return(nil, storage.ErrNotFound)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-9").Return(&types.Tenant{ID: "tenant-9"}, nil)
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-9").Return(nil, storage.ErrNotFound)
				m.storage.EXPECT().CreateLicense(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, l *types.License) (*types.License, error) {
						if l.Status != types.LicenseActive || l.BillingSubscriptionID != "sub-9" || l.SeatLimit != 25 {
							t.Fatalf("unexpected license %+v", l)
						}
						created := *l
						created.ID = "lic-9"
						return &created, nil
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:        "activation of an unknown subscription without tenant",
			event:       BillingEvent{ID: "evt-6", Type: EventSubscriptionActivated, SubscriptionID: "sub-9"},
			expectedErr: ErrInvalidBillingData,
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-9").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name:        "reactivation conflicts with another active license",
			event:       BillingEvent{ID: "evt-7", Type: EventSubscriptionActivated, SubscriptionID: "sub-1"},
			expectedErr: ErrActiveConflict,
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(suspended(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseActive, nil).Return(storage.ErrDuplicateKey)
			},
		},
		{
			name:  "past due schedules suspension",
			event: BillingEvent{ID: "evt-8", Type: EventSubscriptionPastDue, SubscriptionID: "sub-1"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
				m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p jobs.Payload, opts jobs.EnqueueOptions) (*types.Job, error) {
						sp, ok := p.(jobs.SuspendLicense)
						if !ok || sp.LicenseID != "lic-1" || sp.ExpectedPeriodEnd == nil {
							t.Fatalf("unexpected payload %+v", p)
						}
						if want := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC); !opts.ScheduledFor.Equal(want) {
							t.Fatalf("expected suspension at %s, got %s", want, opts.ScheduledFor)
						}
						if opts.DedupeKey == "" {
							t.Fatal("expected the suspension to carry a dedupe key")
						}
						return &types.Job{ID: "job-1"}, nil
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:  "repeated past due keeps the running grace window",
			event: BillingEvent{ID: "evt-8b", Type: EventInvoicePaymentFailed, SubscriptionID: "sub-1", ContactEmail: "billing@example.com"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
				m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: suspend_license:lic-1", jobs.ErrAlreadyQueued))
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
				m.notifier.EXPECT().EnqueueNotification(gomock.Any(), gomock.Any()).Times(0)
			},
		},
		{
			name:  "past due on a suspended license is ignored",
			event: BillingEvent{ID: "evt-9", Type: EventInvoicePaymentFailed, SubscriptionID: "sub-1"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(suspended(), nil)
			},
		},
		{
			name:  "dispute won lifts the hold",
			event: BillingEvent{ID: "evt-10", Type: EventDisputeClosed, SubscriptionID: "sub-1", Outcome: DisputeWon},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(suspended(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseActive, nil).Return(nil)
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:  "dispute won on an active license is a no-op",
			event: BillingEvent{ID: "evt-11", Type: EventDisputeClosed, SubscriptionID: "sub-1", Outcome: DisputeWon},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(activeLicense(), nil)
			},
		},
		{
			name:  "dispute lost cancels",
			event: BillingEvent{ID: "evt-12", Type: EventDisputeClosed, SubscriptionID: "sub-1", Outcome: DisputeLost},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").Return(suspended(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseCancelled, gomock.Any()).Return(nil)
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:        "dispute with unknown outcome",
			event:       BillingEvent{ID: "evt-13", Type: EventDisputeClosed, SubscriptionID: "sub-1", Outcome: "pending"},
			expectedErr: ErrInvalidBillingData,
			setupMocks:  func(serviceMocks) {},
		},
		{
			name:  "cancellation",
			event: BillingEvent{ID: "evt-14", Type: EventSubscriptionCanceled, TenantID: "tenant-1"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLatestLicenseByTenantID(gomock.Any(), "tenant-1").Return(activeLicense(), nil)
				m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseCancelled, gomock.Any()).Return(nil)
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:        "unknown license",
			event:       BillingEvent{ID: "evt-15", Type: EventChargeRefunded, SubscriptionID: "sub-404"},
			expectedErr: ErrLicenseNotFound,
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-404").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name:        "unsupported event",
			event:       BillingEvent{ID: "evt-16", Type: "customer.updated", SubscriptionID: "sub-1"},
			expectedErr: ErrUnsupportedEvent,
			setupMocks:  func(serviceMocks) {},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			test.setupMocks(m)

			err := s.ApplyBillingEvent(context.Background(), test.event)

			if test.expectedErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}

func TestService_RefundThenReactivation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, m := newTestService(ctrl)

	stored := activeLicense()
	m.storage.EXPECT().GetLicenseBySubscriptionID(gomock.Any(), "sub-1").DoAndReturn(
		func(context.Context, string) (*types.License, error) {
			l := *stored
			return &l, nil
		}).Times(2)
	m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, status types.LicenseStatus, _ *string) error {
			stored.Status = status
			return nil
		}).Times(2)

	var kinds []types.AuditKind
	m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, ev audit.Recordable) {
			kinds = append(kinds, ev.AuditEvent().Kind)
		}).Times(2)

	if err := s.ApplyBillingEvent(context.Background(), BillingEvent{ID: "evt-1", Type: EventChargeRefunded, SubscriptionID: "sub-1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stored.Status != types.LicenseSuspended {
		t.Fatalf("expected suspended license after refund, got %s", stored.Status)
	}

	if err := s.ApplyBillingEvent(context.Background(), BillingEvent{ID: "evt-2", Type: EventSubscriptionActivated, SubscriptionID: "sub-1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stored.Status != types.LicenseActive {
		t.Fatalf("expected active license, got %s", stored.Status)
	}

	if len(kinds) != 2 || kinds[0] != types.AuditLicenseSuspended || kinds[1] != types.AuditLicenseReactivated {
		t.Fatalf("unexpected audit trail %v", kinds)
	}
}

func TestService_AuditRecordedOnlyAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := serviceMocks{
		storage:  NewMockStorageInterface(ctrl),
		tx:       NewMockTransactorInterface(ctrl),
		audit:    NewMockAuditInterface(ctrl),
		queue:    NewMockEnqueuerInterface(ctrl),
		notifier: NewMockNotifierInterface(ctrl),
	}

	commitErr := errors.New("commit failed")
	m.tx.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			if err := fn(ctx); err != nil {
				return err
			}
			return commitErr
		})
	m.storage.EXPECT().GetLicenseByID(gomock.Any(), "lic-1").Return(activeLicense(), nil)
	m.storage.EXPECT().UpdateLicenseStatus(gomock.Any(), "lic-1", types.LicenseSuspended, gomock.Any()).Return(nil)
	m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)

	logger := logging.NewNoopLogger()
	s := NewService(m.storage, m.tx, m.audit, m.queue, m.notifier, time.Hour, 24*time.Hour, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	if err := s.Suspend(context.Background(), "lic-1", "admin-1", "fraud review"); !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestService_Provision(t *testing.T) {
	testCases := []struct {
		name        string
		payload     jobs.ProvisionLicense
		setupMocks  func(serviceMocks)
		expectedErr error
	}{
		{
			name:    "clone from template tenant",
			payload: jobs.ProvisionLicense{TenantID: "tenant-2", SourceTenantID: "tenant-1", RequestedBy: "admin-1"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-2").Return(&types.Tenant{ID: "tenant-2"}, nil)
				src := activeLicense()
				src.Features = map[string]bool{FeatureSSO: true}
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-1").Return(src, nil)
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-2").Return(nil, storage.ErrNotFound)
				m.storage.EXPECT().CreateLicense(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, l *types.License) (*types.License, error) {
						if l.Plan != types.PlanBasic || !l.Features[FeatureSSO] {
							t.Fatalf("expected cloned plan, got %+v", l)
						}
						created := *l
						created.ID = "lic-2"
						return &created, nil
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(3)
			},
		},
		{
			name:    "invalid plan falls back to trial",
			payload: jobs.ProvisionLicense{TenantID: "tenant-2", Plan: "platinum"},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-2").Return(&types.Tenant{ID: "tenant-2"}, nil)
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-2").Return(nil, storage.ErrNotFound)
				m.storage.EXPECT().CreateLicense(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, l *types.License) (*types.License, error) {
						if l.Plan != types.PlanTrial || l.SeatLimit != 5 {
							t.Fatalf("expected trial license, got %+v", l)
						}
						return l, nil
					})
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:    "existing active license is kept",
			payload: jobs.ProvisionLicense{TenantID: "tenant-1", Plan: types.PlanBasic},
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1"}, nil)
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-1").Return(activeLicense(), nil)
			},
		},
		{
			name:        "missing tenant",
			payload:     jobs.ProvisionLicense{TenantID: "tenant-404"},
			expectedErr: ErrInvalidBillingData,
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-404").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name:        "template without license",
			payload:     jobs.ProvisionLicense{TenantID: "tenant-2", SourceTenantID: "tenant-3"},
			expectedErr: ErrInvalidBillingData,
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-2").Return(&types.Tenant{ID: "tenant-2"}, nil)
				m.storage.EXPECT().GetActiveLicenseByTenantID(gomock.Any(), "tenant-3").Return(nil, storage.ErrNotFound)
				m.storage.EXPECT().GetLatestLicenseByTenantID(gomock.Any(), "tenant-3").Return(nil, storage.ErrNotFound)
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			test.setupMocks(m)

			_, err := s.Provision(context.Background(), test.payload)

			if test.expectedErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}

func TestService_ExpireLapsed(t *testing.T) {
	cutoff := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		setupMocks  func(serviceMocks)
		expected    int
		expectedErr bool
	}{
		{
			name: "expires every lapsed license",
			setupMocks: func(m serviceMocks) {
				ended := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
				lapsed := activeLicense()
				lapsed.Status = types.LicenseExpired
				lapsed.CurrentPeriodEnd = &ended

				m.storage.EXPECT().ExpireLicenses(gomock.Any(), cutoff).Return([]*types.License{lapsed}, nil)
				m.audit.EXPECT().Record(gomock.Any(), audit.LicenseStatusChanged{
					LicenseID: "lic-1",
					TenantID:  "tenant-1",
					UserID:    SystemActor,
					From:      types.LicenseActive,
					To:        types.LicenseExpired,
					Reason:    "period_ended",
				})
			},
			expected: 1,
		},
		{
			name: "nothing lapsed",
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().ExpireLicenses(gomock.Any(), cutoff).Return(nil, nil)
			},
		},
		{
			name: "storage failure records nothing",
			setupMocks: func(m serviceMocks) {
				m.storage.EXPECT().ExpireLicenses(gomock.Any(), cutoff).Return(nil, errors.New("connection reset"))
				m.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(0)
			},
			expectedErr: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			test.setupMocks(m)

			n, err := s.ExpireLapsed(context.Background())

			if (err != nil) != test.expectedErr {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
			if n != test.expected {
				t.Fatalf("expected %d expired licenses, got %d", test.expected, n)
			}
		})
	}
}
