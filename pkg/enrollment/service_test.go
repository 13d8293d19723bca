// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(ctrl *gomock.Controller) (*Service, *MockStorageInterface, *MockAuditInterface, *MockNotifierInterface) {
	mockStorage := NewMockStorageInterface(ctrl)
	mockAudit := NewMockAuditInterface(ctrl)
	mockNotifier := NewMockNotifierInterface(ctrl)

	logger := logging.NewNoopLogger()
	s := NewService(mockStorage, mockAudit, mockNotifier, "https://learn.example.com/", tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	s.now = func() time.Time { return testNow }

	return s, mockStorage, mockAudit, mockNotifier
}

func TestService_Advance(t *testing.T) {
	testCases := []struct {
		name        string
		from        types.EnrollmentStatus
		to          types.EnrollmentStatus
		storageErr  error
		expectedErr error
	}{
		{name: "next step", from: types.EnrollmentApplied, to: types.EnrollmentApproved},
		{name: "payment confirmed", from: types.EnrollmentPaid, to: types.EnrollmentConfirmed},
		{name: "skipping a step", from: types.EnrollmentApplied, to: types.EnrollmentPaid, expectedErr: ErrInvalidTransition},
		{name: "going back", from: types.EnrollmentConfirmed, to: types.EnrollmentPaid, expectedErr: ErrInvalidTransition},
		{name: "past terminal", from: types.EnrollmentActive, to: types.EnrollmentActive, expectedErr: ErrInvalidTransition},
		{name: "lost race", from: types.EnrollmentApplied, to: types.EnrollmentApproved, storageErr: storage.ErrNotFound, expectedErr: ErrInvalidTransition},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit, _ := newTestService(ctrl)

			mockStorage.EXPECT().GetEnrollmentByID(gomock.Any(), "enr-1").Return(&types.Enrollment{ID: "enr-1", Status: test.from}, nil)

			if canTransition(test.from, test.to) {
				mockStorage.EXPECT().TransitionEnrollment(gomock.Any(), "enr-1", test.from, test.to, storage.EnrollmentStamps{}).Return(test.storageErr)
			}
			if test.expectedErr == nil {
				mockAudit.EXPECT().Record(gomock.Any(), audit.EnrollmentAdvanced{EnrollmentID: "enr-1", UserID: "staff-1", From: test.from, To: test.to})
			}

			err := s.Advance(context.Background(), "enr-1", test.to, "staff-1")

			if test.expectedErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}

func TestService_CompleteOrientation(t *testing.T) {
	testCases := []struct {
		name        string
		enrollment  *types.Enrollment
		getErr      error
		transition  bool
		expectedErr error
	}{
		{
			name:       "confirmed enrollment",
			enrollment: &types.Enrollment{ID: "enr-1", Status: types.EnrollmentConfirmed},
			transition: true,
		},
		{
			name:       "already completed",
			enrollment: &types.Enrollment{ID: "enr-1", Status: types.EnrollmentOrientationComplete, OrientationCompletedAt: stamp()},
		},
		{
			name:        "not yet confirmed",
			enrollment:  &types.Enrollment{ID: "enr-1", Status: types.EnrollmentPaid},
			expectedErr: ErrInvalidTransition,
		},
		{
			name:        "retired",
			enrollment:  &types.Enrollment{ID: "enr-1", Status: types.EnrollmentConfirmed, RetiredAt: stamp()},
			expectedErr: ErrEnrollmentNotFound,
		},
		{
			name:        "missing",
			getErr:      storage.ErrNotFound,
			expectedErr: ErrEnrollmentNotFound,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit, _ := newTestService(ctrl)

			mockStorage.EXPECT().GetEnrollmentByID(gomock.Any(), "enr-1").Return(test.enrollment, test.getErr)
			if test.transition {
				mockStorage.EXPECT().TransitionEnrollment(gomock.Any(), "enr-1", types.EnrollmentConfirmed, types.EnrollmentOrientationComplete, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, _, _ types.EnrollmentStatus, stamps storage.EnrollmentStamps) error {
						if stamps.OrientationCompletedAt == nil || !stamps.OrientationCompletedAt.Equal(testNow) {
							t.Fatalf("expected orientation stamp, got %+v", stamps)
						}
						if stamps.DocumentsSubmittedAt != nil {
							t.Fatalf("documents must not be stamped")
						}
						return nil
					})
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any())
			}

			err := s.CompleteOrientation(context.Background(), "enr-1", "user-1")

			if test.expectedErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if test.expectedErr != nil && !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error %v, got %v", test.expectedErr, err)
			}
		})
	}
}

func TestService_SubmitDocumentsRequiresOrientation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _, _ := newTestService(ctrl)
	mockStorage.EXPECT().GetEnrollmentByID(gomock.Any(), "enr-1").Return(&types.Enrollment{ID: "enr-1", Status: types.EnrollmentConfirmed}, nil)

	if err := s.SubmitDocuments(context.Background(), "enr-1", "user-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestService_Retire(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _, _ := newTestService(ctrl)
	mockStorage.EXPECT().RetireEnrollment(gomock.Any(), "enr-1", testNow).Return(nil)
	mockStorage.EXPECT().RetireEnrollment(gomock.Any(), "enr-2", testNow).Return(storage.ErrNotFound)

	if err := s.Retire(context.Background(), "enr-1", "staff-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.Retire(context.Background(), "enr-2", "staff-1"); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_RemindNextStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _, mockNotifier := newTestService(ctrl)
	mockStorage.EXPECT().GetEnrollmentByID(gomock.Any(), "enr-1").Return(&types.Enrollment{ID: "enr-1", Status: types.EnrollmentOrientationComplete, OrientationCompletedAt: stamp()}, nil)
	mockNotifier.EXPECT().EnqueueNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n notifications.Notification) (string, bool) {
			if n.TemplateKey != notifications.TemplateEnrollmentNextStep || n.ToAddress != "student@example.com" {
				t.Fatalf("unexpected notification %+v", n)
			}
			if url := n.TemplateData["URL"]; url != "https://learn.example.com"+DocumentsPath {
				t.Fatalf("unexpected url %v", url)
			}
			return "job-1", true
		})

	jobID, err := s.RemindNextStep(context.Background(), "enr-1", "student@example.com")
	if err != nil || jobID != "job-1" {
		t.Fatalf("expected job-1, got %q (%v)", jobID, err)
	}
}
