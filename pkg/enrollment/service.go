// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/notifications"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("principal already enrolled in program")
)

type Service struct {
	storage  StorageInterface
	audit    AuditInterface
	notifier NotifierInterface
	baseURL  string
	now      func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Enroll(ctx context.Context, principalID, programID string) (*types.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.Enroll")
	defer span.End()

	e, err := s.storage.CreateEnrollment(ctx, &types.Enrollment{PrincipalID: principalID, ProgramID: programID})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	s.logger.Infof("principal %s enrolled in program %s", principalID, programID)
	return e, nil
}

// Current returns the live enrollment of principalID.
func (s *Service) Current(ctx context.Context, principalID string) (*types.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.Current")
	defer span.End()

	e, err := s.storage.GetEnrollmentByPrincipalID(ctx, principalID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrEnrollmentNotFound
	}
	return e, err
}

func (s *Service) get(ctx context.Context, id string) (*types.Enrollment, error) {
	e, err := s.storage.GetEnrollmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment %s: %w", id, err)
	}

	if e.RetiredAt != nil {
		return nil, ErrEnrollmentNotFound
	}

	return e, nil
}

// Advance moves enrollmentID to status to, which must be the next one in the
// progression.
func (s *Service) Advance(ctx context.Context, enrollmentID string, to types.EnrollmentStatus, actor string) error {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.Advance")
	defer span.End()

	e, err := s.get(ctx, enrollmentID)
	if err != nil {
		return err
	}

	return s.transition(ctx, e, to, actor)
}

// CompleteOrientation stamps the orientation and advances a confirmed
// enrollment, repeating it is a no-op.
func (s *Service) CompleteOrientation(ctx context.Context, enrollmentID, actor string) error {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.CompleteOrientation")
	defer span.End()

	e, err := s.get(ctx, enrollmentID)
	if err != nil {
		return err
	}

	if e.OrientationCompletedAt != nil {
		return nil
	}

	return s.transition(ctx, e, types.EnrollmentOrientationComplete, actor)
}

// SubmitDocuments stamps the documents and advances an enrollment that
// completed orientation, repeating it is a no-op.
func (s *Service) SubmitDocuments(ctx context.Context, enrollmentID, actor string) error {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.SubmitDocuments")
	defer span.End()

	e, err := s.get(ctx, enrollmentID)
	if err != nil {
		return err
	}

	if e.DocumentsSubmittedAt != nil {
		return nil
	}

	return s.transition(ctx, e, types.EnrollmentDocumentsComplete, actor)
}

func (s *Service) transition(ctx context.Context, e *types.Enrollment, to types.EnrollmentStatus, actor string) error {
	if !canTransition(e.Status, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Status, to)
	}

	now := s.now().UTC()

	var stamps storage.EnrollmentStamps
	switch to {
	case types.EnrollmentOrientationComplete:
		stamps.OrientationCompletedAt = &now
	case types.EnrollmentDocumentsComplete:
		stamps.DocumentsSubmittedAt = &now
	}

	if err := s.storage.TransitionEnrollment(ctx, e.ID, e.Status, to, stamps); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// moved or retired concurrently
			return fmt.Errorf("%w: %s is no longer %s", ErrInvalidTransition, e.ID, e.Status)
		}
		return err
	}

	s.audit.Record(ctx, audit.EnrollmentAdvanced{EnrollmentID: e.ID, UserID: actor, From: e.Status, To: to})
	s.logger.Infof("enrollment %s moved from %s to %s", e.ID, e.Status, to)

	return nil
}

// Retire soft deletes enrollmentID, the row is kept for compliance history.
func (s *Service) Retire(ctx context.Context, enrollmentID, actor string) error {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.Retire")
	defer span.End()

	if err := s.storage.RetireEnrollment(ctx, enrollmentID, s.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Security().AdminAction(actor, "enrollment.retire", enrollmentID)
	return nil
}

// RemindNextStep emails address the next onboarding step of enrollmentID.
func (s *Service) RemindNextStep(ctx context.Context, enrollmentID, address string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.Service.RemindNextStep")
	defer span.End()

	e, err := s.get(ctx, enrollmentID)
	if err != nil {
		return "", err
	}

	action := NextRequiredAction(e)

	jobID, ok := s.notifier.EnqueueNotification(ctx, notifications.Notification{
		ToAddress:   address,
		TemplateKey: notifications.TemplateEnrollmentNextStep,
		TemplateData: map[string]any{
			"Label":       action.Label,
			"Description": action.Description,
			"URL":         strings.TrimSuffix(s.baseURL, "/") + action.Target,
		},
	})
	if !ok {
		return "", fmt.Errorf("failed to enqueue reminder for enrollment %s", enrollmentID)
	}

	return jobID, nil
}

func NewService(storage StorageInterface, auditor AuditInterface, notifier NotifierInterface, baseURL string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.audit = auditor
	s.notifier = notifier
	s.baseURL = baseURL
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
