// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/tokens"
)

var _ ServiceInterface = (*Service)(nil)

type Notification struct {
	ToAddress    string `validate:"required,email,max=254"`
	TemplateKey  string `validate:"required"`
	TemplateData map[string]any
	// ScheduledFor defaults to now.
	ScheduledFor time.Time
}

// TokenLink describes an emailed capability link.
type TokenLink struct {
	ToAddress   string `validate:"required,email,max=254"`
	Purpose     types.TokenPurpose
	TargetID    string
	BasePath    string `validate:"required"`
	Subject     string
	Constraints tokens.Constraints
}

type Service struct {
	queue    jobs.EnqueuerInterface
	tokens   tokens.ServiceInterface
	validate *validator.Validate
	baseURL  string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// EnqueueNotification records a send_email job. It reports false instead of
// an error so callers on the request path can carry on.
func (s *Service) EnqueueNotification(ctx context.Context, n Notification) (string, bool) {
	ctx, span := s.tracer.Start(ctx, "notifications.Service.EnqueueNotification")
	defer span.End()

	if err := s.validate.Struct(n); err != nil {
		s.logger.Warnf("rejected notification %q: %v", n.TemplateKey, err)
		return "", false
	}

	if !KnownTemplate(n.TemplateKey) {
		s.logger.Warnf("rejected notification with unknown template %q", n.TemplateKey)
		return "", false
	}

	job, err := s.queue.Enqueue(
		ctx,
		jobs.SendEmail{To: n.ToAddress, TemplateKey: n.TemplateKey, TemplateData: n.TemplateData},
		jobs.EnqueueOptions{ScheduledFor: n.ScheduledFor},
	)
	if err != nil {
		s.logger.Errorf("failed to enqueue %s notification: %v", n.TemplateKey, err)
		return "", false
	}

	return job.ID, true
}

// SendTokenLink issues a capability token and emails the link carrying it.
func (s *Service) SendTokenLink(ctx context.Context, l TokenLink) (string, bool) {
	ctx, span := s.tracer.Start(ctx, "notifications.Service.SendTokenLink")
	defer span.End()

	if err := s.validate.Struct(l); err != nil {
		s.logger.Warnf("rejected token link: %v", err)
		return "", false
	}

	t, err := s.tokens.Issue(ctx, l.Purpose, l.TargetID, l.Constraints)
	if err != nil {
		s.logger.Errorf("failed to issue %s token: %v", l.Purpose, err)
		return "", false
	}

	base := l.BasePath
	if strings.HasPrefix(base, "/") && s.baseURL != "" {
		base = strings.TrimSuffix(s.baseURL, "/") + base
	}

	link, err := tokens.BuildURL(base, t.Token)
	if err != nil {
		s.logger.Errorf("failed to build %s token link: %v", l.Purpose, err)
		return "", false
	}

	return s.EnqueueNotification(ctx, Notification{
		ToAddress:   l.ToAddress,
		TemplateKey: TemplateTokenLink,
		TemplateData: map[string]any{
			"URL":       link,
			"Subject":   l.Subject,
			"ExpiresAt": t.ExpiresAt.Format(time.RFC1123),
			"MaxUses":   t.MaxUses,
		},
	})
}

func NewService(
	queue jobs.EnqueuerInterface,
	tokens tokens.ServiceInterface,
	baseURL string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		queue:    queue,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		baseURL:  baseURL,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
