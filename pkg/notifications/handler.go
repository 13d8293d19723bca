// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/jobs"
)

var _ jobs.Handler = (*EmailHandler)(nil)

// EmailHandler processes send_email jobs. Rendering problems are permanent,
// transport problems are retried.
type EmailHandler struct {
	deliverer Deliverer

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (h *EmailHandler) Handle(ctx context.Context, job *types.Job) error {
	ctx, span := h.tracer.Start(ctx, "notifications.EmailHandler.Handle")
	defer span.End()

	p, err := jobs.Decode[jobs.SendEmail](job)
	if err != nil {
		return err
	}

	subject, body, err := Render(p.TemplateKey, p.TemplateData)
	if err != nil {
		return jobs.Permanent(err)
	}

	return h.deliverer.Deliver(ctx, p.To, subject, body)
}

func NewEmailHandler(deliverer Deliverer, tracer tracing.TracingInterface, logger logging.LoggerInterface) *EmailHandler {
	return &EmailHandler{
		deliverer: deliverer,
		tracer:    tracer,
		logger:    logger,
	}
}
