// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
)

var _ ServiceInterface = (*Service)(nil)

var ErrInvalidPayload = errors.New("invalid billing payload")

type Service struct {
	billing  BillingInterface
	secret   []byte
	insecure bool
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// VerifySignature checks signature against the HMAC-SHA256 of body. Without
// a secret every request is refused, unless the service was explicitly built
// as insecure for local development.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	if len(s.secret) == 0 {
		return s.insecure
	}

	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil || len(got) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)

	return hmac.Equal(got, mac.Sum(nil))
}

func (s *Service) HandleBillingEvent(ctx context.Context, p *BillingPayload) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleBillingEvent")
	defer span.End()

	if p == nil {
		return ErrInvalidPayload
	}

	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	s.logger.Debugf("handling billing event %s of type %s", p.ID, p.Type)

	return s.billing.ApplyBillingEvent(ctx, p.event())
}

func NewService(
	billing BillingInterface,
	secret string,
	insecure bool,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.billing = billing
	s.secret = []byte(secret)
	s.insecure = insecure
	s.validate = validator.New(validator.WithRequiredStructEnabled())

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	switch {
	case secret == "" && insecure:
		logger.Warn("billing webhook secret is not set and insecure mode is on, signatures will not be verified")
	case secret == "":
		logger.Error("billing webhook secret is not set, every billing webhook will be rejected")
	}

	return s
}
