// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/tracing"
)

// DefaultSMTPTimeout bounds a delivery when SMTPConfig.Timeout is not set.
const DefaultSMTPTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPDeliverer sends plain text mail through a relay. A delivery is bounded
// by the configured timeout so a stalled relay can not hold a job past its
// claim lease.
type SMTPDeliverer struct {
	from    string
	timeout time.Duration
	send    func(ctx context.Context, msg *mail.Msg) error

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (d *SMTPDeliverer) Deliver(ctx context.Context, address, subject, body string) error {
	ctx, span := d.tracer.Start(ctx, "notifications.SMTPDeliverer.Deliver")
	defer span.End()

	if strings.ContainsAny(address, "\r\n") {
		return fmt.Errorf("invalid recipient address")
	}

	msg, err := buildMessage(d.from, address, subject, body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", address, err)
	}

	return nil
}

func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

func NewSMTPDeliverer(cfg SMTPConfig, tracer tracing.TracingInterface, logger logging.LoggerInterface) (*SMTPDeliverer, error) {
	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultSMTPTimeout
	}
	opts = append(opts, mail.WithTimeout(timeout))

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mail client: %w", err)
	}

	d := new(SMTPDeliverer)
	d.from = cfg.From
	d.timeout = timeout
	d.send = func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	d.tracer = tracer
	d.logger = logger

	return d, nil
}

// LogDeliverer only logs, used when no relay is configured.
type LogDeliverer struct {
	logger logging.LoggerInterface
}

func (d *LogDeliverer) Deliver(_ context.Context, address, subject, _ string) error {
	d.logger.Infof("notification to %s not sent, no mail relay configured: %q", address, subject)
	return nil
}

func NewLogDeliverer(logger logging.LoggerInterface) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}
