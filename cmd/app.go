// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/canonical/tenant-access-service/internal/config"
	"github.com/canonical/tenant-access-service/internal/db"
	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/monitoring/prometheus"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/enrollment"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/license"
	"github.com/canonical/tenant-access-service/pkg/notifications"
	"github.com/canonical/tenant-access-service/pkg/tokens"
)

const serviceName = "tenant-access-service"

// app holds the services shared by serve, worker and the one-shot admin commands.
type app struct {
	specs *config.EnvSpec

	dbClient    *db.DBClient
	storage     *storage.Storage
	auditor     *audit.Sink
	queue       *jobs.Queue
	tokens      *tokens.Service
	notifier    *notifications.Service
	licenses    *license.Service
	enrollments *enrollment.Service

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  *logging.Logger
}

func loadSpecs() (*config.EnvSpec, error) {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %s", err)
	}
	return specs, nil
}

// newApp connects to the database and builds the service graph. Tracing is
// only set up for long running commands.
func newApp(specs *config.EnvSpec, longRunning bool) (*app, error) {
	a := new(app)
	a.specs = specs

	a.logger = logging.NewLogger(specs.LogLevel)
	a.monitor = prometheus.NewMonitor(serviceName, a.logger)
	if longRunning {
		a.tracer = tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, a.logger))
	} else {
		a.tracer = tracing.NewNoopTracer()
	}

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             specs.DSN,
			MaxConns:        specs.DBMaxConns,
			MinConns:        specs.DBMinConns,
			MaxConnLifetime: specs.DBMaxConnLifetime,
			MaxConnIdleTime: specs.DBMaxConnIdleTime,
			TracingEnabled:  longRunning && specs.TracingEnabled,
		},
		a.tracer, a.monitor, a.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %v", err)
	}
	a.dbClient = dbClient

	a.storage = storage.NewStorage(dbClient, a.tracer, a.monitor, a.logger)
	a.auditor = audit.NewSink(a.storage, a.tracer, a.monitor, a.logger)
	a.queue = jobs.NewQueue(a.storage, specs.JobMaxAttempts, a.tracer, a.monitor, a.logger)
	a.tokens = tokens.NewService(a.storage, a.tracer, a.monitor, a.logger)
	a.notifier = notifications.NewService(a.queue, a.tokens, specs.PublicBaseURL, a.tracer, a.monitor, a.logger)
	a.licenses = license.NewService(
		a.storage,
		dbClient,
		a.auditor,
		a.queue,
		a.notifier,
		specs.PastDueGracePeriod,
		specs.LicenseExpiryGrace,
		a.tracer,
		a.monitor,
		a.logger,
	)
	a.enrollments = enrollment.NewService(a.storage, a.auditor, a.notifier, specs.PublicBaseURL, a.tracer, a.monitor, a.logger)

	return a, nil
}

// newWorker returns a sweeper with a handler for every job type and the
// periodic license expiry.
func (a *app) newWorker() (*jobs.Worker, error) {
	var deliverer notifications.Deliverer
	if a.specs.SMTPHost != "" {
		smtpDeliverer, err := notifications.NewSMTPDeliverer(
			notifications.SMTPConfig{
				Host:     a.specs.SMTPHost,
				Port:     a.specs.SMTPPort,
				Username: a.specs.SMTPUsername,
				Password: a.specs.SMTPPassword,
				From:     a.specs.NotificationFrom,
				Timeout:  a.specs.SMTPTimeout,
			},
			a.tracer,
			a.logger,
		)
		if err != nil {
			return nil, err
		}
		deliverer = smtpDeliverer
	} else {
		a.logger.Warn("SMTP_HOST is not set, notifications are logged instead of sent")
		deliverer = notifications.NewLogDeliverer(a.logger)
	}

	w := jobs.NewWorker(a.storage, a.specs.SweepBatchSize, a.specs.JobRetryBackoff, a.specs.JobLease, a.tracer, a.monitor, a.logger)
	w.Register(types.JobSendEmail, notifications.NewEmailHandler(deliverer, a.tracer, a.logger))
	w.Register(types.JobSuspendLicense, license.NewSuspendHandler(a.licenses))
	w.Register(types.JobProvisionLicense, license.NewProvisionHandler(a.licenses))
	w.RegisterTask("expire_licenses", func(ctx context.Context) error {
		_, err := a.licenses.ExpireLapsed(ctx)
		return err
	})

	return w, nil
}

func (a *app) close() {
	a.dbClient.Close()
	_ = a.logger.Sync()
}
