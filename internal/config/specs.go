// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	AuthenticationEnabled bool     `envconfig:"authentication_enabled" default:"false"`
	OIDCIssuer            string   `envconfig:"oidc_issuer"`
	OIDCJWKSURL           string   `envconfig:"oidc_jwks_url"`
	AllowedSubjects       []string `envconfig:"allowed_subjects"`
	RequiredScope         string   `envconfig:"required_scope"`
	SuperAdminPrincipals  []string `envconfig:"super_admin_principals"`

	BillingWebhookSecret   string        `envconfig:"billing_webhook_secret"`
	BillingWebhookInsecure bool          `envconfig:"billing_webhook_insecure" default:"false"`
	PastDueGracePeriod     time.Duration `envconfig:"past_due_grace_period" default:"168h"`
	LicenseExpiryGrace     time.Duration `envconfig:"license_expiry_grace" default:"72h"`

	WorkerEnabled    bool          `envconfig:"worker_enabled" default:"true"`
	SweepInterval    time.Duration `envconfig:"sweep_interval" default:"1m"`
	SweepBatchSize   uint64        `envconfig:"sweep_batch_size" default:"25"`
	JobMaxAttempts   int           `envconfig:"job_max_attempts" default:"3"`
	JobRetryBackoff  time.Duration `envconfig:"job_retry_backoff" default:"30s"`
	JobLease         time.Duration `envconfig:"job_lease" default:"5m"`
	NotificationFrom string        `envconfig:"notification_from" default:"no-reply@example.com"`
	SMTPHost         string        `envconfig:"smtp_host"`
	SMTPPort         int           `envconfig:"smtp_port" default:"587"`
	SMTPUsername     string        `envconfig:"smtp_username"`
	SMTPPassword     string        `envconfig:"smtp_password"`
	SMTPTimeout      time.Duration `envconfig:"smtp_timeout" default:"30s"`
	PublicBaseURL    string        `envconfig:"public_base_url" default:"http://localhost:8080"`
	TokenRateLimit   float64       `envconfig:"token_rate_limit" default:"5"`
	TokenRateBurst   int           `envconfig:"token_rate_burst" default:"10"`
}
