// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-access-service/internal/db"
	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/authentication"
	"github.com/canonical/tenant-access-service/pkg/enrollment"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/license"
	"github.com/canonical/tenant-access-service/pkg/metrics"
	"github.com/canonical/tenant-access-service/pkg/status"
	"github.com/canonical/tenant-access-service/pkg/tokens"
	"github.com/canonical/tenant-access-service/pkg/webhooks"
)

// APIs groups the handlers mounted by NewRouter.
type APIs struct {
	License    *license.API
	Enrollment *enrollment.API
	Tokens     *tokens.API
	Webhooks   *webhooks.API
	Audit      *audit.API
	Jobs       *jobs.API
}

// NewRouter lays out the HTTP surface:
//   - probes, metrics, capability token validation and billing webhooks are public
//   - every other route needs an authenticated principal with a usable license
//   - tenant routes are confined to the caller's own tenant
//   - admin routes need the super_admin role
func NewRouter(
	apis APIs,
	authMiddleware *authentication.Middleware,
	licenseMiddleware *license.Middleware,
	gate *enrollment.Gate,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
		audit.Middleware(),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	apis.Tokens.RegisterEndpoints(router)
	apis.Webhooks.RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate(), licenseMiddleware.RequireLicense())

		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware())
			apis.Enrollment.RegisterEndpoints(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(licenseMiddleware.RequireTenantAccess("tenant_id"))
			apis.License.RegisterEndpoints(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(licenseMiddleware.RequireRole(types.RoleSuperAdmin))

			apis.Audit.RegisterEndpoints(r)
			apis.Jobs.RegisterEndpoints(r)
			apis.License.RegisterAdminEndpoints(r)

			r.Group(func(r chi.Router) {
				r.Use(db.TransactionMiddleware(dbClient, logger))
				apis.Enrollment.RegisterAdminEndpoints(r)
			})
		})
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
