// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

// Middleware composes the request path gates. RequireLicense must run first,
// the other gates read the TenantContext it places on the request.
type Middleware struct {
	resolver ResolverInterface
	service  ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RequireLicense resolves the tenant context of the authenticated principal
// and denies anything but an active license.
func (m *Middleware) RequireLicense() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "license.Middleware.RequireLicense")
			defer span.End()

			tc, d := m.authorize(ctx)
			if !d.Allowed {
				m.denied(w, d)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenantContext(ctx, tc)))
		})
	}
}

func (m *Middleware) authorize(ctx context.Context) (*TenantContext, Decision) {
	principal, ok := authentication.GetUserID(ctx)
	if !ok || principal == "" {
		return nil, m.service.CheckAccess(ctx, nil)
	}

	tc, ok := m.resolver.Resolve(ctx, principal)
	if !ok {
		return nil, m.service.CheckAccess(ctx, nil)
	}

	// platform administrators are never locked out by a tenant license
	if tc.IsSuperAdmin() {
		return tc, allow()
	}

	return tc, m.service.CheckAccess(ctx, tc)
}

// RequireTenantAccess denies requests whose URL parameter names another tenant.
func (m *Middleware) RequireTenantAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "license.Middleware.RequireTenantAccess")
			defer span.End()

			tc, _ := TenantContextFrom(ctx)
			if d := m.service.CheckTenantAccess(ctx, tc, chi.URLParam(r, param)); !d.Allowed {
				m.denied(w, d)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireFeature denies requests from tenants whose plan lacks feature.
func (m *Middleware) RequireFeature(feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "license.Middleware.RequireFeature")
			defer span.End()

			tc, _ := TenantContextFrom(ctx)
			if d := m.service.CheckFeature(ctx, tc, feature); !d.Allowed {
				m.denied(w, d)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole denies requests whose principal holds none of roles.
func (m *Middleware) RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := TenantContextFrom(r.Context())

			switch {
			case !ok:
				m.denied(w, deny(ReasonUnauthenticated))
				return
			case !slices.Contains(roles, tc.Role):
				m.logger.Security().AuthzFailure(tc.UserID, r.URL.Path)
				m.monitor.IncAccessDecision(map[string]string{"gate": "role", "outcome": string(ReasonRole)})
				m.denied(w, deny(ReasonRole))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GRPCInterceptor applies RequireLicense to unary calls, methods with one of
// the exempt prefixes pass through.
func (m *Middleware) GRPCInterceptor(exempt ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		for _, prefix := range exempt {
			if strings.HasPrefix(info.FullMethod, prefix) {
				return handler(ctx, req)
			}
		}

		ctx, span := m.tracer.Start(ctx, "license.Middleware.GRPCInterceptor")
		defer span.End()

		tc, d := m.authorize(ctx)
		if !d.Allowed {
			return nil, status.Error(d.GRPCCode(), d.Message)
		}

		return handler(WithTenantContext(ctx, tc), req)
	}
}

type deniedResponse struct {
	Status  int    `json:"status"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (m *Middleware) denied(w http.ResponseWriter, d Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status)

	if err := json.NewEncoder(w).Encode(deniedResponse{Status: d.Status, Reason: d.Reason, Message: d.Message}); err != nil {
		m.logger.Errorf("failed to encode denied response: %v", err)
	}
}

func NewMiddleware(resolver ResolverInterface, service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	m := new(Middleware)

	m.resolver = resolver
	m.service = service

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
