// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

var _ GateInterface = (*Gate)(nil)

// inFlowPaths are never redirected away from, the onboarding pages and the
// endpoints they call live here.
var inFlowPaths = []string{
	ProgramsPath,
	OrientationPath,
	DocumentsPath,
	ErrorPath,
	"/api/v0/enrollment",
	"/logout",
}

func inFlow(path string) bool {
	for _, p := range inFlowPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// GateResult is the outcome of an onboarding check. Redirect is empty when
// Allowed is true.
type GateResult struct {
	Allowed    bool
	Enrollment *types.Enrollment
	NextAction Action
	Redirect   string
}

type Gate struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// GateAccess decides whether principalID may reach currentPath given its
// onboarding progress. Routing follows the gating timestamps, never the
// coarse status.
func (g *Gate) GateAccess(ctx context.Context, principalID, currentPath string) GateResult {
	ctx, span := g.tracer.Start(ctx, "enrollment.Gate.GateAccess")
	defer span.End()

	result := g.gate(ctx, principalID, currentPath)

	outcome := "allowed"
	if !result.Allowed {
		outcome = "redirected"
	}
	g.monitor.IncAccessDecision(map[string]string{"gate": "enrollment", "outcome": outcome})

	return result
}

func (g *Gate) gate(ctx context.Context, principalID, currentPath string) GateResult {
	if principalID == "" {
		return redirect(nil, ErrorPath, currentPath)
	}

	e, err := g.storage.GetEnrollmentByPrincipalID(ctx, principalID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// nothing to gate yet, the user picks a program first
		return redirect(nil, ProgramsPath, currentPath)
	case err != nil:
		g.logger.Errorf("failed to load enrollment of %s: %v", principalID, err)
		return redirect(nil, ErrorPath, currentPath)
	}

	for _, issue := range Reconcile(e) {
		g.logger.Security().DataIntegrity("enrollment:"+e.ID, issue)
	}

	action := NextRequiredAction(e)
	if action.Target == CoursesPath {
		return GateResult{Allowed: true, Enrollment: e, NextAction: action}
	}

	return redirect(e, action.Target, currentPath)
}

func redirect(e *types.Enrollment, target, currentPath string) GateResult {
	r := GateResult{Enrollment: e, NextAction: NextRequiredAction(e)}

	if inFlow(currentPath) {
		r.Allowed = true
		return r
	}

	r.Redirect = target
	return r
}

type gateResultKey struct{}

// ResultFrom returns the gate outcome stored by Middleware.
func ResultFrom(ctx context.Context) (GateResult, bool) {
	r, ok := ctx.Value(gateResultKey{}).(GateResult)
	return r, ok
}

// Middleware redirects users with pending onboarding steps with a 303.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := authentication.GetUserID(r.Context())

			result := g.GateAccess(r.Context(), principal, r.URL.Path)
			if !result.Allowed {
				http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), gateResultKey{}, result)))
		})
	}
}

func NewGate(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Gate {
	g := new(Gate)

	g.storage = storage

	g.tracer = tracer
	g.monitor = monitor
	g.logger = logger

	return g
}
