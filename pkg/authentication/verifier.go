// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
)

var (
	ErrNoAccessPolicy = errors.New("unauthorized: no access policy configured")
	ErrNotAuthorized  = errors.New("unauthorized: missing required scope or subject not allowed")
)

var _ TokenVerifierInterface = (*JWTVerifier)(nil)

type claims struct {
	Subject string   `json:"sub"`
	Scope   string   `json:"scope"`
	Scopes  []string `json:"scp"`
}

// accessPolicy admits a token whose subject is listed or which carries the
// required scope, in either the space separated or the array claim.
type accessPolicy struct {
	allowedSubjects []string
	requiredScope   string
}

func (p accessPolicy) check(c claims) error {
	if len(p.allowedSubjects) == 0 && p.requiredScope == "" {
		return ErrNoAccessPolicy
	}

	if slices.Contains(p.allowedSubjects, c.Subject) {
		return nil
	}

	if p.requiredScope != "" {
		if slices.Contains(strings.Fields(c.Scope), p.requiredScope) || slices.Contains(c.Scopes, p.requiredScope) {
			return nil
		}
	}

	return ErrNotAuthorized
}

type JWTVerifier struct {
	verifier *oidc.IDTokenVerifier
	policy   accessPolicy

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		v.observe("invalid")
		return "", err
	}

	var c claims
	if err := token.Claims(&c); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		v.observe("invalid")
		return "", err
	}

	if err := v.policy.check(c); err != nil {
		v.logger.Security().AuthzFailure(c.Subject, "jwt_api_access")
		v.observe("denied")
		return "", err
	}

	v.observe("ok")
	return c.Subject, nil
}

func (v *JWTVerifier) observe(outcome string) {
	if err := v.monitor.IncAccessDecision(map[string]string{"gate": "jwt", "outcome": outcome}); err != nil {
		v.logger.Debugf("error when counting jwt decision: %v", err)
	}
}

func NewJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	v := new(JWTVerifier)

	v.verifier = verifier
	v.policy = accessPolicy{allowedSubjects: allowedSubjects, requiredScope: requiredScope}

	v.tracer = tracer
	v.monitor = monitor
	v.logger = logger

	return v
}
