// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
)

var otelHTTPClient = http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

// access tokens are not issued to this service, the audience is not checked
var verifierConfig = &oidc.Config{SkipClientIDCheck: true}

// NewJWTAuthenticator builds a token verifier for issuer. Keys come from
// jwksURL when set, from OIDC discovery otherwise.
func NewJWTAuthenticator(
	ctx context.Context,
	issuer string,
	jwksURL string,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	if len(allowedSubjects) == 0 && requiredScope == "" {
		logger.Warn("Neither ALLOWED_SUBJECTS nor REQUIRED_SCOPE is set, every token will be rejected")
	}

	ctx = oidc.ClientContext(ctx, &otelHTTPClient)

	var idTokenVerifier *oidc.IDTokenVerifier

	if jwksURL != "" {
		logger.Infof("Using manual JWKS URL: %s", jwksURL)
		idTokenVerifier = oidc.NewVerifier(issuer, oidc.NewRemoteKeySet(ctx, jwksURL), verifierConfig)
	} else {
		logger.Infof("Using OIDC discovery for issuer: %s", issuer)
		provider, err := oidc.NewProvider(ctx, issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to create OIDC provider: %v", err)
		}
		idTokenVerifier = provider.Verifier(verifierConfig)
	}

	logger.Info("JWT authentication is enabled")

	return NewJWTVerifier(idTokenVerifier, allowedSubjects, requiredScope, tracer, monitor, logger), nil
}
