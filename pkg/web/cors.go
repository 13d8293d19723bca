// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/canonical/tenant-access-service/pkg/authentication"
	"github.com/canonical/tenant-access-service/pkg/tokens"
)

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(
		cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{
				http.MethodHead,
				http.MethodGet,
				http.MethodPost,
			},
			AllowedHeaders: []string{
				"Authorization",
				"Content-Type",
				tokens.TokenHeader,
				authentication.PrincipalHeader,
			},
			ExposedHeaders: []string{"Location"},
			// credentials are bearer tokens, never cookies
			AllowCredentials: false,
			MaxAge:           300,
		},
	)
}
