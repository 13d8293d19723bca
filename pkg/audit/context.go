// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ipContextKey struct{}

// WithRequestIP stores the requester IP so entries recorded further down the
// call chain carry it.
func WithRequestIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipContextKey{}, ip)
}

func RequestIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ipContextKey{}).(string)
	return ip, ok && ip != ""
}

// ClientIP returns the first X-Forwarded-For hop, falling back to the peer
// address of the connection.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Middleware attaches the client IP to every request context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithRequestIP(r.Context(), ClientIP(r))))
		})
	}
}
