// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTraced(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{path: "/api/v0/status", expected: false},
		{path: "/api/v0/ready", expected: false},
		{path: "/api/v0/metrics", expected: false},
		{path: "/api/v0/tenants/tenant-1/license", expected: true},
		{path: "/webhooks/billing", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := traced(httptest.NewRequest(http.MethodGet, tt.path, nil)); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
