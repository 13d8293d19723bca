// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

func newTestMiddleware(resolver ResolverInterface, service ServiceInterface) *Middleware {
	logger := logging.NewNoopLogger()
	return NewMiddleware(resolver, service, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RequireLicense(t *testing.T) {
	tc := &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: types.RoleStudent, LicenseStatus: types.LicenseSuspended}

	testCases := []struct {
		name           string
		principal      string
		setupMocks     func(*MockResolverInterface, *MockServiceInterface)
		expectedStatus int
		expectedCalled bool
	}{
		{
			name:      "active license",
			principal: "user-1",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-1").Return(tc, true)
				s.EXPECT().CheckAccess(gomock.Any(), tc).Return(allow())
			},
			expectedStatus: http.StatusOK,
			expectedCalled: true,
		},
		{
			name:      "suspended license",
			principal: "user-1",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-1").Return(tc, true)
				s.EXPECT().CheckAccess(gomock.Any(), tc).Return(deny(ReasonSuspended))
			},
			expectedStatus: http.StatusPaymentRequired,
		},
		{
			name:      "unresolvable principal",
			principal: "user-2",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-2").Return(nil, false)
				s.EXPECT().CheckAccess(gomock.Any(), nil).Return(deny(ReasonUnauthenticated))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unauthenticated request",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				s.EXPECT().CheckAccess(gomock.Any(), nil).Return(deny(ReasonUnauthenticated))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:      "super administrator bypasses the license",
			principal: "root",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "root").Return(&TenantContext{UserID: "root", Role: types.RoleSuperAdmin, LicenseStatus: types.LicenseCancelled}, true)
			},
			expectedStatus: http.StatusOK,
			expectedCalled: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockResolver := NewMockResolverInterface(ctrl)
			mockService := NewMockServiceInterface(ctrl)
			test.setupMocks(mockResolver, mockService)

			m := newTestMiddleware(mockResolver, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/tenants/tenant-1/license", nil)
			if test.principal != "" {
				req = req.WithContext(authentication.WithUserID(req.Context(), test.principal))
			}
			rec := httptest.NewRecorder()

			called := false
			m.RequireLicense()(okHandler(&called)).ServeHTTP(rec, req)

			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rec.Code)
			}
			if called != test.expectedCalled {
				t.Fatalf("expected next called %v, got %v", test.expectedCalled, called)
			}

			if !test.expectedCalled {
				var body deniedResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Status != test.expectedStatus || body.Message == "" {
					t.Fatalf("unexpected body %+v", body)
				}
			}
		})
	}
}

func TestMiddleware_RequireTenantAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tc := &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: types.RoleAdmin, LicenseStatus: types.LicenseActive}

	mockService := NewMockServiceInterface(ctrl)
	mockService.EXPECT().CheckTenantAccess(gomock.Any(), tc, "tenant-1").Return(allow())
	mockService.EXPECT().CheckTenantAccess(gomock.Any(), tc, "tenant-2").Return(deny(ReasonCrossTenant))

	m := newTestMiddleware(NewMockResolverInterface(ctrl), mockService)

	called := false
	r := chi.NewRouter()
	r.With(m.RequireTenantAccess("tenant_id")).Get("/tenants/{tenant_id}", okHandler(&called).ServeHTTP)

	for tenantID, expected := range map[string]int{"tenant-1": http.StatusOK, "tenant-2": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenantID, nil)
		req = req.WithContext(WithTenantContext(req.Context(), tc))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != expected {
			t.Fatalf("tenant %s: expected status %d, got %d", tenantID, expected, rec.Code)
		}
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	testCases := []struct {
		name           string
		tc             *TenantContext
		expectedStatus int
	}{
		{name: "allowed role", tc: &TenantContext{UserID: "root", Role: types.RoleSuperAdmin}, expectedStatus: http.StatusOK},
		{name: "other role", tc: &TenantContext{UserID: "user-1", Role: types.RoleAdmin}, expectedStatus: http.StatusForbidden},
		{name: "no context", tc: nil, expectedStatus: http.StatusUnauthorized},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newTestMiddleware(NewMockResolverInterface(ctrl), NewMockServiceInterface(ctrl))

			req := httptest.NewRequest(http.MethodPost, "/api/v0/admin/jobs/1/retry", nil)
			if test.tc != nil {
				req = req.WithContext(WithTenantContext(req.Context(), test.tc))
			}
			rec := httptest.NewRecorder()

			called := false
			m.RequireRole(types.RoleSuperAdmin)(okHandler(&called)).ServeHTTP(rec, req)

			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rec.Code)
			}
		})
	}
}

func TestMiddleware_RequireFeature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tc := &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: types.RoleAdmin, LicenseStatus: types.LicenseActive}

	mockService := NewMockServiceInterface(ctrl)
	mockService.EXPECT().CheckFeature(gomock.Any(), tc, FeatureSSO).Return(deny(ReasonFeature))

	m := newTestMiddleware(NewMockResolverInterface(ctrl), mockService)

	req := httptest.NewRequest(http.MethodGet, "/sso", nil)
	req = req.WithContext(WithTenantContext(req.Context(), tc))
	rec := httptest.NewRecorder()

	called := false
	m.RequireFeature(FeatureSSO)(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden || called {
		t.Fatalf("expected 403 without calling next, got %d (called %v)", rec.Code, called)
	}
}

func TestMiddleware_GRPCInterceptor(t *testing.T) {
	tc := &TenantContext{TenantID: "tenant-1", UserID: "user-1", Role: types.RoleStudent, LicenseStatus: types.LicenseExpired}

	testCases := []struct {
		name         string
		method       string
		setupMocks   func(*MockResolverInterface, *MockServiceInterface)
		expectedCode codes.Code
	}{
		{
			name:         "exempt health check",
			method:       "/grpc.health.v1.Health/Check",
			setupMocks:   func(*MockResolverInterface, *MockServiceInterface) {},
			expectedCode: codes.OK,
		},
		{
			name:   "expired license",
			method: "/tenant.v1.Reports/List",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-1").Return(tc, true)
				s.EXPECT().CheckAccess(gomock.Any(), tc).Return(deny(ReasonExpired))
			},
			expectedCode: codes.FailedPrecondition,
		},
		{
			name:   "cross tenant style denial",
			method: "/tenant.v1.Reports/List",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-1").Return(tc, true)
				s.EXPECT().CheckAccess(gomock.Any(), tc).Return(deny(ReasonCancelled))
			},
			expectedCode: codes.PermissionDenied,
		},
		{
			name:   "allowed",
			method: "/tenant.v1.Reports/List",
			setupMocks: func(r *MockResolverInterface, s *MockServiceInterface) {
				r.EXPECT().Resolve(gomock.Any(), "user-1").Return(tc, true)
				s.EXPECT().CheckAccess(gomock.Any(), tc).Return(allow())
			},
			expectedCode: codes.OK,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockResolver := NewMockResolverInterface(ctrl)
			mockService := NewMockServiceInterface(ctrl)
			test.setupMocks(mockResolver, mockService)

			interceptor := newTestMiddleware(mockResolver, mockService).GRPCInterceptor("/grpc.health.v1.Health/")

			ctx := authentication.WithUserID(context.Background(), "user-1")
			_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: test.method}, func(context.Context, any) (any, error) {
				return "ok", nil
			})

			if code := status.Code(err); code != test.expectedCode {
				t.Fatalf("expected code %s, got %s", test.expectedCode, code)
			}
		})
	}
}
