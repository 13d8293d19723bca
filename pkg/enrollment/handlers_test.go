// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/storage"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

func TestAPI_Next(t *testing.T) {
	confirmed := &types.Enrollment{ID: "enr-1", Status: types.EnrollmentConfirmed}
	complete := &types.Enrollment{ID: "enr-1", Status: types.EnrollmentActive, OrientationCompletedAt: stamp(), DocumentsSubmittedAt: stamp()}

	testCases := []struct {
		name             string
		query            string
		enrollment       *types.Enrollment
		err              error
		expectedStatus   int
		expectedAllowed  bool
		expectedRedirect string
	}{
		{
			name:             "orientation pending blocks the courses",
			enrollment:       confirmed,
			expectedStatus:   http.StatusOK,
			expectedRedirect: OrientationPath,
		},
		{
			name:            "orientation pending on the orientation page",
			query:           "?path=" + OrientationPath,
			enrollment:      confirmed,
			expectedStatus:  http.StatusOK,
			expectedAllowed: true,
		},
		{
			name:            "onboarded",
			query:           "?path=/lms/courses/42",
			enrollment:      complete,
			expectedStatus:  http.StatusOK,
			expectedAllowed: true,
		},
		{
			name:             "not enrolled yet",
			err:              storage.ErrNotFound,
			expectedStatus:   http.StatusOK,
			expectedRedirect: ProgramsPath,
		},
		{
			name:           "relative path",
			query:          "?path=lms/courses",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			if test.enrollment != nil || test.err != nil {
				mockStorage.EXPECT().GetEnrollmentByPrincipalID(gomock.Any(), "user-1").Return(test.enrollment, test.err)
			}

			r := chi.NewRouter()
			NewAPI(nil, newTestGate(mockStorage), logging.NewNoopLogger()).RegisterEndpoints(r)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/enrollment/next"+test.query, nil)
			req = req.WithContext(authentication.WithUserID(req.Context(), "user-1"))
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != test.expectedStatus {
				t.Fatalf("expected status %d, got %d", test.expectedStatus, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}

			var resp nextResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Allowed != test.expectedAllowed {
				t.Fatalf("expected allowed %v, got %v", test.expectedAllowed, resp.Allowed)
			}
			if resp.Redirect != test.expectedRedirect {
				t.Fatalf("expected redirect %q, got %q", test.expectedRedirect, resp.Redirect)
			}
		})
	}
}
