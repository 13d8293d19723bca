// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

type enrollRequest struct {
	ProgramID string `json:"program_id" validate:"required,max=64"`
}

type advanceRequest struct {
	Status types.EnrollmentStatus `json:"status" validate:"required,oneof=approved paid confirmed orientation_complete documents_complete active"`
}

type remindRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type nextResponse struct {
	Allowed    bool              `json:"allowed"`
	NextAction Action            `json:"next_action"`
	Redirect   string            `json:"redirect,omitempty"`
	Enrollment *types.Enrollment `json:"enrollment"`
}

type API struct {
	service  *Service
	gate     GateInterface
	validate *validator.Validate

	logger logging.LoggerInterface
}

// RegisterEndpoints mounts the self service onboarding routes.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/enrollment/next", a.next)
	r.Post("/api/v0/enrollment", a.enroll)
	r.Post("/api/v0/enrollment/orientation", a.completeOrientation)
	r.Post("/api/v0/enrollment/documents", a.submitDocuments)
}

// RegisterAdminEndpoints mounts the staff routes, callers are expected to
// wrap r with the administrator gate.
func (a *API) RegisterAdminEndpoints(r chi.Router) {
	r.Post("/api/v0/admin/enrollments/{id}/advance", a.advance)
	r.Post("/api/v0/admin/enrollments/{id}/retire", a.retire)
	r.Post("/api/v0/admin/enrollments/{id}/remind", a.remind)
}

// next reports whether the caller may open the page in the path query
// parameter, the course catalog when absent. The endpoint itself is in the
// onboarding flow, so its own path is never what gets gated.
func (a *API) next(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if target == "" {
		target = CoursesPath
	}
	if !strings.HasPrefix(target, "/") {
		http.Error(w, "Invalid request: path must be absolute", http.StatusBadRequest)
		return
	}

	principal, _ := authentication.GetUserID(r.Context())

	result := a.gate.GateAccess(r.Context(), principal, target)

	a.writeJSON(w, http.StatusOK, nextResponse{
		Allowed:    result.Allowed,
		NextAction: result.NextAction,
		Redirect:   result.Redirect,
		Enrollment: result.Enrollment,
	})
}

func (a *API) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if !a.decode(w, r, &req) {
		return
	}

	principal, _ := authentication.GetUserID(r.Context())

	e, err := a.service.Enroll(r.Context(), principal, req.ProgramID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, e)
}

func (a *API) completeOrientation(w http.ResponseWriter, r *http.Request) {
	a.selfService(w, r, a.service.CompleteOrientation)
}

func (a *API) submitDocuments(w http.ResponseWriter, r *http.Request) {
	a.selfService(w, r, a.service.SubmitDocuments)
}

func (a *API) selfService(w http.ResponseWriter, r *http.Request, step func(context.Context, string, string) error) {
	principal, _ := authentication.GetUserID(r.Context())

	e, err := a.service.Current(r.Context(), principal)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if err := step(r.Context(), e.ID, principal); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if !a.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	principal, _ := authentication.GetUserID(r.Context())

	if err := a.service.Advance(r.Context(), id, req.Status, principal); err != nil {
		a.writeError(w, err)
		return
	}

	a.logger.Security().AdminAction(principal, "enrollment.advance", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) retire(w http.ResponseWriter, r *http.Request) {
	principal, _ := authentication.GetUserID(r.Context())

	if err := a.service.Retire(r.Context(), chi.URLParam(r, "id"), principal); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) remind(w http.ResponseWriter, r *http.Request) {
	var req remindRequest
	if !a.decode(w, r, &req) {
		return
	}

	jobID, err := a.service.RemindNextStep(r.Context(), chi.URLParam(r, "id"), req.Email)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := a.validate.Struct(v); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEnrollmentNotFound):
		http.Error(w, "Enrollment not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, "Please complete the previous step first", http.StatusConflict)
	case errors.Is(err, ErrAlreadyEnrolled):
		http.Error(w, "Already enrolled in this program", http.StatusConflict)
	default:
		a.logger.Errorf("enrollment request failed: %v", err)
		http.Error(w, "Something went wrong, please try again later", http.StatusInternalServerError)
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(service *Service, gate GateInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:  service,
		gate:     gate,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}
