// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package license

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
	"github.com/canonical/tenant-access-service/pkg/jobs"
)

type overrideRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type provisionRequest struct {
	Plan           types.Plan `json:"plan" validate:"omitempty,oneof=trial basic professional enterprise"`
	SourceTenantID string     `json:"source_tenant_id" validate:"omitempty,max=64"`
}

type licenseResponse struct {
	Status  types.LicenseStatus `json:"status"`
	License *types.License      `json:"license"`
}

type seatsResponse struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
	Available bool `json:"available"`
}

type API struct {
	service  *Service
	validate *validator.Validate

	logger logging.LoggerInterface
}

// RegisterEndpoints mounts the tenant scoped routes, r is expected to run
// behind RequireLicense and RequireTenantAccess("tenant_id").
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/tenants/{tenant_id}/license", a.getLicense)
	r.Get("/api/v0/tenants/{tenant_id}/seats", a.getSeats)
}

// RegisterAdminEndpoints mounts the manual override routes, callers are
// expected to wrap r with the administrator gate.
func (a *API) RegisterAdminEndpoints(r chi.Router) {
	r.Post("/api/v0/admin/licenses/{id}/suspend", a.suspend)
	r.Post("/api/v0/admin/licenses/{id}/reactivate", a.reactivate)
	r.Post("/api/v0/admin/tenants/{tenant_id}/provision", a.provision)
}

func (a *API) getLicense(w http.ResponseWriter, r *http.Request) {
	tc, _ := TenantContextFrom(r.Context())

	resp := licenseResponse{Status: DefaultLicenseStatus}
	if tc != nil {
		resp.Status, resp.License = tc.LicenseStatus, tc.License
	}

	// super administrators may look at any tenant
	if tenantID := chi.URLParam(r, "tenant_id"); tc == nil || tc.TenantID != tenantID {
		l, err := a.service.LatestLicense(r.Context(), tenantID)
		switch {
		case err == nil:
			resp.Status, resp.License = l.Status, l
		case errors.Is(err, ErrLicenseNotFound):
			resp.Status, resp.License = DefaultLicenseStatus, nil
		default:
			a.logger.Errorf("failed to get license of tenant %s: %v", tenantID, err)
			http.Error(w, "Failed to get license", http.StatusInternalServerError)
			return
		}
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) getSeats(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant_id")

	used, limit, err := a.service.SeatUsage(r.Context(), tenantID)
	if err != nil {
		a.logger.Errorf("failed to get seat usage of tenant %s: %v", tenantID, err)
		http.Error(w, "Failed to get seat usage", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, seatsResponse{
		Used:      used,
		Limit:     limit,
		Unlimited: limit <= 0,
		Available: limit <= 0 || used < limit,
	})
}

func (a *API) suspend(w http.ResponseWriter, r *http.Request) {
	a.override(w, r, a.service.Suspend)
}

func (a *API) reactivate(w http.ResponseWriter, r *http.Request) {
	a.override(w, r, a.service.Reactivate)
}

func (a *API) override(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, string, string) error) {
	id := chi.URLParam(r, "id")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := authentication.GetUserID(r.Context())

	if err := apply(r.Context(), id, principal, req.Reason); err != nil {
		switch {
		case errors.Is(err, ErrLicenseNotFound):
			http.Error(w, "License not found", http.StatusNotFound)
		case errors.Is(err, ErrActiveConflict):
			http.Error(w, "Tenant already has an active license", http.StatusConflict)
		default:
			a.logger.Errorf("failed to update license %s: %v", id, err)
			http.Error(w, "Failed to update license", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) provision(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant_id")

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	principal, _ := authentication.GetUserID(r.Context())

	job, err := a.service.queue.Enqueue(r.Context(), jobs.ProvisionLicense{
		TenantID:       tenantID,
		Plan:           req.Plan,
		SourceTenantID: req.SourceTenantID,
		RequestedBy:    principal,
	}, jobs.EnqueueOptions{})
	if err != nil {
		a.logger.Errorf("failed to enqueue provisioning of tenant %s: %v", tenantID, err)
		http.Error(w, "Failed to schedule provisioning", http.StatusInternalServerError)
		return
	}

	a.logger.Security().AdminAction(principal, "license.provision", tenantID)
	a.writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(service *Service, logger logging.LoggerInterface) *API {
	return &API{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}
