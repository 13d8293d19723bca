// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tokens

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/audit"
)

const TokenHeader = "X-Access-Token"

type API struct {
	service ServiceInterface
	limiter *ipLimiter

	logger logging.LoggerInterface
}

type validationResponse struct {
	Valid     bool               `json:"valid"`
	Purpose   types.TokenPurpose `json:"purpose,omitempty"`
	TargetID  string             `json:"target_id,omitempty"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	UsesLeft  int                `json:"uses_left,omitempty"`
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/tokens/{purpose}/validate", a.validate)
}

func (a *API) validate(w http.ResponseWriter, r *http.Request) {
	if !a.limiter.Allow(audit.ClientIP(r)) {
		a.writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "rate limit exceeded"})
		return
	}

	purpose := types.TokenPurpose(chi.URLParam(r, "purpose"))
	if !ValidPurpose(purpose) {
		a.writeJSON(w, http.StatusNotFound, map[string]any{"message": "unknown token purpose"})
		return
	}

	raw := r.Header.Get(TokenHeader)
	if raw == "" {
		raw = r.URL.Query().Get(tokenQueryName)
	}

	t, ok := a.service.Validate(r.Context(), raw, purpose)
	if !ok {
		// same response for malformed, expired, exhausted and unknown tokens
		a.writeJSON(w, http.StatusUnauthorized, validationResponse{Valid: false})
		return
	}

	resp := validationResponse{
		Valid:     true,
		Purpose:   t.Purpose,
		ExpiresAt: &t.ExpiresAt,
		UsesLeft:  t.MaxUses - t.UsesCount,
	}
	if t.TargetID != nil {
		resp.TargetID = *t.TargetID
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Errorf("failed to encode token response: %v", err)
	}
}

func NewAPI(service ServiceInterface, perSecond float64, burst int, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		limiter: newIPLimiter(perSecond, burst),
		logger:  logger,
	}
}
