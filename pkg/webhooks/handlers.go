// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/pkg/license"
)

const maxBodyBytes = 1 << 20

type API struct {
	service ServiceInterface

	logger logging.LoggerInterface
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Post("/webhooks/billing", a.billing)
}

func (a *API) billing(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !a.service.VerifySignature(body, r.Header.Get(SignatureHeader)) {
		a.logger.Security().AuthzFailure("billing-webhook", r.URL.Path)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload BillingPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err = a.service.HandleBillingEvent(r.Context(), &payload)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, license.ErrUnsupportedEvent):
		// acknowledged so the processor stops redelivering it
		a.logger.Infof("ignoring billing event %s of type %s", payload.ID, payload.Type)
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, license.ErrInvalidBillingData):
		a.logger.Warnf("rejecting billing event %s: %v", payload.ID, err)
		http.Error(w, "Invalid billing event", http.StatusBadRequest)
	case errors.Is(err, license.ErrLicenseNotFound):
		http.Error(w, "Unknown subscription", http.StatusNotFound)
	case errors.Is(err, license.ErrActiveConflict):
		http.Error(w, "Tenant already has an active license", http.StatusConflict)
	default:
		a.logger.Errorf("failed to handle billing event %s: %v", payload.ID, err)
		http.Error(w, "Failed to process event", http.StatusInternalServerError)
	}
}
