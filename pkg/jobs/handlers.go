// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/types"
	"github.com/canonical/tenant-access-service/pkg/authentication"
)

type API struct {
	queue *Queue

	logger logging.LoggerInterface
}

// RegisterEndpoints mounts the manual intervention routes, callers are
// expected to wrap r with the administrator gate.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/admin/jobs", a.list)
	r.Post("/api/v0/admin/jobs/{id}/retry", a.retry)
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := types.JobStatus(q.Get("status"))
	if status == "" {
		status = types.JobFailed
	}

	switch status {
	case types.JobPending, types.JobProcessing, types.JobCompleted, types.JobFailed:
	default:
		http.Error(w, "Invalid job status", http.StatusBadRequest)
		return
	}

	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	size, _ := strconv.ParseInt(q.Get("size"), 10, 64)

	jobs, err := a.queue.ListByStatus(r.Context(), status, page, size)
	if err != nil {
		a.logger.Errorf("failed to list jobs: %v", err)
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	if jobs == nil {
		jobs = []*types.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": jobs}); err != nil {
		a.logger.Errorf("failed to encode jobs: %v", err)
	}
}

func (a *API) retry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.queue.Retry(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotRetryable) {
			http.Error(w, "Job not found or not failed", http.StatusConflict)
			return
		}
		a.logger.Errorf("failed to retry job %s: %v", id, err)
		http.Error(w, "Failed to retry job", http.StatusInternalServerError)
		return
	}

	principal, _ := authentication.GetUserID(r.Context())
	a.logger.Security().AdminAction(principal, "job.retry", id)

	w.WriteHeader(http.StatusAccepted)
}

func NewAPI(queue *Queue, logger logging.LoggerInterface) *API {
	return &API{
		queue:  queue,
		logger: logger,
	}
}
