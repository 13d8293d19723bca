// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
	"github.com/canonical/tenant-access-service/internal/version"
)

const pingTimeout = 2 * time.Second

type Status struct {
	Status    string     `json:"status"`
	BuildInfo *BuildInfo `json:"buildInfo,omitempty"`
}

type BuildInfo struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	Name       string `json:"name"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/status", a.alive)
	r.Get("/api/v0/ready", a.ready)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	a.write(w, http.StatusOK, Status{Status: "ok", BuildInfo: buildInfo()})
}

// ready reports 503 while the database cannot be reached.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	tags := map[string]string{"component": "postgres"}

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database is not reachable: %v", err)
		if err := a.monitor.SetDependencyAvailability(tags, 0); err != nil {
			a.logger.Debugf("error when setting dependency availability: %v", err)
		}
		a.write(w, http.StatusServiceUnavailable, Status{Status: "unavailable"})
		return
	}

	if err := a.monitor.SetDependencyAvailability(tags, 1); err != nil {
		a.logger.Debugf("error when setting dependency availability: %v", err)
	}
	a.write(w, http.StatusOK, Status{Status: "ok"})
}

func (a *API) write(w http.ResponseWriter, code int, s Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		a.logger.Errorf("failed to encode status response: %v", err)
	}
}

func buildInfo() *BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	b := &BuildInfo{Name: info.Main.Path, Version: version.Version}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			b.CommitHash = s.Value
		}
	}

	return b
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
