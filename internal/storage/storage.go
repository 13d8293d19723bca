// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"github.com/canonical/tenant-access-service/internal/db"
	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
	"github.com/canonical/tenant-access-service/internal/tracing"
)

var _ StorageInterface = (*Storage)(nil)

// Storage is the single persistence implementation, it is the source of truth
// shared by every instance of the service.
type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}
