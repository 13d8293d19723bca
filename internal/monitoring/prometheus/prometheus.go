// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/tenant-access-service/internal/logging"
	"github.com/canonical/tenant-access-service/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime    *prometheus.HistogramVec
	dependencies    *prometheus.GaugeVec
	accessDecisions *prometheus.CounterVec
	auditFailures   *prometheus.CounterVec
	jobOutcomes     *prometheus.CounterVec
	tokenChecks     *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	h, err := m.responseTime.GetMetricWith(m.labels(tags))
	if err != nil {
		return err
	}

	h.Observe(value)
	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	g, err := m.dependencies.GetMetricWith(m.labels(tags))
	if err != nil {
		return err
	}

	g.Set(value)
	return nil
}

func (m *Monitor) IncAccessDecision(tags map[string]string) error {
	return m.inc(m.accessDecisions, tags)
}

func (m *Monitor) IncAuditWriteFailure(tags map[string]string) error {
	return m.inc(m.auditFailures, tags)
}

func (m *Monitor) IncJobOutcome(tags map[string]string) error {
	return m.inc(m.jobOutcomes, tags)
}

func (m *Monitor) IncTokenValidation(tags map[string]string) error {
	return m.inc(m.tokenChecks, tags)
}

func (m *Monitor) inc(vec *prometheus.CounterVec, tags map[string]string) error {
	c, err := vec.GetMetricWith(m.labels(tags))
	if err != nil {
		return err
	}

	c.Inc()
	return nil
}

func (m *Monitor) labels(tags map[string]string) prometheus.Labels {
	l := prometheus.Labels{"service": m.service}
	for k, v := range tags {
		l[k] = v
	}
	return l
}

// register returns the already registered collector when the same metric is
// registered twice, which happens when several monitors share a process.
func register[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.responseTime = register(prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "http_response_time_seconds",
		},
		[]string{"route", "status", "service"},
	))

	m.dependencies = register(prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency_available",
		},
		[]string{"component", "service"},
	))

	m.accessDecisions = register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "License, tenant and feature gate decisions.",
		},
		[]string{"gate", "outcome", "service"},
	))

	m.auditFailures = register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be persisted.",
		},
		[]string{"kind", "service"},
	))

	m.jobOutcomes = register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Outbox jobs processed by outcome.",
		},
		[]string{"type", "outcome", "service"},
	))

	m.tokenChecks = register(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_token_validations_total",
			Help: "Capability token validations by outcome.",
		},
		[]string{"purpose", "outcome", "service"},
	))

	return m
}
