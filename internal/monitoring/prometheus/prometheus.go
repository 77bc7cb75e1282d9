// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/brand-invite-service/internal/logging"
	"github.com/canonical/brand-invite-service/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	acceptances            *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	labels := prometheus.Labels{"service": m.service}
	for _, k := range []string{"route", "status"} {
		labels[k] = tags[k]
	}

	m.responseTime.With(labels).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencyAvailability == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencyAvailability.With(prometheus.Labels{
		"service":    m.service,
		"dependency": tags["dependency"],
	}).Set(value)

	return nil
}

// IncrementAcceptance counts one finished acceptance by outcome.
func (m *Monitor) IncrementAcceptance(tags map[string]string) error {
	if m.acceptances == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.acceptances.With(prometheus.Labels{
		"service": m.service,
		"outcome": tags["outcome"],
	}).Inc()

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_time_seconds",
			Help: "http_response_time_seconds",
		},
		[]string{"route", "status", "service"},
	)

	if err := prometheus.Register(m.responseTime); err != nil {
		m.logger.Debugf("histogram http_response_time_seconds not registered: %v", err)
	}
}

func (m *Monitor) registerGauges() {
	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency_available",
		},
		[]string{"dependency", "service"},
	)

	if err := prometheus.Register(m.dependencyAvailability); err != nil {
		m.logger.Debugf("gauge dependency_available not registered: %v", err)
	}
}

func (m *Monitor) registerCounters() {
	m.acceptances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_acceptances_total",
			Help: "invite_acceptances_total",
		},
		[]string{"outcome", "service"},
	)

	if err := prometheus.Register(m.acceptances); err != nil {
		m.logger.Debugf("counter invite_acceptances_total not registered: %v", err)
	}
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
