// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeError          = "error"
	outcomeNotImplemented = "not_implemented"
)

type metrics struct {
	calls       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	discoveries *prometheus.CounterVec
}

// newMetrics builds the client collectors and registers them on reg when it is
// not nil. Collectors already registered by another Client are shared.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "securerpc_calls_total",
				Help: "Number of encrypted calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "securerpc_call_duration_seconds",
				Help:    "Latency of encrypted calls including key derivation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		discoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "securerpc_discoveries_total",
				Help: "Number of discovery requests by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg == nil {
		return m
	}
	m.calls = register(reg, m.calls)
	m.duration = register(reg, m.duration)
	m.discoveries = register(reg, m.discoveries)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observeCall(method string, start time.Time, err error) {
	outcome := outcomeOK
	var nie *NotImplementedError
	switch {
	case errors.As(err, &nie):
		outcome = outcomeNotImplemented
	case err != nil:
		outcome = outcomeError
	default:
		m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
	m.calls.WithLabelValues(method, outcome).Inc()
}

func (m *metrics) observeDiscovery(err error) {
	if err != nil {
		m.discoveries.WithLabelValues(outcomeError).Inc()
		return
	}
	m.discoveries.WithLabelValues(outcomeOK).Inc()
}
