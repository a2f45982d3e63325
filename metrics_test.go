// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsOutcomes(t *testing.T) {
	m := newMetrics(nil)
	start := time.Now()
	m.observeCall(MethodSplit, start, nil)
	m.observeCall(MethodSplit, start, errors.New("boom"))
	m.observeCall(MethodJoin, start, &NotImplementedError{Method: MethodJoin})
	m.observeDiscovery(nil)
	m.observeDiscovery(errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues(MethodSplit, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues(MethodSplit, outcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues(MethodJoin, outcomeNotImplemented)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.discoveries.WithLabelValues(outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.discoveries.WithLabelValues(outcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration), "only successful calls are timed")
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newMetrics(reg)
	b := newMetrics(reg)
	assert.Same(t, a.calls, b.calls)

	b.observeDiscovery(nil)
	n, err := testutil.GatherAndCount(reg, "securerpc_discoveries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.discoveries.WithLabelValues(outcomeOK)))
}
