package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter("test", nil, reg)

	m := New()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	m.UpdateSize(4)

	e.Export(m.GetSnapshot())

	require.InDelta(t, 2, testutil.ToFloat64(e.cacheHits), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(e.cacheMisses), 1e-9)
	require.InDelta(t, 4, testutil.ToFloat64(e.cacheSize), 1e-9)

	// A second export only adds the delta
	m.RecordHit()
	e.Export(m.GetSnapshot())
	require.InDelta(t, 3, testutil.ToFloat64(e.cacheHits), 1e-9)
}

func TestPrometheusExporterLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter("editor", map[string]string{"service": "ide"}, reg)
	require.Equal(t, "ide", e.labels["service"])
	require.Equal(t, "editor", e.labels["engine"])
}

func TestPrometheusExporterLeavesCallerLabelsAlone(t *testing.T) {
	reg := prometheus.NewRegistry()
	caller := map[string]string{"team": "editors"}
	e := NewPrometheusExporter("editor", caller, reg)

	// The caller's map is read, never written
	require.Equal(t, map[string]string{"team": "editors"}, caller)

	// Unregistered caller keys are dropped rather than passed to the vecs
	require.Equal(t, map[string]string{"service": "codeassist", "engine": "editor"}, e.labels)

	m := New()
	m.RecordHit()
	require.NotPanics(t, func() { e.Export(m.GetSnapshot()) })
	require.InDelta(t, 1, testutil.ToFloat64(e.cacheHits), 1e-9)
}
