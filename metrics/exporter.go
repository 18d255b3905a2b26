package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Exporter publishes engine metrics to an external system
type Exporter interface {
	// Export publishes the given snapshot
	Export(s Snapshot)
}

// PrometheusExporter implements Exporter using Prometheus metrics
type PrometheusExporter struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheSize      *prometheus.GaugeVec

	triggersScheduled *prometheus.CounterVec
	triggersFired     *prometheus.CounterVec
	triggersCancelled *prometheus.CounterVec
	completions       *prometheus.CounterVec

	searches      *prometheus.CounterVec
	contextBuilds *prometheus.CounterVec

	labels   map[string]string
	exported Snapshot
}

// NewPrometheusExporter creates a new Prometheus exporter. A nil registerer
// falls back to the default registry. Only the "service" label is read from
// the caller's map; other keys are ignored since the registered metrics carry
// exactly the "service" and "engine" label names.
func NewPrometheusExporter(engineName string, labels map[string]string, reg prometheus.Registerer) *PrometheusExporter {
	lbls := map[string]string{
		"service": "codeassist",
		"engine":  engineName,
	}
	if v, ok := labels["service"]; ok {
		lbls["service"] = v
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	labelNames := []string{"service", "engine"}
	counter := func(name, help string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
		reg.MustRegister(c)
		return c
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labelNames)
		reg.MustRegister(g)
		return g
	}

	return &PrometheusExporter{
		cacheHits:         counter("codeassist_cache_hits_total", "Total number of cache hits"),
		cacheMisses:       counter("codeassist_cache_misses_total", "Total number of cache misses"),
		cacheEvictions:    counter("codeassist_cache_evictions_total", "Total number of cache evictions"),
		cacheSize:         gauge("codeassist_cache_size", "Current number of cached entries"),
		triggersScheduled: counter("codeassist_triggers_scheduled_total", "Total number of completion triggers scheduled"),
		triggersFired:     counter("codeassist_triggers_fired_total", "Total number of completion triggers fired"),
		triggersCancelled: counter("codeassist_triggers_cancelled_total", "Total number of completion triggers cancelled"),
		completions:       counter("codeassist_completions_total", "Total number of completions returned"),
		searches:          counter("codeassist_searches_total", "Total number of workspace searches"),
		contextBuilds:     counter("codeassist_context_builds_total", "Total number of workspace context builds"),
		labels:            lbls,
	}
}

// Export implements Exporter. Counters advance by the delta against the last
// exported snapshot so Export can be called on any schedule.
func (e *PrometheusExporter) Export(s Snapshot) {
	add := func(c *prometheus.CounterVec, cur, prev int64) {
		if d := cur - prev; d > 0 {
			c.With(e.labels).Add(float64(d))
		}
	}

	add(e.cacheHits, s.CacheHits, e.exported.CacheHits)
	add(e.cacheMisses, s.CacheMisses, e.exported.CacheMisses)
	add(e.cacheEvictions, s.CacheEvictions, e.exported.CacheEvictions)
	add(e.triggersScheduled, s.TriggersScheduled, e.exported.TriggersScheduled)
	add(e.triggersFired, s.TriggersFired, e.exported.TriggersFired)
	add(e.triggersCancelled, s.TriggersCancelled, e.exported.TriggersCancelled)
	add(e.completions, s.Completions, e.exported.Completions)
	add(e.searches, s.Searches, e.exported.Searches)
	add(e.contextBuilds, s.ContextBuilds, e.exported.ContextBuilds)
	e.cacheSize.With(e.labels).Set(float64(s.CacheSize))

	e.exported = s
}
