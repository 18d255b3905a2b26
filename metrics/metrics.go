// Package metrics provides functionality for collecting and reporting
// performance metrics across the completion pipeline.
package metrics

import (
	"sync/atomic"
	"time"
)

// EngineMetrics represents unified metrics for all pipeline components
type EngineMetrics struct {
	// Cache metrics
	CacheHits      atomic.Int64
	CacheMisses    atomic.Int64
	CacheEvictions atomic.Int64
	CacheExpirals  atomic.Int64
	CacheSize      atomic.Int64
	CacheSweeps    atomic.Int64
	LastSweep      atomic.Value // time.Time

	// Trigger metrics
	TriggersScheduled atomic.Int64
	TriggersFired     atomic.Int64
	TriggersCancelled atomic.Int64
	TriggersRefused   atomic.Int64
	Completions       atomic.Int64
	CompletionErrors  atomic.Int64

	// Context assembly metrics
	ContextBuilds    atomic.Int64
	ContextCacheHits atomic.Int64

	// Search metrics
	Searches      atomic.Int64
	SearchResults atomic.Int64
}

// Snapshot is a thread-safe copy of EngineMetrics
type Snapshot struct {
	CacheHits      int64
	CacheMisses    int64
	CacheEvictions int64
	CacheExpirals  int64
	CacheSize      int64
	CacheSweeps    int64
	LastSweep      time.Time

	TriggersScheduled int64
	TriggersFired     int64
	TriggersCancelled int64
	TriggersRefused   int64
	Completions       int64
	CompletionErrors  int64

	ContextBuilds    int64
	ContextCacheHits int64

	Searches      int64
	SearchResults int64
}

// New creates a new EngineMetrics instance
func New() *EngineMetrics {
	m := &EngineMetrics{}
	m.LastSweep.Store(time.Time{})
	return m
}

// RecordHit records a cache hit
func (m *EngineMetrics) RecordHit() { m.CacheHits.Add(1) }

// RecordMiss records a cache miss
func (m *EngineMetrics) RecordMiss() { m.CacheMisses.Add(1) }

// RecordEviction records a cache eviction
func (m *EngineMetrics) RecordEviction() { m.CacheEvictions.Add(1) }

// RecordExpiry records a lazily or sweep-expired entry
func (m *EngineMetrics) RecordExpiry() { m.CacheExpirals.Add(1) }

// RecordSweep records a completed background sweep
func (m *EngineMetrics) RecordSweep() {
	m.CacheSweeps.Add(1)
	m.LastSweep.Store(time.Now())
}

// UpdateSize updates the current total cache size
func (m *EngineMetrics) UpdateSize(size int64) { m.CacheSize.Store(size) }

// HitRatio returns the cache hit ratio
func (m *EngineMetrics) HitRatio() float64 {
	hits := m.CacheHits.Load()
	total := hits + m.CacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// GetSnapshot returns a thread-safe copy of current metrics
func (m *EngineMetrics) GetSnapshot() Snapshot {
	return Snapshot{
		CacheHits:         m.CacheHits.Load(),
		CacheMisses:       m.CacheMisses.Load(),
		CacheEvictions:    m.CacheEvictions.Load(),
		CacheExpirals:     m.CacheExpirals.Load(),
		CacheSize:         m.CacheSize.Load(),
		CacheSweeps:       m.CacheSweeps.Load(),
		LastSweep:         m.LastSweep.Load().(time.Time),
		TriggersScheduled: m.TriggersScheduled.Load(),
		TriggersFired:     m.TriggersFired.Load(),
		TriggersCancelled: m.TriggersCancelled.Load(),
		TriggersRefused:   m.TriggersRefused.Load(),
		Completions:       m.Completions.Load(),
		CompletionErrors:  m.CompletionErrors.Load(),
		ContextBuilds:     m.ContextBuilds.Load(),
		ContextCacheHits:  m.ContextCacheHits.Load(),
		Searches:          m.Searches.Load(),
		SearchResults:     m.SearchResults.Load(),
	}
}

// Reset resets all metrics to zero
func (m *EngineMetrics) Reset() {
	m.CacheHits.Store(0)
	m.CacheMisses.Store(0)
	m.CacheEvictions.Store(0)
	m.CacheExpirals.Store(0)
	m.CacheSize.Store(0)
	m.CacheSweeps.Store(0)
	m.LastSweep.Store(time.Time{})
	m.TriggersScheduled.Store(0)
	m.TriggersFired.Store(0)
	m.TriggersCancelled.Store(0)
	m.TriggersRefused.Store(0)
	m.Completions.Store(0)
	m.CompletionErrors.Store(0)
	m.ContextBuilds.Store(0)
	m.ContextCacheHits.Store(0)
	m.Searches.Store(0)
	m.SearchResults.Store(0)
}
