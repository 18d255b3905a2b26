// Package cache provides a namespaced key-value store with TTL expiry and
// LRU size bounding. It backs prompt memoization and workspace context
// caching; entries live for the process lifetime only.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/policy"
	"github.com/gozephyr/codeassist/ttl"
)

// Entry represents a cached value with metadata
type Entry struct {
	Value          any
	CreatedAt      time.Time
	ExpiresAt      time.Time
	AccessCount    int64
	LastAccessedAt time.Time
}

// Stats reports per-namespace statistics. MemoryBytes is an estimate derived
// from key lengths and a size-of-value heuristic, not an exact measurement.
type Stats struct {
	Size        int
	Hits        int64
	MemoryBytes int64
}

// namespace is one bounded key space inside the store
type namespace struct {
	entries map[string]*Entry
	policy  policy.Policy[string]
}

// Store is a namespaced cache with TTL expiry and pluggable eviction, LRU by
// default. All
// operations are total: missing namespaces and keys report absence rather
// than errors, and a non-positive TTL yields an already-expired entry.
type Store struct {
	mu         sync.Mutex
	namespaces map[string]*namespace

	maxSize       int
	ttlConfig     ttl.Config
	sweepInterval time.Duration
	policyFactory PolicyFactory
	metrics       *metrics.EngineMetrics

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
	sweepDone   chan struct{}
	closeOnce   sync.Once
	closed      atomic.Bool
}

// New creates a new store with the given options
func New(opts ...Option) *Store {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	s := &Store{
		namespaces:    make(map[string]*namespace),
		maxSize:       options.MaxSize,
		ttlConfig:     options.TTLConfig,
		sweepInterval: options.SweepInterval,
		policyFactory: options.Policy,
		metrics:       options.Metrics,
		sweepStop:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}

	if s.sweepInterval > 0 {
		s.sweepTicker = time.NewTicker(s.sweepInterval)
		go s.sweep()
	} else {
		close(s.sweepDone)
	}

	return s
}

// ns returns the namespace, creating it when create is set. Callers hold s.mu.
func (s *Store) ns(name string, create bool) *namespace {
	n, ok := s.namespaces[name]
	if !ok && create {
		n = &namespace{
			entries: make(map[string]*Entry),
			policy:  s.newPolicy(),
		}
		s.namespaces[name] = n
	}
	return n
}

func (s *Store) newPolicy() policy.Policy[string] {
	if s.policyFactory != nil {
		return s.policyFactory(s.maxSize)
	}
	return policy.NewLRU[string](policy.WithMaxSize(s.maxSize))
}

// Set inserts or overwrites an entry. The access count resets and the entry's
// expiry is now + ttl; a non-positive ttl stores an entry that is already
// expired. The namespace size bound is enforced before returning.
func (s *Store) Set(nsName, key string, value any, ttlDuration time.Duration) {
	if s.closed.Load() {
		return
	}

	now := time.Now()
	entry := &Entry{
		Value:          value,
		CreatedAt:      now,
		ExpiresAt:      ttl.ExpirationTime(ttlDuration, s.ttlConfig),
		AccessCount:    0,
		LastAccessedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns(nsName, true)
	n.entries[key] = entry
	n.policy.OnSet(key)

	// Evict least-recently-used entries until the bound holds
	for s.maxSize > 0 && len(n.entries) > s.maxSize {
		victim, ok := n.policy.Evict()
		if !ok {
			break
		}
		delete(n.entries, victim)
		if s.metrics != nil {
			s.metrics.RecordEviction()
		}
	}

	s.updateSizeLocked()
}

// Get returns the stored value. An entry whose expiry has passed is removed
// and reported as absent. On a hit the entry's access count and last-access
// time are refreshed; the value is returned without copying.
func (s *Store) Get(nsName, key string) (any, bool) {
	if s.closed.Load() {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns(nsName, false)
	if n == nil {
		s.recordMiss()
		return nil, false
	}

	entry, ok := n.entries[key]
	if !ok {
		s.recordMiss()
		return nil, false
	}

	if ttl.IsExpired(entry.ExpiresAt) {
		delete(n.entries, key)
		n.policy.OnDelete(key)
		if s.metrics != nil {
			s.metrics.RecordExpiry()
		}
		s.recordMiss()
		s.updateSizeLocked()
		return nil, false
	}

	entry.AccessCount++
	entry.LastAccessedAt = time.Now()
	n.policy.OnGet(key)
	if s.metrics != nil {
		s.metrics.RecordHit()
	}
	return entry.Value, true
}

// Invalidate removes a single entry, reporting whether it existed
func (s *Store) Invalidate(nsName, key string) bool {
	if s.closed.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns(nsName, false)
	if n == nil {
		return false
	}
	if _, ok := n.entries[key]; !ok {
		return false
	}
	delete(n.entries, key)
	n.policy.OnDelete(key)
	s.updateSizeLocked()
	return true
}

// InvalidateFunc removes every entry in the namespace whose key matches the
// predicate and returns the number removed
func (s *Store) InvalidateFunc(nsName string, pred func(key string) bool) int {
	if s.closed.Load() || pred == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns(nsName, false)
	if n == nil {
		return 0
	}

	removed := 0
	for key := range n.entries {
		if pred(key) {
			delete(n.entries, key)
			n.policy.OnDelete(key)
			removed++
		}
	}
	if removed > 0 {
		s.updateSizeLocked()
	}
	return removed
}

// InvalidateURI removes, across all namespaces, every entry whose key
// references the given file URI. Used for file-change notifications.
func (s *Store) InvalidateURI(uri string) int {
	if s.closed.Load() || uri == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, n := range s.namespaces {
		for key := range n.entries {
			if keyReferencesURI(key, uri) {
				delete(n.entries, key)
				n.policy.OnDelete(key)
				removed++
			}
		}
	}
	if removed > 0 {
		s.updateSizeLocked()
	}
	return removed
}

// keyReferencesURI reports whether a cache key is derived from the file.
// Structured file keys match on their "file:<uri>:" prefix; otherwise the
// URI must appear as a complete path segment so that "a.go" never claims
// entries for "data.go".
func keyReferencesURI(key, uri string) bool {
	if key == uri || strings.HasPrefix(key, "file:"+uri+":") {
		return true
	}
	for idx := strings.Index(key, uri); idx >= 0; {
		end := idx + len(uri)
		if (idx == 0 || segmentBoundary(key[idx-1])) &&
			(end == len(key) || segmentBoundary(key[end])) {
			return true
		}
		next := strings.Index(key[idx+1:], uri)
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return false
}

func segmentBoundary(c byte) bool {
	return c == ':' || c == '/'
}

// Clear drops all entries in the given namespaces, or everywhere when none
// are named
func (s *Store) Clear(nsNames ...string) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(nsNames) == 0 {
		for _, n := range s.namespaces {
			n.policy.OnClear()
		}
		s.namespaces = make(map[string]*namespace)
		s.updateSizeLocked()
		return
	}

	for _, name := range nsNames {
		if n, ok := s.namespaces[name]; ok {
			n.policy.OnClear()
			delete(s.namespaces, name)
		}
	}
	s.updateSizeLocked()
}

// Stats returns statistics for one namespace
func (s *Store) Stats(nsName string) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns(nsName, false)
	if n == nil {
		return Stats{}
	}

	stats := Stats{Size: len(n.entries)}
	for key, entry := range n.entries {
		stats.Hits += entry.AccessCount
		stats.MemoryBytes += entrySizeEstimate(key, entry)
	}
	return stats
}

// Namespaces returns the names of all live namespaces
func (s *Store) Namespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	return names
}

// Size returns the total number of entries across all namespaces
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeLocked()
}

// Close stops the background sweep and drops all entries
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		if s.sweepTicker != nil {
			close(s.sweepStop)
			<-s.sweepDone
			s.sweepTicker.Stop()
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.namespaces = make(map[string]*namespace)
	})
}

// sweep periodically removes expired entries so idle namespaces still shrink
func (s *Store) sweep() {
	defer close(s.sweepDone)

	for {
		select {
		case <-s.sweepTicker.C:
			s.sweepOnce()
		case <-s.sweepStop:
			return
		}
	}
}

// sweepOnce scans every namespace and removes expired entries
func (s *Store) sweepOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.namespaces {
		for key, entry := range n.entries {
			if ttl.IsExpired(entry.ExpiresAt) {
				delete(n.entries, key)
				n.policy.OnDelete(key)
				if s.metrics != nil {
					s.metrics.RecordExpiry()
				}
			}
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSweep()
	}
	s.updateSizeLocked()
}

func (s *Store) sizeLocked() int {
	total := 0
	for _, n := range s.namespaces {
		total += len(n.entries)
	}
	return total
}

func (s *Store) updateSizeLocked() {
	if s.metrics != nil {
		s.metrics.UpdateSize(int64(s.sizeLocked()))
	}
}

func (s *Store) recordMiss() {
	if s.metrics != nil {
		s.metrics.RecordMiss()
	}
}

// entrySizeEstimate approximates the memory held by one entry: key length,
// the length of string or byte values, and the fixed entry overhead
func entrySizeEstimate(key string, entry *Entry) int64 {
	total := int64(len(key)) + int64(unsafe.Sizeof(*entry))
	switch v := entry.Value.(type) {
	case string:
		total += int64(len(v))
	case []byte:
		total += int64(len(v))
	case interface{ SizeEstimate() int64 }:
		total += v.SizeEstimate()
	}
	return total
}
