package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/policy"
	"github.com/gozephyr/codeassist/ttl"
)

func newTestStore(opts ...Option) *Store {
	opts = append([]Option{WithSweepInterval(0)}, opts...)
	return New(opts...)
}

func TestSetGet(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("completions", "k1", "v1", time.Minute)

	v, ok := s.Get("completions", "k1")
	require.True(t, ok)
	require.Equal(t, "v1", v)

	_, ok = s.Get("completions", "missing")
	require.False(t, ok)

	_, ok = s.Get("nosuchns", "k1")
	require.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	s := newTestStore(WithTTLConfig(ttl.Config{MaxTTL: time.Hour}))
	defer s.Close()

	s.Set("ns", "short", "v", 30*time.Millisecond)

	v, ok := s.Get("ns", "short")
	require.True(t, ok)
	require.Equal(t, "v", v)

	time.Sleep(50 * time.Millisecond)
	_, ok = s.Get("ns", "short")
	require.False(t, ok)

	// Lazy expiry removed the entry entirely
	require.Equal(t, 0, s.Stats("ns").Size)
}

func TestNonPositiveTTLIsExpired(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("ns", "zero", "v", 0)
	s.Set("ns", "neg", "v", -time.Minute)

	_, ok := s.Get("ns", "zero")
	require.False(t, ok)
	_, ok = s.Get("ns", "neg")
	require.False(t, ok)
}

func TestLRUBound(t *testing.T) {
	const maxSize = 5
	const extra = 3

	s := newTestStore(WithMaxSize(maxSize))
	defer s.Close()

	for i := 0; i < maxSize+extra; i++ {
		s.Set("ns", fmt.Sprintf("key%d", i), i, time.Minute)
	}

	require.Equal(t, maxSize, s.Stats("ns").Size)

	// The most recently inserted keys survive
	for i := extra; i < maxSize+extra; i++ {
		_, ok := s.Get("ns", fmt.Sprintf("key%d", i))
		require.True(t, ok, "key%d should be retrievable", i)
	}
	// The least recently used originals were evicted
	for i := 0; i < extra; i++ {
		_, ok := s.Get("ns", fmt.Sprintf("key%d", i))
		require.False(t, ok, "key%d should be evicted", i)
	}
}

func TestLRUAccessRefreshes(t *testing.T) {
	s := newTestStore(WithMaxSize(2))
	defer s.Close()

	s.Set("ns", "a", 1, time.Minute)
	s.Set("ns", "b", 2, time.Minute)

	// Touch "a" so "b" is the eviction candidate
	_, ok := s.Get("ns", "a")
	require.True(t, ok)

	s.Set("ns", "c", 3, time.Minute)

	_, ok = s.Get("ns", "a")
	require.True(t, ok)
	_, ok = s.Get("ns", "b")
	require.False(t, ok)
}

func TestNamespaceIsolation(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("one", "k", "first", time.Minute)
	s.Set("two", "k", "second", time.Minute)

	v, _ := s.Get("one", "k")
	require.Equal(t, "first", v)
	v, _ = s.Get("two", "k")
	require.Equal(t, "second", v)

	s.Clear("one")
	_, ok := s.Get("one", "k")
	require.False(t, ok)
	_, ok = s.Get("two", "k")
	require.True(t, ok)
}

func TestInvalidate(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("ns", "k", "v", time.Minute)
	require.True(t, s.Invalidate("ns", "k"))
	require.False(t, s.Invalidate("ns", "k"))
	_, ok := s.Get("ns", "k")
	require.False(t, ok)
}

func TestInvalidateFunc(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("ns", FileKey("file:///a.go", 1), "ctx-a", time.Minute)
	s.Set("ns", FileKey("file:///a.go", 2), "ctx-a2", time.Minute)
	s.Set("ns", FileKey("file:///b.go", 1), "ctx-b", time.Minute)

	removed := s.InvalidateFunc("ns", func(key string) bool {
		return key == FileKey("file:///a.go", 1) || key == FileKey("file:///a.go", 2)
	})
	require.Equal(t, 2, removed)
	require.Equal(t, 1, s.Stats("ns").Size)
}

func TestInvalidateURI(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("context", FileKey("file:///src/a.go", 3), "ctx", time.Minute)
	s.Set("completions", "prompt-about-something", "v", time.Minute)
	s.Set("other", FileKey("file:///src/a.go", 1), "old", time.Minute)

	removed := s.InvalidateURI("file:///src/a.go")
	require.Equal(t, 2, removed)

	_, ok := s.Get("completions", "prompt-about-something")
	require.True(t, ok)
}

func TestInvalidateURISuffixDoesNotMatch(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("context", FileKey("proj/src/a.go", 1), "a", time.Minute)
	s.Set("context", FileKey("proj/src/data.go", 1), "data", time.Minute)

	// "a.go" is a suffix of "data.go" but names a different file
	require.Equal(t, 1, s.InvalidateURI("a.go"))

	_, ok := s.Get("context", FileKey("proj/src/data.go", 1))
	require.True(t, ok)
	_, ok = s.Get("context", FileKey("proj/src/a.go", 1))
	require.False(t, ok)
}

func TestKeyReferencesURI(t *testing.T) {
	cases := []struct {
		key, uri string
		want     bool
	}{
		{FileKey("proj/src/a.go", 2), "proj/src/a.go", true},
		{FileKey("proj/src/a.go", 2), "a.go", true},
		{FileKey("proj/src/data.go", 2), "a.go", false},
		{"proj/src/a.go", "proj/src/a.go", true},
		{FileKey("proj/src/a.go", 2), "src/a.go", true},
		{FileKey("proj/src/a.go", 2), "rc/a.go", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, keyReferencesURI(tc.key, tc.uri),
			"key=%q uri=%q", tc.key, tc.uri)
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("a", "k", 1, time.Minute)
	s.Set("b", "k", 2, time.Minute)
	s.Clear()
	require.Equal(t, 0, s.Size())
}

func TestStats(t *testing.T) {
	s := newTestStore()
	defer s.Close()

	s.Set("ns", "k1", "some cached value", time.Minute)
	s.Set("ns", "k2", "other", time.Minute)

	s.Get("ns", "k1")
	s.Get("ns", "k1")
	s.Get("ns", "k2")

	stats := s.Stats("ns")
	require.Equal(t, 2, stats.Size)
	require.Equal(t, int64(3), stats.Hits)
	require.Greater(t, stats.MemoryBytes, int64(len("some cached value")))

	require.Equal(t, Stats{}, s.Stats("empty"))
}

func TestBackgroundSweep(t *testing.T) {
	m := metrics.New()
	s := New(
		WithSweepInterval(20*time.Millisecond),
		WithMetrics(m),
	)
	defer s.Close()

	s.Set("ns", "gone", "v", 10*time.Millisecond)
	s.Set("ns", "kept", "v", time.Minute)

	require.Eventually(t, func() bool {
		return s.Stats("ns").Size == 1
	}, time.Second, 10*time.Millisecond)

	require.Greater(t, m.GetSnapshot().CacheSweeps, int64(0))
}

func TestOperationsAfterClose(t *testing.T) {
	s := newTestStore()
	s.Set("ns", "k", "v", time.Minute)
	s.Close()

	// Total operations: everything degrades to absence, nothing panics
	s.Set("ns", "k2", "v", time.Minute)
	_, ok := s.Get("ns", "k")
	require.False(t, ok)
	require.False(t, s.Invalidate("ns", "k"))
	require.Equal(t, 0, s.InvalidateFunc("ns", func(string) bool { return true }))
	s.Clear()
	s.Close()
}

func TestMetricsRecording(t *testing.T) {
	m := metrics.New()
	s := newTestStore(WithMaxSize(1), WithMetrics(m))
	defer s.Close()

	s.Set("ns", "a", 1, time.Minute)
	s.Get("ns", "a")
	s.Get("ns", "missing")
	s.Set("ns", "b", 2, time.Minute) // evicts "a"

	snap := m.GetSnapshot()
	require.Equal(t, int64(1), snap.CacheHits)
	require.Equal(t, int64(1), snap.CacheMisses)
	require.Equal(t, int64(1), snap.CacheEvictions)
	require.Equal(t, int64(1), snap.CacheSize)
}

func TestPolicyOption(t *testing.T) {
	s := newTestStore(WithMaxSize(2), WithPolicy(func(maxSize int) policy.Policy[string] {
		return policy.NewFIFO[string](policy.WithMaxSize(maxSize))
	}))
	defer s.Close()

	s.Set("ns", "a", 1, time.Minute)
	s.Set("ns", "b", 2, time.Minute)
	// Under FIFO, touching "a" does not save it from eviction
	s.Get("ns", "a")
	s.Set("ns", "c", 3, time.Minute)

	_, ok := s.Get("ns", "a")
	require.False(t, ok)
	_, ok = s.Get("ns", "b")
	require.True(t, ok)
	_, ok = s.Get("ns", "c")
	require.True(t, ok)
}
