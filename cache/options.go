package cache

import (
	"time"

	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/policy"
	"github.com/gozephyr/codeassist/ttl"
)

// PolicyFactory builds the eviction policy for a new namespace
type PolicyFactory func(maxSize int) policy.Policy[string]

// Options represents store configuration options
type Options struct {
	// MaxSize is the maximum number of entries a namespace can hold
	MaxSize int

	// TTLConfig is the configuration for TTL behavior
	TTLConfig ttl.Config

	// SweepInterval is the interval for the background expiry sweep;
	// zero disables the sweep and only lazy expiry applies
	SweepInterval time.Duration

	// Policy builds the eviction policy per namespace; nil means LRU
	Policy PolicyFactory

	// Metrics receives hit/miss/eviction counts when non-nil
	Metrics *metrics.EngineMetrics
}

// Option is a function that configures store options
type Option func(*Options)

// WithMaxSize sets the per-namespace size bound
func WithMaxSize(size int) Option {
	return func(o *Options) {
		o.MaxSize = size
	}
}

// WithTTLConfig sets the TTL configuration
func WithTTLConfig(config ttl.Config) Option {
	return func(o *Options) {
		o.TTLConfig = config
	}
}

// WithSweepInterval sets the background sweep interval
func WithSweepInterval(interval time.Duration) Option {
	return func(o *Options) {
		o.SweepInterval = interval
	}
}

// WithPolicy sets the eviction policy factory
func WithPolicy(f PolicyFactory) Option {
	return func(o *Options) {
		o.Policy = f
	}
}

// WithMetrics attaches an engine metrics collector
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// DefaultOptions returns the default store options
func DefaultOptions() *Options {
	return &Options{
		MaxSize:       100,
		TTLConfig:     ttl.DefaultConfig(),
		SweepInterval: time.Minute,
	}
}
