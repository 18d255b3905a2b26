// Package policy provides eviction policies for bounded cache namespaces.
package policy

// Policy defines the interface for cache eviction policies
type Policy[K comparable] interface {
	// OnGet is called when a key is read from the cache
	OnGet(key K)

	// OnSet is called when a key is written to the cache
	OnSet(key K)

	// OnDelete is called when a key is removed from the cache
	OnDelete(key K)

	// OnClear is called when the cache is cleared
	OnClear()

	// Evict returns the next key to be evicted from the cache
	Evict() (K, bool)

	// Size returns the number of keys tracked by the policy
	Size() int

	// Capacity returns the maximum number of keys the policy can hold
	Capacity() int
}

// Options represents policy configuration options
type Options struct {
	// MaxSize is the maximum number of keys the policy can hold
	MaxSize int
}

// Option is a function that configures policy options
type Option func(*Options)

// WithMaxSize sets the maximum size of the policy
func WithMaxSize(size int) Option {
	return func(o *Options) {
		o.MaxSize = size
	}
}
