// Package ttl provides time-to-live handling for cache entries: validation,
// normalization against configured bounds, and expiry checks.
package ttl

import "time"

// Config represents configuration for TTL behavior
type Config struct {
	// DefaultTTL is applied by callers that do not carry their own TTL choice
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL value; longer TTLs are clamped
	MaxTTL time.Duration
}

// DefaultConfig returns the default TTL configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     24 * time.Hour,
	}
}

// Normalize clamps a TTL value to the configured bounds. A non-positive TTL is
// returned unchanged: it denotes an entry that is already expired, not an
// invalid input.
func Normalize(ttl time.Duration, config Config) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	if config.MaxTTL > 0 && ttl > config.MaxTTL {
		return config.MaxTTL
	}
	return ttl
}

// ExpirationTime calculates the expiration time for a TTL value. A
// non-positive TTL yields a time that has already passed, so the entry is
// absent on the very next read.
func ExpirationTime(ttl time.Duration, config Config) time.Time {
	now := time.Now()
	if ttl <= 0 {
		return now
	}
	return now.Add(Normalize(ttl, config))
}

// IsExpired reports whether the given expiration time has passed.
// Expiry is inclusive: an entry whose expiration equals the current instant is
// already expired.
func IsExpired(expirationTime time.Time) bool {
	return !time.Now().Before(expirationTime)
}
