package config

import "time"

// CacheConfig controls the Redis response cache wrapped around the
// public catalog GET endpoints.  Caching is skipped entirely when
// Enabled is false or no Redis client is available.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads cache settings from the environment.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 60*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "cache"),
	}
}
