// Package timeouts centralizes the context deadlines used around
// repository and object-storage calls so they stay consistent across
// handlers and easy to tune in one place.
//
// Picking a value:
//   - Ping: connectivity checks (health endpoint)
//   - Medium: reads, list queries, and relation expansion
//   - Long: writes that depend on external services (photo upload)
package timeouts

import (
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	medium = DefaultMedium
	long   = DefaultLong
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Medium returns the timeout for reads, list queries, and multi-step
// reads.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for writes that touch external services.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Config holds override values; zero fields keep the current setting.
type Config struct {
	Ping   time.Duration
	Medium time.Duration
	Long   time.Duration
}

// Configure applies overrides. Call during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
}

// Reset restores defaults. Useful in tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	medium = DefaultMedium
	long = DefaultLong
}
