package config

import "time"

// TimeoutConfig holds the HTTP server timeouts. Queries themselves carry no
// deadline beyond the request context.
type TimeoutConfig struct {
	// ReadHeader bounds reading request headers. Default: 10s
	ReadHeader time.Duration

	// Idle bounds keep-alive connections between requests. Default: 120s
	Idle time.Duration

	// Shutdown is how long in-flight requests get to finish. Default: 30s
	Shutdown time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		ReadHeader: 10 * time.Second,
		Idle:       120 * time.Second,
		Shutdown:   30 * time.Second,
	}
}

// LoadTimeouts overlays environment settings on the defaults
func LoadTimeouts(loader *Loader) *TimeoutConfig {
	cfg := DefaultTimeoutConfig()
	cfg.ReadHeader = loader.Duration("http.read_header_timeout", cfg.ReadHeader)
	cfg.Idle = loader.Duration("http.idle_timeout", cfg.Idle)
	cfg.Shutdown = loader.Duration("http.shutdown_timeout", cfg.Shutdown)
	return cfg
}
