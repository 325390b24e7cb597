// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory keying request queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of keying workers.
	WorkerCount int `koanf:"worker_count"`

	// Epsilon is the frame tolerance under which two keyframe times
	// collapse into one key.
	Epsilon float64 `koanf:"epsilon"`

	// ForceVisualKeying makes every insertion behave as if VISUAL mode
	// was requested, mirroring the host user preference.
	ForceVisualKeying bool `koanf:"force_visual_keying"`

	// MaxCurvesPerQuery caps how many curves one inspect call returns.
	MaxCurvesPerQuery int `koanf:"max_curves_per_query"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		Epsilon:           0.01,
		ForceVisualKeying: false,
		MaxCurvesPerQuery: 100,
	}
}
