// Package config defines process configuration and loading.
//
// Conventions:
// - Defaults come from New; file and env values layer on top.
// - External errors are wrapped via this package's sentinels.
package config

import "runtime"

// Config contains process configuration for a batch calibration run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Inputs are file paths or glob patterns of recordings to process.
	Inputs []string `koanf:"inputs"`

	// OutputDir receives calibrated tables and their JSON sidecars.
	OutputDir string `koanf:"output_dir"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// WorkerCount sets the number of concurrent calibration workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the duplicate-input cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SamplingRate in Hz; zero infers the rate from each file's timestamps.
	SamplingRate float64 `koanf:"sampling_rate"`

	// Calibration policy knobs; zero values fall back to the
	// calibrator's defaults.
	SphereCriterion    float64 `koanf:"sphere_criterion"`
	MinHours           int     `koanf:"min_hours"`
	StillCriterion     float64 `koanf:"still_sd_criterion"`
	MaxIterations      int     `koanf:"max_iterations"`
	Tolerance          float64 `koanf:"tolerance"`
	StatsWindowSeconds float64 `koanf:"stats_window_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		OutputDir:   "out",
		WorkerCount: runtime.NumCPU(),
		QueueSize:   1024,
		DedupeSize:  50_000,
	}
}
