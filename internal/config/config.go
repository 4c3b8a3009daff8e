// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error sentinels.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory interaction queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of interaction workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the interaction deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRecommendationLimit caps GET /recommendations/{user_id}?limit.
	MaxRecommendationLimit int `koanf:"max_recommendation_limit"`

	// LearningRate is the single-step preference update rate in (0, 1].
	LearningRate float64 `koanf:"learning_rate"`

	// CacheTTL bounds how long a computed recommendation set stays fresh.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// MaxInteractionsPerUser caps the per-user interaction history.
	MaxInteractionsPerUser int `koanf:"max_interactions_per_user"`

	// BadgerDir is the on-disk store location. Ignored when
	// BadgerInMemory is set.
	BadgerDir string `koanf:"badger_dir"`

	// BadgerInMemory keeps the store in memory; nothing survives restarts.
	BadgerInMemory bool `koanf:"badger_in_memory"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		QueueSize:              100_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             500_000,
		MaxRecommendationLimit: 50,
		LearningRate:           0.1,
		CacheTTL:               30 * time.Minute,
		MaxInteractionsPerUser: 1000,
		BadgerDir:              "",
		BadgerInMemory:         true,
	}
}
