// Package config defines service configuration and loading.
//
// Conventions:
// - Defaults come from New; file and env layers override them.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"runtime"

	"github.com/versuslab/versus/internal/domain/rating"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points to a YAML item catalog. Empty uses the
	// embedded default catalog.
	CatalogPath string `koanf:"catalog_path"`

	// StorePath points to the SQLite database file. Empty runs the
	// service on the in-memory store.
	StorePath string `koanf:"store_path"`

	// KFactor sets the rating sensitivity per vote.
	KFactor int `koanf:"k_factor"`

	// InitialRating seeds every item before its first vote.
	InitialRating int `koanf:"initial_rating"`

	// QueueSize bounds the in-memory audit queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of audit workers.
	WorkerCount int `koanf:"worker_count"`

	// SessionTTLMin expires idle sessions after this many minutes.
	SessionTTLMin int `koanf:"session_ttl_min"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		CatalogPath:     "",
		StorePath:       "",
		KFactor:         rating.DefaultKFactor,
		InitialRating:   rating.InitialRating,
		QueueSize:       4096,
		WorkerCount:     runtime.NumCPU() * 2,
		SessionTTLMin:   60,
		MaxRankingLimit: 100,
	}
}
