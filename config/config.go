// Package config defines StreamSpot's startup configuration and loads it
// from defaults, an optional YAML file, and environment variables, in
// that order of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"streamspot/streamerr"
)

// Config is the full set of startup parameters (spec §6).
type Config struct {
	App     AppConfig     `koanf:"app"`
	Stream  StreamConfig  `koanf:"stream"`
	Cache   CacheConfig   `koanf:"cache"`
	Input   InputConfig   `koanf:"input"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// AppConfig names the running process for logs and metrics.
type AppConfig struct {
	Name string `koanf:"name"`
}

// StreamConfig holds the hash-family and clustering parameters of spec §6.
type StreamConfig struct {
	L                         int    `koanf:"l"`                             // sketch width; must equal B*R
	B                         int    `koanf:"b"`                             // band count (LSH collaborator only)
	R                         int    `koanf:"r"`                             // bits per band (LSH collaborator only)
	C                         int    `koanf:"c"`                             // shingle chunk length; C >= 4
	Seed                      uint64 `koanf:"seed"`                          // PRNG seed for the hash family
	SnapshotInterval          int    `koanf:"snapshot_interval"`             // edges between cluster snapshots, 0 disables
	ClassifyUnseenOnFirstEdge bool   `koanf:"classify_unseen_on_first_edge"` // if false, a graph's first-ever classification never writes ANOMALY (spec's deployment policy knob)
}

// CacheConfig configures the optional bounded edge cache (spec §4.7).
type CacheConfig struct {
	Capacity int `koanf:"capacity"` // W; 0 disables the cache
}

// InputConfig names the edge stream and bootstrap cluster file, and the
// bad-input policy applied while reading them (spec §7, §6).
type InputConfig struct {
	EdgesPath      string `koanf:"edges_path"`      // "" or "-" means stdin
	BootstrapPath  string `koanf:"bootstrap_path"`  // bootstrap clusters file (spec §6)
	BadInputPolicy string `koanf:"bad_input_policy"` // "fatal" or "skip"
}

// LogConfig mirrors the ambient logging shape (package logging).
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`     // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	Path    string `koanf:"path"`
}

// Validate checks the parameter constraints of spec §6/§7, returning the
// first violation found wrapped with the offending field:
// streamerr.ErrInvariantViolated when L != B*R, and
// streamerr.ErrParameterOutOfRange for every other violation.
func (c *Config) Validate() error {
	s := c.Stream
	if s.C < 4 {
		return fmt.Errorf("stream.c = %d: %w", s.C, streamerr.ErrParameterOutOfRange)
	}
	if s.L != s.B*s.R {
		return fmt.Errorf("stream.l (%d) != stream.b*stream.r (%d*%d): %w", s.L, s.B, s.R, streamerr.ErrInvariantViolated)
	}
	if s.L <= 0 {
		return fmt.Errorf("stream.l = %d: %w", s.L, streamerr.ErrParameterOutOfRange)
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity = %d: %w", c.Cache.Capacity, streamerr.ErrParameterOutOfRange)
	}

	switch strings.ToLower(c.Input.BadInputPolicy) {
	case "fatal", "skip":
	default:
		return fmt.Errorf("input.bad_input_policy = %q, want fatal or skip: %w", c.Input.BadInputPolicy, streamerr.ErrParameterOutOfRange)
	}

	return nil
}

// CacheEnabled reports whether the bounded edge cache (spec §4.7) should
// be constructed.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Capacity > 0
}
