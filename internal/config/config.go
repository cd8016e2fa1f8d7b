// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // ":memory:" for an in-memory database
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// CandidatePoolSize bounds the listings loaded per request, newest first.
	CandidatePoolSize int `koanf:"candidate_pool_size"`

	QueryTimeout time.Duration `koanf:"query_timeout"`

	// SeedFile is a JSON fixture loaded into an empty database at startup.
	SeedFile string `koanf:"seed_file"`
}

// RecommendConfig selects the engine tier and service-level knobs.
type RecommendConfig struct {
	Tier               string        `koanf:"tier"` // basic, advanced or enhanced
	DefaultLimit       int           `koanf:"default_limit"`
	MaxLimit           int           `koanf:"max_limit"`
	DataDrivenClusters bool          `koanf:"data_driven_clusters"`
	ScorerTimeout      time.Duration `koanf:"scorer_timeout"`

	// MatrixRefreshInterval is how often the interaction matrix is rebuilt.
	MatrixRefreshInterval time.Duration `koanf:"matrix_refresh_interval"`

	// SnapshotPath is the BadgerDB directory for matrix snapshots.
	// Empty disables snapshots.
	SnapshotPath string `koanf:"snapshot_path"`
	SnapshotKeep int    `koanf:"snapshot_keep"`
}

// EngineConfig builds the engine configuration for the selected tier with
// the service overrides applied.
func (r RecommendConfig) EngineConfig() (*recommend.Config, error) {
	cfg, err := recommend.ConfigForTier(recommend.Tier(r.Tier))
	if err != nil {
		return nil, err
	}
	if r.DefaultLimit > 0 {
		cfg.DefaultLimit = r.DefaultLimit
	}
	if r.MaxLimit > 0 {
		cfg.MaxLimit = r.MaxLimit
	}
	if r.ScorerTimeout > 0 {
		cfg.ScorerTimeout = r.ScorerTimeout
	}
	cfg.DataDrivenClusters = r.DataDrivenClusters
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Cache backends.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Backend    string        `koanf:"backend"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`
}

// Event backends.
const (
	EventsBackendGoChannel = "gochannel"
	EventsBackendNATS      = "nats"
)

// EventsConfig holds Watermill publisher settings.
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Backend       string        `koanf:"backend"`
	NATSURL       string        `koanf:"nats_url"`
	Topic         string        `koanf:"topic"`
	QueueGroup    string        `koanf:"queue_group"`
	PublishBuffer int           `koanf:"publish_buffer"`
	CloseTimeout  time.Duration `koanf:"close_timeout"`

	// Embedded starts an in-process NATS JetStream server and points
	// NATSURL at it. Only used with the nats backend.
	Embedded         bool   `koanf:"embedded"`
	EmbeddedPort     int    `koanf:"embedded_port"` // -1 picks a free port
	EmbeddedStoreDir string `koanf:"embedded_store_dir"`
}

// SecurityConfig holds authentication and HTTP protection settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
