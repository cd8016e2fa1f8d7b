// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/propsight/internal/recommend"
)

// isolateEnv points config discovery at an empty directory for one test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "missing.env"))
	prev := DefaultConfigPaths
	DefaultConfigPaths = nil
	t.Cleanup(func() { DefaultConfigPaths = prev })
	return dir
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Recommend.Tier != string(recommend.TierAdvanced) {
		t.Errorf("Tier = %q, want advanced", cfg.Recommend.Tier)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.CandidatePoolSize != 500 {
		t.Errorf("CandidatePoolSize = %d, want 500", cfg.Database.CandidatePoolSize)
	}
	if cfg.Recommend.MatrixRefreshInterval != 15*time.Minute {
		t.Errorf("MatrixRefreshInterval = %v", cfg.Recommend.MatrixRefreshInterval)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolateEnv(t)

	yamlPath := filepath.Join(dir, "config.yaml")
	yamlBody := "server:\n  port: 9000\nrecommend:\n  tier: enhanced\ncache:\n  backend: none\n"
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, yamlPath)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECOMMEND_SCORER_TIMEOUT", "750ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, env should win over file", cfg.Server.Port)
	}
	if cfg.Recommend.Tier != "enhanced" {
		t.Errorf("Tier = %q, want enhanced from file", cfg.Recommend.Tier)
	}
	if cfg.Cache.Backend != CacheBackendNone {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.ScorerTimeout != 750*time.Millisecond {
		t.Errorf("ScorerTimeout = %v", cfg.Recommend.ScorerTimeout)
	}

	engine, err := cfg.Recommend.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if engine.Tier != recommend.TierEnhanced || engine.ScorerTimeout != 750*time.Millisecond {
		t.Errorf("engine config = %+v", engine)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolateEnv(t)

	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("LOG_LEVEL=debug\nCANDIDATE_POOL_SIZE=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DotEnvPathEnvVar, envPath)
	// godotenv sets these for the process; make sure t.Setenv restores them.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CANDIDATE_POOL_SIZE", "")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("CANDIDATE_POOL_SIZE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Database.CandidatePoolSize != 42 {
		t.Errorf("CandidatePoolSize = %d, want 42", cfg.Database.CandidatePoolSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "HTTP_PORT"},
		{name: "bad environment", mutate: func(c *Config) { c.Server.Environment = "qa" }, wantErr: "ENVIRONMENT"},
		{name: "no db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "DUCKDB_PATH"},
		{name: "unknown tier", mutate: func(c *Config) { c.Recommend.Tier = "premium" }, wantErr: "recommend"},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Backend = CacheBackendRedis }, wantErr: "REDIS_ADDR"},
		{name: "unknown cache", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: "CACHE_BACKEND"},
		{name: "bad nats url", mutate: func(c *Config) {
			c.Events.Backend = EventsBackendNATS
			c.Events.NATSURL = "http://x"
		}, wantErr: "NATS_URL"},
		{name: "embedded nats ignores url", mutate: func(c *Config) {
			c.Events.Backend = EventsBackendNATS
			c.Events.NATSURL = ""
			c.Events.Embedded = true
		}},
		{name: "embedded nats without store", mutate: func(c *Config) {
			c.Events.Backend = EventsBackendNATS
			c.Events.Embedded = true
			c.Events.EmbeddedStoreDir = ""
		}, wantErr: "NATS_STORE_DIR"},
		{name: "short secret in production", mutate: func(c *Config) {
			c.Server.Environment = "production"
			c.Security.JWTSecret = "short"
		}, wantErr: "JWT_SECRET"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "events disabled skips checks", mutate: func(c *Config) {
			c.Events.Enabled = false
			c.Events.Backend = "kafka"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	if got := envTransformFunc("REDIS_ADDR"); got != "cache.redis_addr" {
		t.Errorf("REDIS_ADDR -> %q", got)
	}
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("PATH -> %q, want skipped", got)
	}
}
