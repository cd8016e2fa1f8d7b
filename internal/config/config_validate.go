// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/propsight/internal/logging"
)

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateRecommend,
		c.validateCache,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return errors.New("DUCKDB_PATH is required")
	}
	if c.Database.CandidatePoolSize < 1 {
		return fmt.Errorf("CANDIDATE_POOL_SIZE must be positive, got %d", c.Database.CandidatePoolSize)
	}
	if c.Database.QueryTimeout <= 0 {
		return errors.New("DUCKDB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if _, err := c.Recommend.EngineConfig(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Recommend.MatrixRefreshInterval <= 0 {
		return errors.New("RECOMMEND_MATRIX_REFRESH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendNone:
		return nil
	case CacheBackendMemory:
		if c.Cache.MaxEntries < 1 {
			return errors.New("CACHE_MAX_ENTRIES must be positive for the memory cache")
		}
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be none, memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case EventsBackendGoChannel:
	case EventsBackendNATS:
		if c.Events.Embedded {
			if c.Events.EmbeddedStoreDir == "" {
				return errors.New("NATS_STORE_DIR is required for the embedded NATS server")
			}
			break
		}
		if !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
			return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.Events.NATSURL)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return errors.New("EVENTS_TOPIC is required when events are enabled")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
		}
		if c.Security.JWTSecret != "" {
			logging.Warn().Int("length", len(c.Security.JWTSecret)).Msg("JWT_SECRET is shorter than recommended")
		}
	}
	if c.Security.TokenTTL <= 0 {
		return errors.New("JWT_TOKEN_TTL must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return errors.New("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return errors.New("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
