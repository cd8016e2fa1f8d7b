// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/config"
)

// Cache stores encoded responses.
type Cache interface {
	// Get returns the cached value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under a key belonging to userID.
	Set(ctx context.Context, userID, key string, value []byte) error

	// InvalidateUser drops every key stored for userID.
	InvalidateUser(ctx context.Context, userID string) error

	// Backend returns the backend name used in metrics.
	Backend() string

	Close() error
}

// Key builds the cache key of a recommendation request. Components are
// escaped so that distinct requests never share a key.
func Key(userID, model string, limit int, filter string) string {
	return strings.Join([]string{
		url.QueryEscape(userID),
		url.QueryEscape(model),
		strconv.Itoa(limit),
		url.QueryEscape(filter),
	}, "|")
}

// userPrefix is the key prefix shared by every key of a user.
func userPrefix(userID string) string {
	return url.QueryEscape(userID) + "|"
}

// New creates the cache selected by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg *config.CacheConfig, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendNone, "":
		return Nop{}, nil
	case config.CacheBackendMemory:
		return NewMemory(cfg.MaxEntries, cfg.TTL), nil
	case config.CacheBackendRedis:
		c, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Redis response cache connected")
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop is a Cache that stores nothing.
type Nop struct{}

var _ Cache = Nop{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Nop) Set(context.Context, string, string, []byte) error { return nil }

// InvalidateUser does nothing.
func (Nop) InvalidateUser(context.Context, string) error { return nil }

// Backend returns "none".
func (Nop) Backend() string { return config.CacheBackendNone }

// Close does nothing.
func (Nop) Close() error { return nil }
