// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package cache

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/metrics"
)

// Memory is an in-process Cache backed by an LRU.
type Memory struct {
	lru *LRU[[]byte]
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a memory cache.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	return &Memory{lru: NewLRU[[]byte](maxEntries, ttl)}
}

// Get returns a cached value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	if ok {
		metrics.RecordCacheLookup(config.CacheBackendMemory, "hit")
	} else {
		metrics.RecordCacheLookup(config.CacheBackendMemory, "miss")
	}
	return v, ok, nil
}

// Set stores a value. The key must start with the user's prefix, which Key
// guarantees.
func (m *Memory) Set(_ context.Context, _, key string, value []byte) error {
	m.lru.Set(key, value)
	return nil
}

// InvalidateUser drops the user's keys.
func (m *Memory) InvalidateUser(_ context.Context, userID string) error {
	prefix := userPrefix(userID)
	m.lru.DeleteFunc(func(key string) bool { return strings.HasPrefix(key, prefix) })
	return nil
}

// Backend returns "memory".
func (m *Memory) Backend() string { return config.CacheBackendMemory }

// Len returns the number of cached entries.
func (m *Memory) Len() int { return m.lru.Len() }

// CleanupExpired drops expired entries and returns how many were removed.
// Expired entries are otherwise only dropped when read or evicted.
func (m *Memory) CleanupExpired() int { return m.lru.CleanupExpired() }

// Close clears the cache.
func (m *Memory) Close() error {
	m.lru.Clear()
	return nil
}
