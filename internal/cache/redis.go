// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/metrics"
)

// redisClient is the subset of *redis.Client used by Redis.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// Redis is a Cache shared across instances.
//
// Each user has an index set listing their keys; the set expires with the
// newest of them.
type Redis struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg *config.CacheConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return newRedis(client, cfg.KeyPrefix, cfg.TTL), nil
}

func newRedis(client redisClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) dataKey(key string) string { return r.prefix + "data:" + key }

func (r *Redis) indexKey(userID string) string { return r.prefix + "user:" + userPrefix(userID) }

// Get returns a cached value.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(config.CacheBackendRedis, "miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCacheLookup(config.CacheBackendRedis, "error")
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	metrics.RecordCacheLookup(config.CacheBackendRedis, "hit")
	return val, true, nil
}

// Set stores a value and records the key in the user's index.
func (r *Redis) Set(ctx context.Context, userID, key string, value []byte) error {
	dk := r.dataKey(key)
	if err := r.client.Set(ctx, dk, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	idx := r.indexKey(userID)
	if err := r.client.SAdd(ctx, idx, dk).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	if err := r.client.Expire(ctx, idx, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}

// InvalidateUser deletes the user's keys and index.
func (r *Redis) InvalidateUser(ctx context.Context, userID string) error {
	idx := r.indexKey(userID)
	keys, err := r.client.SMembers(ctx, idx).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis smembers: %w", err)
	}
	keys = append(keys, idx)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Backend returns "redis".
func (r *Redis) Backend() string { return config.CacheBackendRedis }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }
