// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package testinfra starts real backing services in Docker for integration
// tests, using testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/cache/... ./internal/events/...
//
// Tests skip when Docker is unavailable. Containers are terminated through
// t.Cleanup.
//
//	func TestRedisRoundTrip(t *testing.T) {
//	    redis := testinfra.NewRedisContainer(t)
//	    c, err := cache.NewRedis(ctx, &config.CacheConfig{RedisAddr: redis.Addr, TTL: time.Minute})
//	    ...
//	}
package testinfra
