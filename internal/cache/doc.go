// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package cache caches encoded recommendation responses.
//
// Three backends implement Cache:
//
//   - Memory: an in-process LRU with TTL (LRU), for single instances
//   - Redis: shared across instances via redis/go-redis
//   - Nop: caching disabled
//
// Keys are built with Key from the user, model, limit and filter of a
// request. Every key of a user is tracked so that InvalidateUser can drop
// them when the user's wishlist, bookings or reviews change.
//
// Lookups are counted in propsight_response_cache_total by backend and
// result. Backend errors are logged by callers and treated as misses; a
// broken cache never fails a request.
package cache
