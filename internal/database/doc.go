// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package database provides the DuckDB-backed listing and interaction store.

It implements the data-access side of the recommendation flow:

  - recommend.InteractionStore: a user's wishlist, booking and review
    history plus their chat message count, used to build profiles
  - recommend.InteractionLoader: every wishlist and booking, used to build
    the interaction matrix
  - the candidate pool: the newest listings not already in the user's
    wishlist, bounded by DatabaseConfig.CandidatePoolSize
  - the trending pool for anonymous callers

Tables:

  - listings: one row per listing, amenity flags flattened into columns and
    denormalized view/wishlist/booking/review counters
  - wishlists: saved listings, one row per (user, listing)
  - bookings, reviews, chat_messages: append-only interaction logs

Every query runs through a circuit breaker (sony/gobreaker) and records
its latency in the propsight_db_query_duration_seconds histogram. A query
that finds nothing returns ErrNotFound, which does not count as a breaker
failure.

Queries without a deadline get DatabaseConfig.QueryTimeout.

Example:

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	pool, err := db.CandidatePool(ctx, userID, cfg.Database.CandidatePoolSize)
*/
package database
