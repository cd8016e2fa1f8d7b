// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package database

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/recommend"
)

// Fixture is the JSON seed format.
type Fixture struct {
	Listings     []recommend.Listing `json:"listings"`
	Wishlists    []WishlistEntry     `json:"wishlists"`
	Bookings     []Booking           `json:"bookings"`
	Reviews      []Review            `json:"reviews"`
	ChatMessages []ChatMessage       `json:"chat_messages"`
}

// SeedFromFile loads a JSON fixture into an empty database. It reports
// whether anything was loaded; a database that already holds listings is
// left untouched.
func (db *DB) SeedFromFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return false, fmt.Errorf("read seed file: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return false, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return db.Seed(ctx, &f)
}

// Seed loads a fixture into an empty database.
//
// Listing counters are taken from the fixture as-is. Interactions are
// inserted through the regular write paths, so they add to those counters.
func (db *DB) Seed(ctx context.Context, f *Fixture) (bool, error) {
	n, err := db.ListingCount(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logging.Info().Int("listings", n).Msg("Database already populated, skipping seed")
		return false, nil
	}

	for i := range f.Listings {
		if err := db.UpsertListing(ctx, f.Listings[i]); err != nil {
			return false, err
		}
	}
	for _, w := range f.Wishlists {
		if _, err := db.AddWishlist(ctx, w); err != nil {
			return false, fmt.Errorf("seed wishlist %s/%s: %w", w.UserID, w.ListingID, err)
		}
	}
	for _, b := range f.Bookings {
		if _, err := db.AddBooking(ctx, b); err != nil {
			return false, fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}
	for _, r := range f.Reviews {
		if _, err := db.AddReview(ctx, r); err != nil {
			return false, fmt.Errorf("seed review %s: %w", r.ID, err)
		}
	}
	for _, m := range f.ChatMessages {
		if err := db.AddChatMessage(ctx, m); err != nil {
			return false, fmt.Errorf("seed chat message %s: %w", m.ID, err)
		}
	}

	logging.Info().
		Int("listings", len(f.Listings)).
		Int("wishlists", len(f.Wishlists)).
		Int("bookings", len(f.Bookings)).
		Int("reviews", len(f.Reviews)).
		Int("chat_messages", len(f.ChatMessages)).
		Msg("Database seeded")
	return true, nil
}
