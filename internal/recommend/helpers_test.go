// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// testLogger returns a no-op logger for tests.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

var testNow = time.Date(2026, time.November, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func fullAmenities() Amenities {
	return Amenities{
		Furnished: true, Parking: true, Gym: true, Pool: true,
		Garden: true, Security: true, Lift: true, PowerBackup: true,
	}
}

func testListings() []Listing {
	return []Listing{
		{ID: "a", Price: 1_550_000, Area: 1000, City: "Mumbai", Type: "apartment", Amenities: fullAmenities(), WishlistCount: 4, ViewCount: 200, CreatedAt: testNow.AddDate(0, 0, -10)},
		{ID: "b", Price: 5_000_000, Area: 2000, City: "Smalltown", Type: "villa", ViewCount: 10},
		{ID: "c", Price: 900_000, Area: 0, City: "Delhi", Type: "apartment", BookingCount: 2, CreatedAt: testNow.AddDate(0, -2, 0)},
		{ID: "d", Price: 2_500_000, Area: 1200, City: "Pune", Type: "apartment", WishlistCount: 10, BookingCount: 5, ViewCount: 500},
	}
}

// mockInteractionStore implements InteractionStore for testing.
type mockInteractionStore struct {
	wishlist map[string][]Listing
	booked   map[string][]Listing
	reviewed map[string][]Listing
	chats    map[string]int
	err      error
}

func (m *mockInteractionStore) WishlistListings(_ context.Context, userID string) ([]Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.wishlist[userID], nil
}

func (m *mockInteractionStore) BookedListings(_ context.Context, userID string) ([]Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booked[userID], nil
}

func (m *mockInteractionStore) ReviewedListings(_ context.Context, userID string) ([]Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reviewed[userID], nil
}

func (m *mockInteractionStore) ChatMessageCount(_ context.Context, userID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.chats[userID], nil
}
