// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propsight/internal/recommend"
)

// listingColumns is the select list matching scanListing.
const listingColumns = `l.id, l.title, l.description, l.price, l.discount_price, l.offer,
	l.bedrooms, l.bathrooms, l.area, l.type, l.city, l.state,
	l.furnished, l.parking, l.gym, l.pool, l.garden, l.security, l.lift, l.power_backup,
	l.property_age, l.view_count, l.wishlist_count, l.booking_count,
	l.rating, l.review_count, l.images, l.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (recommend.Listing, error) {
	var (
		l      recommend.Listing
		images string
	)
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Price, &l.DiscountPrice, &l.Offer,
		&l.Bedrooms, &l.Bathrooms, &l.Area, &l.Type, &l.City, &l.State,
		&l.Amenities.Furnished, &l.Amenities.Parking, &l.Amenities.Gym, &l.Amenities.Pool,
		&l.Amenities.Garden, &l.Amenities.Security, &l.Amenities.Lift, &l.Amenities.PowerBackup,
		&l.PropertyAge, &l.ViewCount, &l.WishlistCount, &l.BookingCount,
		&l.Rating, &l.ReviewCount, &images, &l.CreatedAt,
	)
	if err != nil {
		return l, err
	}
	if images != "" && images != "[]" {
		if err := json.Unmarshal([]byte(images), &l.Images); err != nil {
			return l, fmt.Errorf("decode images of listing %s: %w", l.ID, err)
		}
	}
	return l, nil
}

func scanListings(rows *sql.Rows) ([]recommend.Listing, error) {
	defer closeWithLog(rows, "listing rows")

	out := []recommend.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

// queryListings runs a listing query under the breaker.
func (db *DB) queryListings(ctx context.Context, operation, query string, args ...any) ([]recommend.Listing, error) {
	return execute(ctx, db, operation, func(ctx context.Context) ([]recommend.Listing, error) {
		rows, err := db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		return scanListings(rows)
	})
}

// UpsertListing inserts a listing or replaces the stored one.
// A zero CreatedAt is stored as the current time.
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func (db *DB) UpsertListing(ctx context.Context, l recommend.Listing) error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("listing id is required")
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	images := "[]"
	if len(l.Images) > 0 {
		b, err := json.Marshal(l.Images)
		if err != nil {
			return fmt.Errorf("encode images: %w", err)
		}
		images = string(b)
	}

	_, err := execute(ctx, db, "upsert_listing", func(ctx context.Context) (struct{}, error) {
		_, err := db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO listings (
			id, title, description, price, discount_price, offer,
			bedrooms, bathrooms, area, type, city, state,
			furnished, parking, gym, pool, garden, security, lift, power_backup,
			property_age, view_count, wishlist_count, booking_count,
			rating, review_count, images, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Title, l.Description, l.Price, l.DiscountPrice, l.Offer,
			l.Bedrooms, l.Bathrooms, l.Area, l.Type, l.City, l.State,
			l.Amenities.Furnished, l.Amenities.Parking, l.Amenities.Gym, l.Amenities.Pool,
			l.Amenities.Garden, l.Amenities.Security, l.Amenities.Lift, l.Amenities.PowerBackup,
			l.PropertyAge, l.ViewCount, l.WishlistCount, l.BookingCount,
			l.Rating, l.ReviewCount, images, l.CreatedAt.UTC(),
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("upsert listing %s: %w", l.ID, err)
		}
		return struct{}{}, nil
	})
	return err
}

// GetListing returns one listing or ErrNotFound.
func (db *DB) GetListing(ctx context.Context, id string) (recommend.Listing, error) {
	return execute(ctx, db, "get_listing", func(ctx context.Context) (recommend.Listing, error) {
		row := db.conn.QueryRowContext(ctx, "SELECT "+listingColumns+" FROM listings l WHERE l.id = ?", id)
		l, err := scanListing(row)
		if errors.Is(err, sql.ErrNoRows) {
			return l, fmt.Errorf("listing %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return l, fmt.Errorf("get listing %s: %w", id, err)
		}
		return l, nil
	})
}

// RecordView increments a listing's view counter.
func (db *DB) RecordView(ctx context.Context, id string) error {
	_, err := execute(ctx, db, "record_view", func(ctx context.Context) (struct{}, error) {
		res, err := db.conn.ExecContext(ctx, "UPDATE listings SET view_count = view_count + 1 WHERE id = ?", id)
		if err != nil {
			return struct{}{}, fmt.Errorf("record view %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return struct{}{}, fmt.Errorf("listing %s: %w", id, ErrNotFound)
		}
		return struct{}{}, nil
	})
	return err
}

// CandidatePool returns up to limit of the newest listings, excluding those
// already in the user's wishlist. Ties on created_at are broken by id.
func (db *DB) CandidatePool(ctx context.Context, userID string, limit int) ([]recommend.Listing, error) {
	if limit <= 0 {
		limit = db.cfg.CandidatePoolSize
	}
	return db.queryListings(ctx, "candidate_pool", `SELECT `+listingColumns+`
		FROM listings l
		WHERE NOT EXISTS (
			SELECT 1 FROM wishlists w WHERE w.user_id = ? AND w.listing_id = l.id
		)
		ORDER BY l.created_at DESC, l.id
		LIMIT ?`, userID, limit)
}

// TrendingPool returns up to limit of the newest listings for anonymous
// callers.
func (db *DB) TrendingPool(ctx context.Context, limit int) ([]recommend.Listing, error) {
	if limit <= 0 {
		limit = db.cfg.CandidatePoolSize
	}
	return db.queryListings(ctx, "trending_pool", `SELECT `+listingColumns+`
		FROM listings l
		ORDER BY l.created_at DESC, l.id
		LIMIT ?`, limit)
}

// ListingCount returns the number of stored listings.
func (db *DB) ListingCount(ctx context.Context) (int, error) {
	return execute(ctx, db, "listing_count", func(ctx context.Context) (int, error) {
		var n int
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&n); err != nil {
			return 0, fmt.Errorf("count listings: %w", err)
		}
		return n, nil
	})
}
