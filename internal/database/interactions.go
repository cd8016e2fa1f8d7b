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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Booking is a stored booking.
type Booking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	ListingID string    `json:"listing_id" validate:"required"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a stored review.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	ListingID string    `json:"listing_id" validate:"required"`
	Rating    float64   `json:"rating" validate:"gte=0,lte=5"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage records that a user sent a chat message about a listing.
// Message bodies are not stored.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistEntry is a saved listing.
type WishlistEntry struct {
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

func timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// inTx runs fn in a transaction under the breaker.
func (db *DB) inTx(ctx context.Context, operation string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	_, err := execute(ctx, db, operation, func(ctx context.Context) (struct{}, error) {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("%s: begin: %w", operation, err)
		}
		defer rollbackQuietly(tx)

		if err := fn(ctx, tx); err != nil {
			return struct{}{}, err
		}
		if err := tx.Commit(); err != nil {
			return struct{}{}, fmt.Errorf("%s: commit: %w", operation, err)
		}
		return struct{}{}, nil
	})
	return err
}

// ensureListing returns ErrNotFound when the listing does not exist.
func ensureListing(ctx context.Context, tx *sql.Tx, listingID string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM listings WHERE id = ?", listingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	return err
}

// AddWishlist saves a listing for a user. It reports whether the listing was
// newly added; saving it twice is a no-op.
func (db *DB) AddWishlist(ctx context.Context, e WishlistEntry) (bool, error) {
	added := false
	err := db.inTx(ctx, "add_wishlist", func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureListing(ctx, tx, e.ListingID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO wishlists (user_id, listing_id, created_at) VALUES (?, ?, ?)",
			e.UserID, e.ListingID, timestampOrNow(e.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert wishlist: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert wishlist: %w", err)
		}
		if n == 0 {
			return nil
		}
		added = true
		if _, err := tx.ExecContext(ctx,
			"UPDATE listings SET wishlist_count = wishlist_count + 1 WHERE id = ?", e.ListingID); err != nil {
			return fmt.Errorf("update wishlist count: %w", err)
		}
		return nil
	})
	return added, err
}

// RemoveWishlist removes a saved listing. It reports whether it was saved.
func (db *DB) RemoveWishlist(ctx context.Context, userID, listingID string) (bool, error) {
	removed := false
	err := db.inTx(ctx, "remove_wishlist", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM wishlists WHERE user_id = ? AND listing_id = ?", userID, listingID)
		if err != nil {
			return fmt.Errorf("delete wishlist: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete wishlist: %w", err)
		}
		if n == 0 {
			return nil
		}
		removed = true
		if _, err := tx.ExecContext(ctx,
			"UPDATE listings SET wishlist_count = GREATEST(wishlist_count - 1, 0) WHERE id = ?", listingID); err != nil {
			return fmt.Errorf("update wishlist count: %w", err)
		}
		return nil
	})
	return removed, err
}

// AddBooking stores a booking and returns it with its id and timestamp set.
func (db *DB) AddBooking(ctx context.Context, b Booking) (Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = "confirmed"
	}
	b.CreatedAt = timestampOrNow(b.CreatedAt)

	err := db.inTx(ctx, "add_booking", func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureListing(ctx, tx, b.ListingID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bookings (id, user_id, listing_id, status, created_at) VALUES (?, ?, ?, ?, ?)",
			b.ID, b.UserID, b.ListingID, b.Status, b.CreatedAt); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE listings SET booking_count = booking_count + 1 WHERE id = ?", b.ListingID); err != nil {
			return fmt.Errorf("update booking count: %w", err)
		}
		return nil
	})
	return b, err
}

// AddReview stores a review and folds its rating into the listing average.
func (db *DB) AddReview(ctx context.Context, r Review) (Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = timestampOrNow(r.CreatedAt)

	err := db.inTx(ctx, "add_review", func(ctx context.Context, tx *sql.Tx) error {
		if err := ensureListing(ctx, tx, r.ListingID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reviews (id, user_id, listing_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			r.ID, r.UserID, r.ListingID, r.Rating, r.Comment, r.CreatedAt); err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE listings
			SET rating = (rating * review_count + ?) / (review_count + 1),
			    review_count = review_count + 1
			WHERE id = ?`, r.Rating, r.ListingID); err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		return nil
	})
	return r, err
}

// AddChatMessage records a chat message.
func (db *DB) AddChatMessage(ctx context.Context, m ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := execute(ctx, db, "add_chat_message", func(ctx context.Context) (struct{}, error) {
		if _, err := db.conn.ExecContext(ctx,
			"INSERT INTO chat_messages (id, user_id, listing_id, created_at) VALUES (?, ?, ?, ?)",
			m.ID, m.UserID, m.ListingID, timestampOrNow(m.CreatedAt)); err != nil {
			return struct{}{}, fmt.Errorf("insert chat message: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

// WishlistIDs returns the ids of the user's saved listings, sorted.
func (db *DB) WishlistIDs(ctx context.Context, userID string) ([]string, error) {
	return execute(ctx, db, "wishlist_ids", func(ctx context.Context) ([]string, error) {
		rows, err := db.conn.QueryContext(ctx,
			"SELECT listing_id FROM wishlists WHERE user_id = ? ORDER BY listing_id", userID)
		if err != nil {
			return nil, fmt.Errorf("wishlist ids: %w", err)
		}
		defer closeWithLog(rows, "wishlist rows")

		ids := []string{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("scan wishlist id: %w", err)
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	})
}

// WishlistListings returns the listings the user saved, oldest save first.
func (db *DB) WishlistListings(ctx context.Context, userID string) ([]recommend.Listing, error) {
	return db.queryListings(ctx, "wishlist_listings", `SELECT `+listingColumns+`
		FROM wishlists w JOIN listings l ON l.id = w.listing_id
		WHERE w.user_id = ?
		ORDER BY w.created_at, l.id`, userID)
}

// BookedListings returns one listing per booking, oldest first.
func (db *DB) BookedListings(ctx context.Context, userID string) ([]recommend.Listing, error) {
	return db.queryListings(ctx, "booked_listings", `SELECT `+listingColumns+`
		FROM bookings b JOIN listings l ON l.id = b.listing_id
		WHERE b.user_id = ?
		ORDER BY b.created_at, b.id`, userID)
}

// ReviewedListings returns one listing per review, oldest first.
func (db *DB) ReviewedListings(ctx context.Context, userID string) ([]recommend.Listing, error) {
	return db.queryListings(ctx, "reviewed_listings", `SELECT `+listingColumns+`
		FROM reviews r JOIN listings l ON l.id = r.listing_id
		WHERE r.user_id = ?
		ORDER BY r.created_at, r.id`, userID)
}

// ChatMessageCount returns how many chat messages the user has sent.
func (db *DB) ChatMessageCount(ctx context.Context, userID string) (int, error) {
	return execute(ctx, db, "chat_message_count", func(ctx context.Context) (int, error) {
		var n int
		if err := db.conn.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM chat_messages WHERE user_id = ?", userID).Scan(&n); err != nil {
			return 0, fmt.Errorf("count chat messages: %w", err)
		}
		return n, nil
	})
}

// AllInteractions returns every wishlist and booking, ordered by user,
// listing and time.
func (db *DB) AllInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	return execute(ctx, db, "all_interactions", func(ctx context.Context) ([]recommend.Interaction, error) {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT user_id, listing_id, kind, created_at FROM (
				SELECT user_id, listing_id, 'wishlist' AS kind, created_at FROM wishlists
				UNION ALL
				SELECT user_id, listing_id, 'booking' AS kind, created_at FROM bookings
			)
			ORDER BY user_id, listing_id, created_at, kind`)
		if err != nil {
			return nil, fmt.Errorf("all interactions: %w", err)
		}
		defer closeWithLog(rows, "interaction rows")

		out := []recommend.Interaction{}
		for rows.Next() {
			var in recommend.Interaction
			if err := rows.Scan(&in.UserID, &in.ListingID, &in.Kind, &in.CreatedAt); err != nil {
				return nil, fmt.Errorf("scan interaction: %w", err)
			}
			out = append(out, in)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate interactions: %w", err)
		}
		return out, nil
	})
}
