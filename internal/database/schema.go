// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables and indexes if they do not exist.
// Timestamps are stored as UTC TIMESTAMP so that no ICU extension is needed.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		price DOUBLE NOT NULL DEFAULT 0,
		discount_price DOUBLE NOT NULL DEFAULT 0,
		offer BOOLEAN NOT NULL DEFAULT FALSE,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		area DOUBLE NOT NULL DEFAULT 0,
		type VARCHAR NOT NULL DEFAULT '',
		city VARCHAR NOT NULL DEFAULT '',
		state VARCHAR NOT NULL DEFAULT '',
		furnished BOOLEAN NOT NULL DEFAULT FALSE,
		parking BOOLEAN NOT NULL DEFAULT FALSE,
		gym BOOLEAN NOT NULL DEFAULT FALSE,
		pool BOOLEAN NOT NULL DEFAULT FALSE,
		garden BOOLEAN NOT NULL DEFAULT FALSE,
		security BOOLEAN NOT NULL DEFAULT FALSE,
		lift BOOLEAN NOT NULL DEFAULT FALSE,
		power_backup BOOLEAN NOT NULL DEFAULT FALSE,
		property_age INTEGER NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		wishlist_count INTEGER NOT NULL DEFAULT 0,
		booking_count INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		images VARCHAR NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wishlists (
		user_id VARCHAR NOT NULL,
		listing_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		listing_id VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT 'confirmed',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		listing_id VARCHAR NOT NULL,
		rating DOUBLE NOT NULL,
		comment VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL,
		listing_id VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id)`,
}
