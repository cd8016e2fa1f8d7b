// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package storage persists interaction matrix snapshots in BadgerDB.
//
// Rebuilding the wishlist/booking matrix needs a full scan of the listing
// database, so the last built matrix is written to disk after every
// refresh and read back on startup. Requests served before the first
// refresh completes then still get collaborative scores.
//
// # Storage Format
//
// Each snapshot is stored under its own key:
//
//	matrix:v{version, zero padded}  ->  JSON(snapshotRecord)
//	matrix:latest                   ->  version
//
// The record holds SnapshotMetadata and the gzip-compressed JSON cell list.
// The SHA-256 checksum of the uncompressed cells is verified on load.
//
// # Usage
//
//	db, err := badger.Open(badger.DefaultOptions("/data/snapshots"))
//	store := storage.NewSnapshotStore(db, 3)
//	cache := recommend.NewMatrixCache(database, store, cfg.BookingWeight, logger)
//	if ok, err := cache.LoadSnapshot(ctx); err == nil && ok {
//		// serving from the persisted matrix
//	}
//
// # Thread Safety
//
// SnapshotStore relies on Badger transactions and is safe for concurrent use.
package storage
