// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/propsight/internal/logging"
)

// Open opens (or creates) a BadgerDB directory at path and returns a
// snapshot store that owns it. Call Close when done.
func Open(path string, keep int) (*SnapshotStore, error) {
	if path == "" {
		return nil, errors.New("snapshot path is required")
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	opts.Compression = options.Snappy
	opts.NumCompactors = 2
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := NewSnapshotStore(db, keep)
	s.owned = true

	logging.Info().
		Str("path", path).
		Int("keep", s.keep).
		Msg("matrix snapshot store opened")
	return s, nil
}

// Close closes the underlying database if the store opened it.
func (s *SnapshotStore) Close() error {
	if !s.owned {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
