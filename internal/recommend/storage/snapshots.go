// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Key layout
const (
	snapshotKeyPrefix = "matrix:v"
	latestKey         = "matrix:latest"
)

// DefaultKeepVersions is the number of snapshots retained after a save.
const DefaultKeepVersions = 3

// ErrChecksumMismatch is returned when a stored snapshot fails verification.
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// SnapshotMetadata describes a stored matrix.
type SnapshotMetadata struct {
	// Version is the matrix build number.
	Version int64 `json:"version"`

	// BuiltAt is when the matrix was built.
	BuiltAt time.Time `json:"built_at"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	Users    int `json:"users"`
	Listings int `json:"listings"`
	Cells    int `json:"cells"`

	// Checksum is the SHA-256 of the uncompressed cell list.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`
}

// snapshotRecord is the stored value.
type snapshotRecord struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Data     []byte           `json:"data"`
}

// SnapshotStore implements recommend.MatrixSnapshotStore on BadgerDB.
type SnapshotStore struct {
	db    *badger.DB
	keep  int
	owned bool
}

var _ recommend.MatrixSnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store. keep below 1 uses DefaultKeepVersions.
func NewSnapshotStore(db *badger.DB, keep int) *SnapshotStore {
	if keep < 1 {
		keep = DefaultKeepVersions
	}
	return &SnapshotStore{db: db, keep: keep}
}

// SaveMatrix writes a snapshot, marks it latest and prunes old versions.
func (s *SnapshotStore) SaveMatrix(ctx context.Context, m *recommend.InteractionMatrix) error {
	if m == nil {
		return errors.New("nil matrix")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(m.Entries())
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress matrix: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	rec := snapshotRecord{
		Metadata: SnapshotMetadata{
			Version:   m.Version(),
			BuiltAt:   m.BuiltAt(),
			SavedAt:   time.Now(),
			Users:     m.Users(),
			Listings:  m.Listings(),
			Cells:     m.Len(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		Data: compressed.Bytes(),
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(snapshotKey(m.Version()), value); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		if err := txn.Set([]byte(latestKey), []byte(strconv.FormatInt(m.Version(), 10))); err != nil {
			return fmt.Errorf("set latest: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.Prune(ctx)
}

// LoadMatrix returns the latest snapshot, or nil when none was saved.
func (s *SnapshotStore) LoadMatrix(ctx context.Context) (*recommend.InteractionMatrix, error) {
	version, ok, err := s.latestVersion()
	if err != nil || !ok {
		return nil, err
	}
	return s.LoadVersion(ctx, version)
}

// LoadVersion returns a specific snapshot, or nil when it does not exist.
func (s *SnapshotStore) LoadVersion(ctx context.Context, version int64) (*recommend.InteractionMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec snapshotRecord
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	gzr, err := gzip.NewReader(bytes.NewReader(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != rec.Metadata.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, rec.Metadata.Checksum, checksum)
	}

	var entries []recommend.MatrixEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return recommend.NewMatrixFromEntries(entries, rec.Metadata.Version, rec.Metadata.BuiltAt), nil
}

// List returns the metadata of every stored snapshot, oldest first.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotMetadata, error) {
	var out []SnapshotMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec snapshotRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			out = append(out, rec.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Prune deletes all but the newest keep snapshots.
func (s *SnapshotStore) Prune(ctx context.Context) error {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(keys) <= s.keep {
		return nil
	}

	// Keys sort by version thanks to the zero padding.
	stale := keys[:len(keys)-s.keep]
	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range stale {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("delete snapshot: %w", err)
			}
		}
		return nil
	})
}

func (s *SnapshotStore) latestVersion() (version int64, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(latestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get latest: %w", err)
		}
		return item.Value(func(val []byte) error {
			v, perr := strconv.ParseInt(string(val), 10, 64)
			if perr != nil {
				return fmt.Errorf("parse latest version: %w", perr)
			}
			version, ok = v, true
			return nil
		})
	})
	return version, ok, err
}

func snapshotKey(version int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", snapshotKeyPrefix, version))
}
