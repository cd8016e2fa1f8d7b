// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/propsight/internal/metrics"
)

// wishlistStrength is the interaction strength of a saved listing.
const wishlistStrength = 1.0

// MatrixEntry is one non-zero cell of the interaction matrix.
type MatrixEntry struct {
	UserID    string  `json:"u"`
	ListingID string  `json:"l"`
	Strength  float64 `json:"s"`
}

// InteractionMatrix is a sparse user x listing matrix of interaction
// strengths. It is immutable once built and safe for concurrent reads.
type InteractionMatrix struct {
	version     int64
	builtAt     time.Time
	rows        map[string]map[string]float64
	byListing   map[string][]string
	norms       map[string]float64
	maxStrength float64
	entries     int
}

// BuildMatrix builds a matrix from wishlist and booking interactions.
// Other interaction kinds are ignored. Repeated interactions add up.
func BuildMatrix(interactions []Interaction, bookingWeight float64, version int64, builtAt time.Time) *InteractionMatrix {
	entries := make([]MatrixEntry, 0, len(interactions))
	for _, in := range interactions {
		var strength float64
		switch in.Kind {
		case InteractionWishlist:
			strength = wishlistStrength
		case InteractionBooking:
			strength = bookingWeight
		default:
			continue
		}
		entries = append(entries, MatrixEntry{UserID: in.UserID, ListingID: in.ListingID, Strength: strength})
	}
	return NewMatrixFromEntries(entries, version, builtAt)
}

// NewMatrixFromEntries builds a matrix from cells. Cells for the same user
// and listing add up.
func NewMatrixFromEntries(entries []MatrixEntry, version int64, builtAt time.Time) *InteractionMatrix {
	m := &InteractionMatrix{
		version:   version,
		builtAt:   builtAt,
		rows:      make(map[string]map[string]float64),
		byListing: make(map[string][]string),
		norms:     make(map[string]float64),
	}

	for _, e := range entries {
		if e.UserID == "" || e.ListingID == "" || e.Strength <= 0 {
			continue
		}
		row := m.rows[e.UserID]
		if row == nil {
			row = make(map[string]float64)
			m.rows[e.UserID] = row
		}
		if _, exists := row[e.ListingID]; !exists {
			m.byListing[e.ListingID] = append(m.byListing[e.ListingID], e.UserID)
			m.entries++
		}
		row[e.ListingID] += e.Strength
	}

	for user, row := range m.rows {
		values := make([]float64, 0, len(row))
		for _, v := range row {
			values = append(values, v)
			m.maxStrength = math.Max(m.maxStrength, v)
		}
		m.norms[user] = floats.Norm(values, 2)
	}
	for _, users := range m.byListing {
		sort.Strings(users)
	}

	return m
}

// Version returns the build number of the matrix.
func (m *InteractionMatrix) Version() int64 { return m.version }

// BuiltAt returns when the matrix was built.
func (m *InteractionMatrix) BuiltAt() time.Time { return m.builtAt }

// Users returns the number of users with at least one interaction.
func (m *InteractionMatrix) Users() int { return len(m.rows) }

// Listings returns the number of listings with at least one interaction.
func (m *InteractionMatrix) Listings() int { return len(m.byListing) }

// Len returns the number of non-zero cells.
func (m *InteractionMatrix) Len() int { return m.entries }

// MaxStrength returns the largest cell value.
func (m *InteractionMatrix) MaxStrength() float64 { return m.maxStrength }

// Strength returns the cell for user and listing.
func (m *InteractionMatrix) Strength(userID, listingID string) float64 {
	return m.rows[userID][listingID]
}

// Interactors returns the users who interacted with a listing, sorted.
// The returned slice must not be modified.
func (m *InteractionMatrix) Interactors(listingID string) []string {
	return m.byListing[listingID]
}

// Similarity returns the cosine similarity of two users' rows.
func (m *InteractionMatrix) Similarity(a, b string) float64 {
	rowA, rowB := m.rows[a], m.rows[b]
	if len(rowA) == 0 || len(rowB) == 0 {
		return 0
	}
	if len(rowB) < len(rowA) {
		rowA, rowB = rowB, rowA
	}

	keys := make([]string, 0, len(rowA))
	for k := range rowA {
		if _, ok := rowB[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	sort.Strings(keys)

	var dot float64
	for _, k := range keys {
		dot += rowA[k] * rowB[k]
	}
	denom := m.norms[a] * m.norms[b]
	if denom == 0 {
		return 0
	}
	return clamp01(dot / denom)
}

// Entries returns every cell, sorted by user then listing.
func (m *InteractionMatrix) Entries() []MatrixEntry {
	out := make([]MatrixEntry, 0, m.entries)
	for user, row := range m.rows {
		for listing, s := range row {
			out = append(out, MatrixEntry{UserID: user, ListingID: listing, Strength: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out
}

// MatrixSource supplies the current interaction matrix to scorers.
type MatrixSource interface {
	Matrix(ctx context.Context) (*InteractionMatrix, error)
}

// InteractionLoader reads every wishlist and booking interaction.
type InteractionLoader interface {
	AllInteractions(ctx context.Context) ([]Interaction, error)
}

// MatrixSnapshotStore persists matrices between restarts.
type MatrixSnapshotStore interface {
	SaveMatrix(ctx context.Context, m *InteractionMatrix) error
	LoadMatrix(ctx context.Context) (*InteractionMatrix, error)
}

// MatrixCache holds the current interaction matrix. The first reader builds
// it if nothing is loaded yet; afterwards it is replaced by Refresh, which
// a supervised service calls on a schedule. Concurrent builds are collapsed
// into one.
type MatrixCache struct {
	loader        InteractionLoader
	snapshots     MatrixSnapshotStore
	bookingWeight float64
	logger        zerolog.Logger

	current atomic.Pointer[InteractionMatrix]
	version atomic.Int64
	builds  singleflight.Group
}

// NewMatrixCache creates a cache. snapshots may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatrixCache(loader InteractionLoader, snapshots MatrixSnapshotStore, bookingWeight float64, logger zerolog.Logger) *MatrixCache {
	return &MatrixCache{
		loader:        loader,
		snapshots:     snapshots,
		bookingWeight: bookingWeight,
		logger:        logger.With().Str("component", "interaction_matrix").Logger(),
	}
}

// Matrix returns the current matrix, building it on first use.
func (c *MatrixCache) Matrix(ctx context.Context) (*InteractionMatrix, error) {
	if m := c.current.Load(); m != nil {
		return m, nil
	}
	return c.Refresh(ctx)
}

// Current returns the loaded matrix without building one. It may be nil.
func (c *MatrixCache) Current() *InteractionMatrix {
	return c.current.Load()
}

// Refresh rebuilds the matrix from the interaction loader and persists a
// snapshot when a snapshot store is configured.
func (c *MatrixCache) Refresh(ctx context.Context) (*InteractionMatrix, error) {
	v, err, _ := c.builds.Do("build", func() (interface{}, error) {
		return c.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*InteractionMatrix), nil
}

func (c *MatrixCache) rebuild(ctx context.Context) (*InteractionMatrix, error) {
	if c.loader == nil {
		return nil, ErrMatrixUnavailable
	}

	start := time.Now()
	interactions, err := c.loader.AllInteractions(ctx)
	if err != nil {
		metrics.MatrixRebuilds.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: load interactions: %v", ErrMatrixUnavailable, err)
	}

	m := BuildMatrix(interactions, c.bookingWeight, c.version.Add(1), time.Now())
	c.install(m)

	metrics.MatrixRebuilds.WithLabelValues("success").Inc()
	metrics.MatrixRebuildDuration.Observe(time.Since(start).Seconds())

	if c.snapshots != nil {
		if err := c.snapshots.SaveMatrix(ctx, m); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist matrix snapshot")
		}
	}

	c.logger.Info().
		Int64("version", m.Version()).
		Int("users", m.Users()).
		Int("listings", m.Listings()).
		Int("cells", m.Len()).
		Dur("duration", time.Since(start)).
		Msg("interaction matrix rebuilt")

	return m, nil
}

// LoadSnapshot installs the last persisted matrix, if any.
// It reports whether a snapshot was found.
func (c *MatrixCache) LoadSnapshot(ctx context.Context) (bool, error) {
	if c.snapshots == nil {
		return false, nil
	}
	m, err := c.snapshots.LoadMatrix(ctx)
	if err != nil {
		return false, fmt.Errorf("load matrix snapshot: %w", err)
	}
	if m == nil {
		return false, nil
	}

	for {
		cur := c.version.Load()
		if m.Version() <= cur || c.version.CompareAndSwap(cur, m.Version()) {
			break
		}
	}
	c.install(m)

	c.logger.Info().
		Int64("version", m.Version()).
		Time("built_at", m.BuiltAt()).
		Msg("loaded interaction matrix snapshot")
	return true, nil
}

func (c *MatrixCache) install(m *InteractionMatrix) {
	c.current.Store(m)
	metrics.MatrixUsers.Set(float64(m.Users()))
	metrics.MatrixListings.Set(float64(m.Listings()))
	metrics.MatrixVersion.Set(float64(m.Version()))
}
