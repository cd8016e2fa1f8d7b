// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func testInteractions() []Interaction {
	return []Interaction{
		{UserID: "u1", ListingID: "L1", Kind: InteractionWishlist},
		{UserID: "u1", ListingID: "L2", Kind: InteractionWishlist},
		{UserID: "u2", ListingID: "L1", Kind: InteractionWishlist},
		{UserID: "u2", ListingID: "L2", Kind: InteractionWishlist},
		{UserID: "u2", ListingID: "L3", Kind: InteractionBooking},
		{UserID: "u3", ListingID: "X", Kind: InteractionWishlist},
		{UserID: "u3", ListingID: "X", Kind: InteractionReview},
	}
}

func TestBuildMatrix(t *testing.T) {
	t.Parallel()

	m := BuildMatrix(testInteractions(), 3, 1, testNow)

	if m.Users() != 3 || m.Listings() != 4 || m.Len() != 6 {
		t.Errorf("users/listings/cells = %d/%d/%d, want 3/4/6", m.Users(), m.Listings(), m.Len())
	}
	if m.Strength("u2", "L3") != 3 {
		t.Errorf("booking strength = %v, want 3", m.Strength("u2", "L3"))
	}
	if m.Strength("u3", "X") != 1 {
		t.Errorf("reviews should not add strength, got %v", m.Strength("u3", "X"))
	}
	if m.MaxStrength() != 3 {
		t.Errorf("MaxStrength = %v", m.MaxStrength())
	}
	if got := m.Interactors("L1"); len(got) != 2 || got[0] != "u1" || got[1] != "u2" {
		t.Errorf("Interactors(L1) = %v", got)
	}
	if m.Version() != 1 || !m.BuiltAt().Equal(testNow) {
		t.Errorf("version/builtAt = %d/%v", m.Version(), m.BuiltAt())
	}
}

func TestInteractionMatrix_Similarity(t *testing.T) {
	t.Parallel()

	m := BuildMatrix(testInteractions(), 3, 1, testNow)

	want := 2 / (math.Sqrt(2) * math.Sqrt(11))
	if got := m.Similarity("u1", "u2"); !approxEqual(got, want) {
		t.Errorf("Similarity(u1,u2) = %v, want %v", got, want)
	}
	if got := m.Similarity("u2", "u1"); !approxEqual(got, want) {
		t.Errorf("Similarity is not symmetric: %v", got)
	}
	if got := m.Similarity("u1", "u3"); got != 0 {
		t.Errorf("Similarity(u1,u3) = %v, want 0", got)
	}
	if got := m.Similarity("u1", "ghost"); got != 0 {
		t.Errorf("Similarity with unknown user = %v, want 0", got)
	}
}

func TestMatrixEntriesRoundTrip(t *testing.T) {
	t.Parallel()

	m := BuildMatrix(testInteractions(), 2, 7, testNow)
	rebuilt := NewMatrixFromEntries(m.Entries(), m.Version(), m.BuiltAt())

	if rebuilt.Len() != m.Len() || rebuilt.Strength("u2", "L3") != 2 {
		t.Errorf("rebuilt matrix differs: len %d strength %v", rebuilt.Len(), rebuilt.Strength("u2", "L3"))
	}
	entries := m.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].UserID > entries[i].UserID {
			t.Fatal("entries not sorted by user")
		}
	}
}

// mockLoader implements InteractionLoader for testing.
type mockLoader struct {
	interactions []Interaction
	err          error
	calls        atomic.Int32
	gate         chan struct{}
}

func (m *mockLoader) AllInteractions(_ context.Context) ([]Interaction, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.interactions, nil
}

// mockSnapshots implements MatrixSnapshotStore for testing.
type mockSnapshots struct {
	mu    sync.Mutex
	saved *InteractionMatrix
	err   error
}

func (m *mockSnapshots) SaveMatrix(_ context.Context, mx *InteractionMatrix) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = mx
	return m.err
}

func (m *mockSnapshots) LoadMatrix(_ context.Context) (*InteractionMatrix, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, m.err
}

func TestMatrixCache_ReadThrough(t *testing.T) {
	t.Parallel()

	loader := &mockLoader{interactions: testInteractions()}
	snaps := &mockSnapshots{}
	c := NewMatrixCache(loader, snaps, 3, testLogger())

	if c.Current() != nil {
		t.Fatal("expected no matrix before first use")
	}
	m, err := c.Matrix(context.Background())
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	if m.Users() != 3 {
		t.Errorf("users = %d", m.Users())
	}
	if _, err := c.Matrix(context.Background()); err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls.Load())
	}
	if snaps.saved == nil {
		t.Error("snapshot not saved")
	}

	next, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.Version() != m.Version()+1 {
		t.Errorf("version = %d, want %d", next.Version(), m.Version()+1)
	}
}

func TestMatrixCache_ConcurrentBuildsCollapse(t *testing.T) {
	t.Parallel()

	loader := &mockLoader{interactions: testInteractions(), gate: make(chan struct{})}
	c := NewMatrixCache(loader, nil, 3, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Matrix(context.Background()); err != nil {
				t.Errorf("Matrix() error = %v", err)
			}
		}()
	}
	close(loader.gate)
	wg.Wait()

	if got := loader.calls.Load(); got < 1 || got > 8 {
		t.Errorf("loader calls = %d", got)
	}
	if c.Current() == nil {
		t.Error("matrix not installed")
	}
}

func TestMatrixCache_Errors(t *testing.T) {
	t.Parallel()

	c := NewMatrixCache(&mockLoader{err: errors.New("db down")}, nil, 3, testLogger())
	if _, err := c.Matrix(context.Background()); !errors.Is(err, ErrMatrixUnavailable) {
		t.Errorf("Matrix() error = %v, want ErrMatrixUnavailable", err)
	}

	empty := NewMatrixCache(nil, nil, 3, testLogger())
	if _, err := empty.Refresh(context.Background()); !errors.Is(err, ErrMatrixUnavailable) {
		t.Errorf("Refresh() error = %v, want ErrMatrixUnavailable", err)
	}
}

func TestMatrixCache_LoadSnapshot(t *testing.T) {
	t.Parallel()

	snaps := &mockSnapshots{saved: BuildMatrix(testInteractions(), 3, 41, testNow)}
	loader := &mockLoader{interactions: testInteractions()}
	c := NewMatrixCache(loader, snaps, 3, testLogger())

	found, err := c.LoadSnapshot(context.Background())
	if err != nil || !found {
		t.Fatalf("LoadSnapshot() = %v, %v", found, err)
	}
	if c.Current().Version() != 41 {
		t.Errorf("version = %d, want 41", c.Current().Version())
	}
	if loader.calls.Load() != 0 {
		t.Error("loader should not run when a snapshot is installed")
	}

	next, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if next.Version() != 42 {
		t.Errorf("version after refresh = %d, want 42", next.Version())
	}

	none := NewMatrixCache(loader, &mockSnapshots{}, 3, testLogger())
	if found, err := none.LoadSnapshot(context.Background()); found || err != nil {
		t.Errorf("LoadSnapshot() on empty store = %v, %v", found, err)
	}
}
