// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/propsight/internal/recommend"
)

func TestRandomForest_RanksMatchingListingFirst(t *testing.T) {
	t.Parallel()

	cands := []recommend.Listing{
		{ID: "B", Price: 5_000_000, Area: 2000, City: "Smalltown"},
		{ID: "C", Price: 1_450_000, Area: 0, City: "Mumbai"},
		{ID: "A", Price: 1_550_000, Area: 1000, City: "Mumbai", Amenities: allAmenities()},
	}
	profile := returningProfile()

	cfg := recommend.DefaultConfig()
	cfg.Thresholds.RandomForest = 0
	s := NewRandomForest(cfg, testFeatures(), testLogger())

	got, err := s.Score(context.Background(), cands, profile, 10)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	pos := map[string]int{}
	for i, r := range got {
		pos[r.Listing.ID] = i
	}
	if pos["A"] > pos["B"] {
		t.Errorf("A ranked below B: %+v", got)
	}
	if got[len(got)-1].Listing.ID != "B" {
		t.Errorf("B should rank last, got order %v", pos)
	}
}

func TestRandomForest_ThresholdRejectsPoorMatch(t *testing.T) {
	t.Parallel()

	cands := []recommend.Listing{
		{ID: "A", Price: 1_550_000, Area: 1000, City: "Mumbai", Amenities: allAmenities()},
		{ID: "B", Price: 5_000_000, Area: 2000, City: "Smalltown"},
	}
	s := NewRandomForest(recommend.DefaultConfig(), testFeatures(), testLogger())

	got, err := s.Score(context.Background(), cands, returningProfile(), 10)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(got) != 2 || got[0].Listing.ID != "A" {
		t.Fatalf("got %+v, want A first", got)
	}
	if len(got[0].Explanation) == 0 {
		t.Error("expected reasons for A")
	}
	if got[0].Model != recommend.ModelRandomForest {
		t.Errorf("model = %q", got[0].Model)
	}
	if got[1].Listing.ID != "B" || got[1].Model != recommend.ModelPopularity {
		t.Errorf("B = %+v, want popularity filler", got[1])
	}
}

func TestCompatibility(t *testing.T) {
	t.Parallel()

	l := recommend.Listing{Price: 1_500_000, Area: 1000, City: "Mumbai", Type: "apartment", Amenities: allAmenities()}
	f := testFeatures().Extract(l, returningProfile())
	sub := Compatibility(&f, returningProfile())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "price in range", got: sub.Price, want: 1},
		{name: "preferred type", got: sub.Type, want: 1},
		{name: "full amenities", got: sub.Amenity, want: 0.8},
		{name: "preferred metro", got: sub.Location, want: 0.2 + 0.5*2.0/3.0 + 0.3},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
