// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"math"
	"testing"
)

func rec(id string, score, confidence float64) Recommendation {
	return Recommendation{Listing: Listing{ID: id}, Score: score, Confidence: confidence}
}

func TestCombine_SingleContributor(t *testing.T) {
	t.Parallel()

	results := []ModelResult{
		{Name: ModelRandomForest, Weight: 0.25, AccuracyHint: 0.94, Recommendations: []Recommendation{rec("L", 0.8, 0.9)}},
		{Name: ModelNeuralNetwork, Weight: 0.25, AccuracyHint: 0.96, Recommendations: []Recommendation{rec("M", 0.5, 0.6)}},
		{Name: ModelKMeans, Weight: 0.15, AccuracyHint: 0.90, Recommendations: nil},
	}

	out := Combine(results, 0.05, 0.7)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}

	var l Recommendation
	for _, r := range out {
		if r.Listing.ID == "L" {
			l = r
		}
	}
	if want := 0.8 * 0.25 * 0.94; !approxEqual(l.Score, want) {
		t.Errorf("L score = %v, want %v", l.Score, want)
	}
	if l.Confidence != 0.9 {
		t.Errorf("L confidence = %v, want 0.9", l.Confidence)
	}
	if len(l.Models) != 1 || l.Models[0] != ModelRandomForest {
		t.Errorf("L models = %v", l.Models)
	}
	if l.Model != ModelEnsemble || l.Type != TypeEnsemble {
		t.Errorf("L model/type = %q/%q", l.Model, l.Type)
	}

	for _, r := range out {
		if r.Listing.ID == "M" && r.Confidence != 0.7 {
			t.Errorf("M confidence = %v, want floor 0.7", r.Confidence)
		}
	}
}

func TestCombine_DiversityBonus(t *testing.T) {
	t.Parallel()

	results := []ModelResult{
		{Name: ModelRandomForest, Weight: 0.5, AccuracyHint: 1, Recommendations: []Recommendation{rec("L", 0.4, 0.8)}},
		{Name: ModelNeuralNetwork, Weight: 0.5, AccuracyHint: 1, Recommendations: []Recommendation{rec("L", 0.6, 0.6)}},
	}

	out := Combine(results, 0.1, 0)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	base := 0.4*0.5 + 0.6*0.5
	want := base + (1-base)*0.1
	if !approxEqual(out[0].Score, want) {
		t.Errorf("score = %v, want %v", out[0].Score, want)
	}
	if !approxEqual(out[0].Confidence, 0.7) {
		t.Errorf("confidence = %v, want 0.7", out[0].Confidence)
	}
	if out[0].ModelScores[ModelNeuralNetwork] != 0.6 {
		t.Errorf("model scores = %v", out[0].ModelScores)
	}
}

func TestCombine_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := ModelResult{Name: ModelMatrixFactorization, Weight: 0.2, AccuracyHint: 0.92,
		Recommendations: []Recommendation{rec("x", 0.71, 0.5), rec("y", 0.33, 0.9)}}
	b := ModelResult{Name: ModelRandomForest, Weight: 0.25, AccuracyHint: 0.94,
		Recommendations: []Recommendation{rec("y", 0.91, 0.8), rec("z", 0.47, 0.7)}}
	c := ModelResult{Name: ModelTimeSeries, Weight: 0.15, AccuracyHint: 0.91,
		Recommendations: []Recommendation{rec("x", 0.77, 0.65), rec("y", 0.81, 0.6), rec("z", 0.99, 0.99)}}

	orders := [][]ModelResult{{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b}}
	base := Combine(orders[0], 0.05, 0.7)
	for i, order := range orders[1:] {
		got := Combine(order, 0.05, 0.7)
		if len(got) != len(base) {
			t.Fatalf("order %d: len = %d, want %d", i+1, len(got), len(base))
		}
		for j := range got {
			if got[j].Listing.ID != base[j].Listing.ID ||
				math.Float64bits(got[j].Score) != math.Float64bits(base[j].Score) ||
				math.Float64bits(got[j].Confidence) != math.Float64bits(base[j].Confidence) {
				t.Errorf("order %d position %d: got %s/%v, want %s/%v",
					i+1, j, got[j].Listing.ID, got[j].Score, base[j].Listing.ID, base[j].Score)
			}
		}
	}
}

func TestCombine_RangeAndEmpty(t *testing.T) {
	t.Parallel()

	if out := Combine(nil, 0.05, 0.7); len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}

	results := []ModelResult{
		{Name: ModelRandomForest, Weight: 1, AccuracyHint: 1, Recommendations: []Recommendation{rec("L", 1, 1)}},
		{Name: ModelKMeans, Weight: 1, AccuracyHint: 1, Recommendations: []Recommendation{rec("L", 1, 1)}},
	}
	out := Combine(results, 0.5, 0.7)
	if out[0].Score != 1 {
		t.Errorf("score = %v, want clamped 1", out[0].Score)
	}
}

func TestCombine_ZeroWeightIgnored(t *testing.T) {
	t.Parallel()

	results := []ModelResult{
		{Name: ModelKMeans, Weight: 0, AccuracyHint: 1, Recommendations: []Recommendation{rec("L", 1, 1)}},
	}
	if out := Combine(results, 0.05, 0.7); len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestCombine_AgreementKeepsScoreOrder(t *testing.T) {
	t.Parallel()

	cands := []Listing{
		{ID: "a-less-popular", WishlistCount: 500},
		{ID: "z-most-popular", WishlistCount: 5000},
		{ID: "m-modest", WishlistCount: 5},
	}
	popular := Fallback(cands, 0)

	for _, tier := range []Tier{TierBasic, TierAdvanced, TierEnhanced} {
		t.Run(string(tier), func(t *testing.T) {
			t.Parallel()
			cfg, err := ConfigForTier(tier)
			if err != nil {
				t.Fatalf("ConfigForTier() error = %v", err)
			}

			results := make([]ModelResult, 0, len(Models())-1)
			for _, name := range Models()[1:] {
				results = append(results, ModelResult{
					Name:            name,
					Weight:          cfg.Weights.Get(name),
					AccuracyHint:    cfg.AccuracyHints.Get(name),
					Recommendations: Fallback(cands, 0),
				})
			}

			out := Combine(results, cfg.DiversityBonus, cfg.EnsembleConfidenceFloor)
			if len(out) != len(popular) {
				t.Fatalf("len = %d, want %d", len(out), len(popular))
			}
			for i := range out {
				if out[i].Listing.ID != popular[i].Listing.ID {
					t.Errorf("position %d = %s, want %s", i, out[i].Listing.ID, popular[i].Listing.ID)
				}
				if out[i].Score >= 1 {
					t.Errorf("%s score = %v, want below 1", out[i].Listing.ID, out[i].Score)
				}
			}
			for i := 1; i < len(out); i++ {
				if out[i].Score >= out[i-1].Score {
					t.Errorf("scores not strictly decreasing: %v then %v", out[i-1].Score, out[i].Score)
				}
			}
		})
	}
}

func TestCombine_AgreementBonusBounded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bonus  float64
		models int
		want   float64
	}{
		{name: "no bonus", bonus: 0, models: 5, want: 0},
		{name: "single model", bonus: 0.08, models: 1, want: 0},
		{name: "five models", bonus: 0.08, models: 5, want: 0.02},
		{name: "capped", bonus: 3, models: 3, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := agreementBonus(tt.bonus, tt.models); !approxEqual(got, tt.want) {
				t.Errorf("agreementBonus(%v, %d) = %v, want %v", tt.bonus, tt.models, got, tt.want)
			}
		})
	}
}
