// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"reflect"
	"testing"
)

func TestInsightsBuilder_Explain(t *testing.T) {
	t.Parallel()

	b := NewInsightsBuilder(NewFeatureExtractor(fixedClock))
	profile := &UserProfile{
		AvgPrice:        1_500_000,
		PreferredCities: map[string]int{"Mumbai": 2, "Delhi": 1},
	}

	got := b.Explain(Recommendation{Listing: testListings()[0], Score: 0.5}, profile)
	want := []string{
		"Priced right around your usual budget",
		"In Mumbai, one of your preferred cities",
		"Good value per square foot",
		"Well equipped with most amenities",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() = %v, want %v", got, want)
	}

	again := b.Explain(Recommendation{Listing: testListings()[0], Score: 0.5}, profile)
	if !reflect.DeepEqual(got, again) {
		t.Error("Explain() is not deterministic")
	}
}

func TestInsightsBuilder_NewUserAndTopScore(t *testing.T) {
	t.Parallel()

	b := NewInsightsBuilder(NewFeatureExtractor(fixedClock))
	l := Listing{ID: "x", Price: 100, DiscountPrice: 75, Offer: true, City: "Pune"}

	got := b.Explain(Recommendation{Listing: l, Score: 0.85}, NewUserProfile("u"))
	want := []string{
		"Popular with buyers like you",
		"Prime metro location",
		"Currently offered at 25% off",
		"Top match for your profile",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() = %v, want %v", got, want)
	}
}

func TestInsightsBuilder_AnnotateCopies(t *testing.T) {
	t.Parallel()

	b := NewInsightsBuilder(NewFeatureExtractor(fixedClock))
	in := Fallback(testListings(), 2)
	out := b.Annotate(in, nil)

	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if len(out[0].Insights) == 0 {
		t.Error("expected insights")
	}
	if in[0].Insights != nil {
		t.Error("Annotate mutated its input")
	}
}
