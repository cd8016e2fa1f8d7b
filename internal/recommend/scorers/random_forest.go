// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Sub-score weights. They sum to 1.
const (
	rfPriceWeight    = 0.30
	rfLocationWeight = 0.25
	rfTypeWeight     = 0.15
	rfAmenityWeight  = 0.15
	rfMarketWeight   = 0.15
)

// Reason thresholds per sub-score.
const (
	rfPriceReason    = 0.7
	rfLocationReason = 0.7
	rfTypeReason     = 0.7
	rfAmenityReason  = 0.6
	rfMarketReason   = 0.6
)

// RandomForest blends five compatibility sub-scores with fixed weights.
// There is no tree: each sub-score is a baseline plus a profile-driven
// bonus, and each one that clears its own bar adds a reason.
type RandomForest struct {
	BaseScorer
}

// NewRandomForest creates the rule-based compatibility scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRandomForest(cfg *recommend.Config, features *recommend.FeatureExtractor, logger zerolog.Logger) *RandomForest {
	return &RandomForest{
		BaseScorer: NewBaseScorer(recommend.ModelRandomForest, cfg.Thresholds.RandomForest, features, logger),
	}
}

// Score implements recommend.Scorer.
func (s *RandomForest) Score(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int) ([]recommend.Recommendation, error) {
	return s.rank(ctx, candidates, profile, limit, forest)
}

// SubScores holds the five compatibility scores of a listing.
type SubScores struct {
	Price    float64
	Location float64
	Type     float64
	Amenity  float64
	Market   float64
}

// Compatibility computes the sub-scores of a listing for a profile.
func Compatibility(f *recommend.Features, p *recommend.UserProfile) SubScores {
	price := 0.3 + 0.6*f.UserPriceAffinity
	if p.PriceRange.Max > 0 && f.Price >= p.PriceRange.Min && f.Price <= p.PriceRange.Max {
		price += 0.1
	}

	return SubScores{
		Price:    recommend.Clamp01(price),
		Location: recommend.Clamp01(0.2 + 0.5*f.UserLocationPreference + 0.3*f.LocationScore),
		Type:     recommend.Clamp01(0.4 + 0.6*f.UserTypePreference),
		Amenity:  recommend.Clamp01(0.2 + f.AmenitiesScore*(0.4+0.4*p.AmenityImportance)),
		Market:   recommend.Clamp01(0.3 + 0.4*f.MarketDemand + 0.3*f.SocialProof),
	}
}

func forest(_ *recommend.Listing, f *recommend.Features, p *recommend.UserProfile) verdict {
	sub := Compatibility(f, p)

	score := rfPriceWeight*sub.Price +
		rfLocationWeight*sub.Location +
		rfTypeWeight*sub.Type +
		rfAmenityWeight*sub.Amenity +
		rfMarketWeight*sub.Market

	var reasons []string
	if sub.Price >= rfPriceReason {
		reasons = append(reasons, "Price aligns with your budget")
	}
	if sub.Location >= rfLocationReason {
		reasons = append(reasons, "Located in a city you prefer")
	}
	if sub.Type >= rfTypeReason {
		reasons = append(reasons, "Matches your preferred property type")
	}
	if sub.Amenity >= rfAmenityReason {
		reasons = append(reasons, "Has the amenities you value")
	}
	if sub.Market >= rfMarketReason {
		reasons = append(reasons, "High demand in the market")
	}

	return verdict{
		score:       score,
		confidence:  0.6 + 0.3*float64(len(reasons))/5,
		explanation: reasons,
	}
}
