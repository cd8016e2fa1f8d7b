// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// seasonalDemand is the relative buying demand per calendar month.
var seasonalDemand = map[time.Month]float64{
	time.January:   0.70,
	time.February:  0.75,
	time.March:     0.85,
	time.April:     0.90,
	time.May:       0.80,
	time.June:      0.65,
	time.July:      0.60,
	time.August:    0.65,
	time.September: 0.75,
	time.October:   0.90,
	time.November:  0.95,
	time.December:  0.80,
}

// trendBoost scales how much the trendFollowing trait moves the score.
const trendBoost = 0.3

// TimeSeries scores how "trending" a listing is right now. Its threshold
// is deliberately higher than the other models'.
type TimeSeries struct {
	BaseScorer
}

// NewTimeSeries creates the trend scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTimeSeries(cfg *recommend.Config, features *recommend.FeatureExtractor, logger zerolog.Logger) *TimeSeries {
	return &TimeSeries{
		BaseScorer: NewBaseScorer(recommend.ModelTimeSeries, cfg.Thresholds.TimeSeries, features, logger),
	}
}

// Score implements recommend.Scorer.
func (s *TimeSeries) Score(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int) ([]recommend.Recommendation, error) {
	seasonal := SeasonalDemand(s.features.Now().Month())
	return s.rank(ctx, candidates, profile, limit, func(_ *recommend.Listing, f *recommend.Features, p *recommend.UserProfile) verdict {
		return trend(f, p, seasonal)
	})
}

// SeasonalDemand returns the demand factor of a month.
func SeasonalDemand(m time.Month) float64 {
	if v, ok := seasonalDemand[m]; ok {
		return v
	}
	return 0.75
}

func trend(f *recommend.Features, p *recommend.UserProfile, seasonal float64) verdict {
	market := 0.5*f.RecencyScore + 0.5*f.MarketDemand
	base := 0.4*market + 0.3*seasonal + 0.3*f.InvestmentPotential
	score := recommend.Clamp01(base * (1 + trendBoost*(p.TrendFollowing-0.5)))

	explanation := []string{"Trending now with strong seasonal demand"}
	if f.RecencyScore >= 0.8 {
		explanation = append(explanation, "Recently listed")
	}

	return verdict{
		score:       score,
		confidence:  0.6 + 0.3*f.MarketDemand,
		explanation: explanation,
	}
}
