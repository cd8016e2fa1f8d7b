// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Compile-time interface assertions.
var (
	_ recommend.Scorer = (*MatrixFactorization)(nil)
	_ recommend.Scorer = (*RandomForest)(nil)
	_ recommend.Scorer = (*NeuralNetwork)(nil)
	_ recommend.Scorer = (*KMeans)(nil)
	_ recommend.Scorer = (*TimeSeries)(nil)
)

// verdict is a model's opinion of one listing.
type verdict struct {
	score       float64
	confidence  float64
	explanation []string
}

// modelFunc scores one listing. It may assume a non-nil, non-new profile.
type modelFunc func(l *recommend.Listing, f *recommend.Features, p *recommend.UserProfile) verdict

// BaseScorer provides the pipeline shared by every model.
type BaseScorer struct {
	name      string
	threshold float64
	features  *recommend.FeatureExtractor
	logger    zerolog.Logger
}

// NewBaseScorer creates the shared part of a scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBaseScorer(name string, threshold float64, features *recommend.FeatureExtractor, logger zerolog.Logger) BaseScorer {
	if features == nil {
		features = recommend.NewFeatureExtractor(nil)
	}
	return BaseScorer{
		name:      name,
		threshold: threshold,
		features:  features,
		logger:    logger.With().Str("scorer", name).Logger(),
	}
}

// Name returns the model name.
func (b *BaseScorer) Name() string {
	return b.name
}

// Threshold returns the minimum accepted score.
func (b *BaseScorer) Threshold() float64 {
	return b.threshold
}

// rank runs fn over the candidates and applies the shared rules.
func (b *BaseScorer) rank(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int, fn modelFunc) (recs []recommend.Recommendation, err error) {
	if profile == nil || profile.IsNewUser {
		return recommend.Fallback(candidates, limit), nil
	}
	if len(candidates) == 0 {
		return []recommend.Recommendation{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Msg("model function panicked, using popularity ranking")
			recs, err = recommend.Fallback(candidates, limit), nil
		}
	}()

	recs = make([]recommend.Recommendation, 0, len(candidates))
	var rejected []recommend.Listing
	for i := range candidates {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%s: %w", b.name, err)
			}
		}

		l := &candidates[i]
		f := b.features.Extract(*l, profile)
		v := fn(l, &f, profile)
		score := recommend.Clamp01(v.score)
		if score < b.threshold {
			rejected = append(rejected, *l)
			continue
		}

		recs = append(recs, recommend.Recommendation{
			Listing:     *l,
			Score:       score,
			Confidence:  recommend.Clamp01(v.confidence),
			Model:       b.name,
			Models:      []string{b.name},
			Type:        recommend.TypePersonalized,
			Explanation: v.explanation,
			ModelScores: map[string]float64{b.name: score},
		})
	}

	if len(recs) == 0 {
		b.logger.Debug().
			Float64("threshold", b.threshold).
			Int("candidates", len(candidates)).
			Msg("no candidate passed threshold, using popularity ranking")
	}

	recommend.SortRecommendations(recs)
	recs = recommend.Truncate(recs, limit)

	// Open slots are filled with the most popular rejected listings, so the
	// output size depends on the pool and the limit, never on the threshold.
	if limit <= 0 || len(recs) < limit {
		recs = append(recs, recommend.Fallback(rejected, limit-len(recs))...)
	}
	return recs, nil
}

// Default builds all five scorers from one configuration, in ensemble order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Default(cfg *recommend.Config, features *recommend.FeatureExtractor, matrix recommend.MatrixSource, logger zerolog.Logger) []recommend.Scorer {
	return []recommend.Scorer{
		NewMatrixFactorization(cfg, features, matrix, logger),
		NewRandomForest(cfg, features, logger),
		NewNeuralNetwork(cfg, features, logger),
		NewKMeans(cfg, features, logger),
		NewTimeSeries(cfg, features, logger),
	}
}
