// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// Matrix-factorization constants.
const (
	mfBaseScore        = 0.45
	mfBaseConfidence   = 0.5
	mfScoreFloor       = 0.3
	mfScoreSpan        = 0.7
	mfInteractorsSatur = 5.0
)

// MatrixFactorization predicts affinity from users with similar
// wishlist and booking histories.
//
// For a candidate listing, every other user who saved or booked it votes
// with their interaction strength, weighted by the cosine similarity of
// their row to the target user's row. Listings nobody similar touched get
// a neutral base score.
type MatrixFactorization struct {
	BaseScorer
	matrix recommend.MatrixSource
}

// NewMatrixFactorization creates the collaborative scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMatrixFactorization(cfg *recommend.Config, features *recommend.FeatureExtractor, matrix recommend.MatrixSource, logger zerolog.Logger) *MatrixFactorization {
	return &MatrixFactorization{
		BaseScorer: NewBaseScorer(recommend.ModelMatrixFactorization, cfg.Thresholds.MatrixFactorization, features, logger),
		matrix:     matrix,
	}
}

// Score implements recommend.Scorer.
func (s *MatrixFactorization) Score(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int) ([]recommend.Recommendation, error) {
	if profile == nil || profile.IsNewUser {
		return recommend.Fallback(candidates, limit), nil
	}
	if s.matrix == nil {
		return nil, recommend.ErrMatrixUnavailable
	}

	m, err := s.matrix.Matrix(ctx)
	if err != nil {
		return nil, fmt.Errorf("matrix-factorization: %w", err)
	}

	return s.rank(ctx, candidates, profile, limit, func(l *recommend.Listing, _ *recommend.Features, p *recommend.UserProfile) verdict {
		return predict(m, p.UserID, l.ID)
	})
}

func predict(m *recommend.InteractionMatrix, userID, listingID string) verdict {
	var simSum, weighted float64
	voters := 0
	for _, other := range m.Interactors(listingID) {
		if other == userID {
			continue
		}
		sim := m.Similarity(userID, other)
		if sim <= 0 {
			continue
		}
		simSum += sim
		weighted += sim * m.Strength(other, listingID)
		voters++
	}

	maxStrength := m.MaxStrength()
	if simSum == 0 || maxStrength == 0 {
		return verdict{
			score:       mfBaseScore,
			confidence:  mfBaseConfidence,
			explanation: []string{"Not yet explored by buyers with similar taste"},
		}
	}

	predicted := weighted / simSum
	score := mfScoreFloor + mfScoreSpan*(predicted/maxStrength)*math.Min(1, simSum)
	noun := "buyers"
	if voters == 1 {
		noun = "buyer"
	}
	return verdict{
		score:       score,
		confidence:  0.5 + 0.4*math.Min(1, float64(voters)/mfInteractorsSatur),
		explanation: []string{fmt.Sprintf("%d %s with similar taste saved or booked this", voters, noun)},
	}
}
