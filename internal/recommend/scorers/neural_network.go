// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package scorers

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/propsight/internal/recommend"
)

// layer is an elementwise max(0, x*weight + bias).
type layer struct {
	weight float64
	bias   float64
}

// nnLayers are fixed; nothing is trained.
var nnLayers = [...]layer{
	{weight: 0.8, bias: 0.1},
	{weight: 1.2, bias: -0.05},
	{weight: 0.9, bias: 0.02},
}

// NeuralNetwork passes normalized features through three fixed layers and
// averages the outputs.
type NeuralNetwork struct {
	BaseScorer
}

// NewNeuralNetwork creates the layered feature combiner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNeuralNetwork(cfg *recommend.Config, features *recommend.FeatureExtractor, logger zerolog.Logger) *NeuralNetwork {
	return &NeuralNetwork{
		BaseScorer: NewBaseScorer(recommend.ModelNeuralNetwork, cfg.Thresholds.NeuralNetwork, features, logger),
	}
}

// Score implements recommend.Scorer.
func (s *NeuralNetwork) Score(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int) ([]recommend.Recommendation, error) {
	return s.rank(ctx, candidates, profile, limit, forward)
}

// networkInputs returns the 14 clamped inputs in a fixed order.
func networkInputs(f *recommend.Features) []float64 {
	return []float64{
		recommend.Clamp01(f.UserPriceAffinity),
		recommend.Clamp01(f.UserLocationPreference),
		recommend.Clamp01(f.UserTypePreference),
		recommend.Clamp01(f.LocationScore),
		recommend.Clamp01(f.AmenitiesScore),
		recommend.Clamp01(f.MarketDemand),
		recommend.Clamp01(f.SocialProof),
		recommend.Clamp01(f.InvestmentPotential),
		recommend.Clamp01(f.PriceValue),
		recommend.Clamp01(f.RecencyScore),
		recommend.Clamp01(f.PropertyAgeScore),
		recommend.Clamp01(f.SizeScore),
		recommend.Clamp01(f.BedroomScore),
		recommend.Clamp01(f.DiscountPercentage / 100),
	}
}

// Activate runs the inputs through the layers and returns the mean output.
func Activate(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	x := make([]float64, len(inputs))
	copy(x, inputs)
	for _, l := range nnLayers {
		for i := range x {
			x[i] = math.Max(0, x[i]*l.weight+l.bias)
		}
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return recommend.Clamp01(sum / float64(len(x)))
}

func forward(_ *recommend.Listing, f *recommend.Features, _ *recommend.UserProfile) verdict {
	score := Activate(networkInputs(f))

	var explanation []string
	switch {
	case score >= 0.6:
		explanation = []string{"Strong overall match with your preferences"}
	case score >= 0.45:
		explanation = []string{"Good overall feature match"}
	default:
		explanation = []string{"Partial feature match"}
	}

	return verdict{
		score:       score,
		confidence:  0.55 + 0.4*score,
		explanation: explanation,
	}
}
