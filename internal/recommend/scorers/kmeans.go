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

// Cluster names.
const (
	ClusterBudgetConscious   = "budget-conscious"
	ClusterLuxuryFocused     = "luxury-focused"
	ClusterLocationFocused   = "location-focused"
	ClusterInvestmentFocused = "investment-focused"
	ClusterBalanced          = "balanced"
)

// Cluster is a named buyer segment with a centroid and the weights used to
// score listings against it.
type Cluster struct {
	Name string

	// Centroid over price level, amenity importance, location loyalty and
	// risk tolerance. Only used for data-driven assignment.
	PriceLevel float64
	Amenity    float64
	Loyalty    float64
	Risk       float64

	WeightPrice      float64
	WeightAmenity    float64
	WeightLocation   float64
	WeightMarket     float64
	WeightInvestment float64
}

// Clusters are the five fixed segments. Blend weights of each sum to 1.
var Clusters = []Cluster{
	{
		Name: ClusterBudgetConscious, PriceLevel: 0, Amenity: 0.3, Loyalty: 0.5, Risk: 0.3,
		WeightPrice: 0.40, WeightAmenity: 0.10, WeightLocation: 0.15, WeightMarket: 0.15, WeightInvestment: 0.20,
	},
	{
		Name: ClusterLuxuryFocused, PriceLevel: 1, Amenity: 0.9, Loyalty: 0.5, Risk: 0.5,
		WeightPrice: 0.25, WeightAmenity: 0.35, WeightLocation: 0.20, WeightMarket: 0.10, WeightInvestment: 0.10,
	},
	{
		Name: ClusterLocationFocused, PriceLevel: 1.0 / 3.0, Amenity: 0.5, Loyalty: 1, Risk: 0.3,
		WeightPrice: 0.15, WeightAmenity: 0.15, WeightLocation: 0.45, WeightMarket: 0.15, WeightInvestment: 0.10,
	},
	{
		Name: ClusterInvestmentFocused, PriceLevel: 1.0 / 3.0, Amenity: 0.4, Loyalty: 0.3, Risk: 0.9,
		WeightPrice: 0.15, WeightAmenity: 0.10, WeightLocation: 0.20, WeightMarket: 0.20, WeightInvestment: 0.35,
	},
	{
		Name: ClusterBalanced, PriceLevel: 1.0 / 3.0, Amenity: 0.6, Loyalty: 0.5, Risk: 0.5,
		WeightPrice: 0.30, WeightAmenity: 0.20, WeightLocation: 0.20, WeightMarket: 0.15, WeightInvestment: 0.15,
	},
}

// KMeans scores listings by their compatibility with the user's cluster.
//
// By default every user is placed in the balanced cluster. With
// dataDriven set, the user goes to the nearest centroid instead.
type KMeans struct {
	BaseScorer
	dataDriven bool
}

// NewKMeans creates the cluster compatibility scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewKMeans(cfg *recommend.Config, features *recommend.FeatureExtractor, logger zerolog.Logger) *KMeans {
	return &KMeans{
		BaseScorer: NewBaseScorer(recommend.ModelKMeans, cfg.Thresholds.KMeans, features, logger),
		dataDriven: cfg.DataDrivenClusters,
	}
}

// Score implements recommend.Scorer.
func (s *KMeans) Score(ctx context.Context, candidates []recommend.Listing, profile *recommend.UserProfile, limit int) ([]recommend.Recommendation, error) {
	if profile == nil || profile.IsNewUser {
		return recommend.Fallback(candidates, limit), nil
	}

	c := AssignCluster(profile, s.dataDriven)
	reason := fmt.Sprintf("Fits the %s buyer profile", c.Name)

	return s.rank(ctx, candidates, profile, limit, func(_ *recommend.Listing, f *recommend.Features, _ *recommend.UserProfile) verdict {
		score := ClusterCompatibility(c, f)
		return verdict{
			score:       score,
			confidence:  0.5 + 0.4*score,
			explanation: []string{reason},
		}
	})
}

// AssignCluster returns the user's cluster. Unless dataDriven is set this
// is always the balanced cluster.
func AssignCluster(p *recommend.UserProfile, dataDriven bool) Cluster {
	balanced := Clusters[len(Clusters)-1]
	if !dataDriven || p == nil || p.IsNewUser {
		return balanced
	}

	level := recommend.PriceLevel(recommend.PriceCategory(p.AvgPrice))
	best := balanced
	bestDist := math.Inf(1)
	for _, c := range Clusters {
		d := sq(level-c.PriceLevel) + sq(p.AmenityImportance-c.Amenity) +
			sq(p.LocationLoyalty-c.Loyalty) + sq(p.RiskTolerance-c.Risk)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// ClusterCompatibility blends price-level distance, amenity distance,
// location, demand and investment scores with the cluster's weights.
func ClusterCompatibility(c Cluster, f *recommend.Features) float64 {
	return recommend.Clamp01(
		c.WeightPrice*(1-math.Abs(f.PriceLevel-c.PriceLevel)) +
			c.WeightAmenity*(1-math.Abs(f.AmenitiesScore-c.Amenity)) +
			c.WeightLocation*f.LocationScore +
			c.WeightMarket*f.MarketDemand +
			c.WeightInvestment*f.InvestmentPotential,
	)
}

func sq(x float64) float64 { return x * x }
