// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Tier selects a named set of scoring constants.
type Tier string

// Supported tiers.
const (
	TierBasic    Tier = "basic"
	TierAdvanced Tier = "advanced"
	TierEnhanced Tier = "enhanced"
)

// weightSumTolerance bounds how far the ensemble weights may drift from 1.
const weightSumTolerance = 1e-9

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Tier is the name of the constant set in use.
	Tier Tier `json:"tier"`

	// Weights is the ensemble contribution of each model. Must sum to 1.
	Weights ModelValues `json:"weights"`

	// AccuracyHints scale each model's ensemble contribution.
	AccuracyHints ModelValues `json:"accuracy_hints"`

	// Thresholds is the minimum score each model accepts.
	Thresholds ModelValues `json:"thresholds"`

	// BookingWeight is the interaction strength of a booking. Wishlists count 1.
	BookingWeight float64 `json:"booking_weight"`

	// DiversityBonus is the share of the gap to 1 a listing closes when
	// every weighted model recommends it. Must be in [0, 1).
	DiversityBonus float64 `json:"diversity_bonus"`

	// EnsembleConfidenceFloor is the minimum ensemble confidence.
	EnsembleConfidenceFloor float64 `json:"ensemble_confidence_floor"`

	// CandidateDepth multiplies the limit when asking each model for
	// results to combine.
	CandidateDepth int `json:"candidate_depth"`

	// DefaultLimit is used when a request carries no limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps request limits.
	MaxLimit int `json:"max_limit"`

	// DataDrivenClusters assigns k-means clusters from the profile instead of
	// always using the balanced cluster.
	DataDrivenClusters bool `json:"data_driven_clusters"`

	// ScorerTimeout bounds a single model's run inside the ensemble.
	ScorerTimeout time.Duration `json:"scorer_timeout"`
}

// ModelValues holds one number per model.
type ModelValues struct {
	MatrixFactorization float64 `json:"matrix_factorization"`
	RandomForest        float64 `json:"random_forest"`
	NeuralNetwork       float64 `json:"neural_network"`
	KMeans              float64 `json:"k_means"`
	TimeSeries          float64 `json:"time_series"`
}

// Sum returns the total over all models.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (v ModelValues) Sum() float64 {
	return v.MatrixFactorization + v.RandomForest + v.NeuralNetwork + v.KMeans + v.TimeSeries
}

// Get returns the value for a model name, or 0 for an unknown name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (v ModelValues) Get(model string) float64 {
	switch model {
	case ModelMatrixFactorization:
		return v.MatrixFactorization
	case ModelRandomForest:
		return v.RandomForest
	case ModelNeuralNetwork:
		return v.NeuralNetwork
	case ModelKMeans:
		return v.KMeans
	case ModelTimeSeries:
		return v.TimeSeries
	default:
		return 0
	}
}

// ToMap returns the values keyed by model name.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (v ModelValues) ToMap() map[string]float64 {
	return map[string]float64{
		ModelMatrixFactorization: v.MatrixFactorization,
		ModelRandomForest:        v.RandomForest,
		ModelNeuralNetwork:       v.NeuralNetwork,
		ModelKMeans:              v.KMeans,
		ModelTimeSeries:          v.TimeSeries,
	}
}

// DefaultWeights is the ensemble split shared by all tiers.
var DefaultWeights = ModelValues{
	MatrixFactorization: 0.20,
	RandomForest:        0.25,
	NeuralNetwork:       0.25,
	KMeans:              0.15,
	TimeSeries:          0.15,
}

// DefaultAccuracyHints are the self-reported model accuracies. They are
// plain constants used as multipliers.
var DefaultAccuracyHints = ModelValues{
	MatrixFactorization: 0.92,
	RandomForest:        0.94,
	NeuralNetwork:       0.96,
	KMeans:              0.90,
	TimeSeries:          0.91,
}

// DefaultConfig returns the advanced tier.
func DefaultConfig() *Config {
	cfg, _ := ConfigForTier(TierAdvanced) //nolint:errcheck // advanced is always known
	return cfg
}

// ConfigForTier returns the constants of a named tier.
func ConfigForTier(tier Tier) (*Config, error) {
	cfg := &Config{
		Tier:                    tier,
		Weights:                 DefaultWeights,
		AccuracyHints:           DefaultAccuracyHints,
		EnsembleConfidenceFloor: 0.7,
		CandidateDepth:          2,
		DefaultLimit:            10,
		MaxLimit:                50,
		ScorerTimeout:           2 * time.Second,
	}

	switch tier {
	case TierBasic:
		cfg.Thresholds = ModelValues{
			MatrixFactorization: 0.30, RandomForest: 0.35, NeuralNetwork: 0.30,
			KMeans: 0.30, TimeSeries: 0.70,
		}
		cfg.BookingWeight = 2
		cfg.DiversityBonus = 0
	case TierAdvanced:
		cfg.Thresholds = ModelValues{
			MatrixFactorization: 0.35, RandomForest: 0.40, NeuralNetwork: 0.30,
			KMeans: 0.35, TimeSeries: 0.75,
		}
		cfg.BookingWeight = 3
		cfg.DiversityBonus = 0.05
	case TierEnhanced:
		cfg.Thresholds = ModelValues{
			MatrixFactorization: 0.40, RandomForest: 0.40, NeuralNetwork: 0.35,
			KMeans: 0.40, TimeSeries: 0.75,
		}
		cfg.BookingWeight = 3
		cfg.DiversityBonus = 0.08
	default:
		return nil, fmt.Errorf("unknown tier %q", tier)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if sum := c.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}
	for name, w := range c.Weights.ToMap() {
		if w < 0 {
			return fmt.Errorf("weights.%s must be non-negative, got %f", name, w)
		}
	}
	for name, h := range c.AccuracyHints.ToMap() {
		if h < 0 || h > 1 {
			return fmt.Errorf("accuracy_hints.%s must be in [0, 1], got %f", name, h)
		}
	}
	for name, t := range c.Thresholds.ToMap() {
		if t < 0 || t > 1 {
			return fmt.Errorf("thresholds.%s must be in [0, 1], got %f", name, t)
		}
	}
	if c.BookingWeight < 1 {
		return fmt.Errorf("booking_weight must be >= 1, got %f", c.BookingWeight)
	}
	if c.DiversityBonus < 0 || c.DiversityBonus >= 1 {
		return fmt.Errorf("diversity_bonus must be in [0, 1), got %f", c.DiversityBonus)
	}
	if c.EnsembleConfidenceFloor < 0 || c.EnsembleConfidenceFloor > 1 {
		return fmt.Errorf("ensemble_confidence_floor must be in [0, 1], got %f", c.EnsembleConfidenceFloor)
	}
	if c.CandidateDepth < 1 {
		return fmt.Errorf("candidate_depth must be positive, got %d", c.CandidateDepth)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.ScorerTimeout <= 0 {
		return fmt.Errorf("scorer_timeout must be positive, got %v", c.ScorerTimeout)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
