// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package recommend implements the listing recommendation engine.
//
// # Architecture
//
// Five independent models score a candidate pool for a user and an ensemble
// merges their rankings:
//
//   - matrix-factorization: similarity over the wishlist/booking matrix
//   - random-forest: weighted compatibility sub-scores
//   - neural-network: fixed layered combination of listing features
//   - k-means: compatibility with the user's buyer segment
//   - time-series: recency, demand and seasonality
//
// The model implementations live in the scorers subpackage and register
// with the Engine through the Scorer interface.
//
// # Degradation
//
// Recommend never fails for a valid request. Users without history get the
// popularity ranking (see Fallback) without running any model. Model errors,
// model panics and empty model output degrade to the same ranking for that
// model. Only a missing user ID is rejected.
//
// # Determinism
//
// For a fixed profile, candidate pool, interaction matrix and clock the
// output is identical across runs. Ties are broken by listing ID and the
// ensemble sums contributions in model-name order.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	features := recommend.NewFeatureExtractor(nil)
//	engine, err := recommend.NewEngine(cfg, recommend.NewProfileBuilder(store),
//		recommend.NewInsightsBuilder(features), logger)
//	for _, s := range scorers.Default(cfg, features, matrixCache, logger) {
//		engine.RegisterScorer(s)
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: "u1", Candidates: pool})
package recommend
