// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package scorers implements the per-model scoring functions of the
// recommendation ensemble.
//
// Each scorer implements recommend.Scorer and can be registered with the
// engine on its own. None of them learn anything: every model is a fixed,
// deterministic formula over the listing feature vector and the user
// profile.
//
// # Models
//
//   - MatrixFactorization: user-user cosine similarity over the shared
//     wishlist/booking matrix
//   - RandomForest: weighted blend of five compatibility sub-scores
//   - NeuralNetwork: three fixed elementwise layers and a mean reduction
//   - KMeans: compatibility with a named behavioral cluster
//   - TimeSeries: market trend, seasonality and investment potential
//
// # Shared Behavior
//
// Every scorer returns the popularity ranking for new users and filters by
// its own minimum score. Listings that pass are ordered by score and then
// listing ID; when fewer than the limit pass, the most popular rejected
// listings fill the remaining slots. A panicking model function yields the
// popularity ranking.
package scorers
