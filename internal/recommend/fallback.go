// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import "sort"

// Popularity weights.
const (
	popularityWishlistWeight = 2.0
	popularityBookingWeight  = 3.0
	popularityViewWeight     = 0.1
	popularityHalfSaturation = 100.0

	// DefaultFallbackConfidence is the confidence attached to popularity picks.
	DefaultFallbackConfidence = 0.7

	fallbackExplanation = "Popular with buyers on the platform right now"
)

// PopularityScore maps wishlist, booking and view counts to [0, 1).
// It saturates, so a listing's score does not depend on the other
// candidates in the pool.
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func PopularityScore(l Listing) float64 {
	raw := popularityWishlistWeight*float64(max(l.WishlistCount, 0)) +
		popularityBookingWeight*float64(max(l.BookingCount, 0)) +
		popularityViewWeight*float64(max(l.ViewCount, 0))
	return raw / (raw + popularityHalfSaturation)
}

// Fallback ranks candidates by popularity alone. It returns an empty slice
// only for an empty pool. A non-positive limit returns every candidate.
func Fallback(candidates []Listing, limit int) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		recs = append(recs, Recommendation{
			Listing:     candidates[i],
			Score:       PopularityScore(candidates[i]),
			Confidence:  DefaultFallbackConfidence,
			Model:       ModelPopularity,
			Type:        TypeTrending,
			Explanation: []string{fallbackExplanation},
		})
	}
	SortRecommendations(recs)
	return Truncate(recs, limit)
}

// SortRecommendations orders by score descending, then listing ID ascending.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Listing.ID < recs[j].Listing.ID
	})
}

// Truncate returns at most limit recommendations. A non-positive limit keeps
// everything.
func Truncate(recs []Recommendation, limit int) []Recommendation {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}
