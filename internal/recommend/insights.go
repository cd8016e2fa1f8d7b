// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"fmt"
	"math"
	"strings"
)

// InsightsBuilder turns scores and feature values into short explanations.
type InsightsBuilder struct {
	features *FeatureExtractor
}

// NewInsightsBuilder creates a builder using the given extractor.
func NewInsightsBuilder(features *FeatureExtractor) *InsightsBuilder {
	return &InsightsBuilder{features: features}
}

// Explain returns the insights for a recommendation. The output depends only
// on the recommendation, the profile and the extractor clock.
//
//nolint:gocritic // hugeParam: rec passed by value, it is read-only here
func (b *InsightsBuilder) Explain(rec Recommendation, profile *UserProfile) []string {
	f := b.features.Extract(rec.Listing, profile)
	insights := make([]string, 0, 6)

	if profile == nil || profile.IsNewUser {
		insights = append(insights, "Popular with buyers like you")
	} else {
		switch {
		case f.UserPriceAffinity >= 0.8:
			insights = append(insights, "Priced right around your usual budget")
		case f.UserPriceAffinity >= 0.6:
			insights = append(insights, "Within reach of your typical budget")
		}
	}

	switch {
	case f.UserLocationPreference >= 0.5:
		insights = append(insights, fmt.Sprintf("In %s, one of your preferred cities", displayCity(rec.Listing.City)))
	case f.LocationScore >= metroLocationScore:
		insights = append(insights, "Prime metro location")
	}

	switch {
	case f.DiscountPercentage > 0:
		insights = append(insights, fmt.Sprintf("Currently offered at %d%% off", int(math.Round(f.DiscountPercentage))))
	case f.PriceValue >= 0.6:
		insights = append(insights, "Good value per square foot")
	}

	if f.InvestmentPotential >= 0.7 {
		insights = append(insights, "Strong investment potential")
	}

	switch {
	case f.AmenitiesScore >= 0.75:
		insights = append(insights, "Well equipped with most amenities")
	case f.AmenitiesScore >= 0.5:
		insights = append(insights, "Includes key amenities")
	}

	if rec.Score >= 0.8 {
		insights = append(insights, "Top match for your profile")
	}

	return insights
}

// Annotate returns copies of recs with insights attached.
func (b *InsightsBuilder) Annotate(recs []Recommendation, profile *UserProfile) []Recommendation {
	out := make([]Recommendation, len(recs))
	for i := range recs {
		out[i] = recs[i]
		out[i].Insights = b.Explain(recs[i], profile)
	}
	return out
}

func displayCity(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return unknownValue
	}
	return city
}
