// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Trait derivation constants.
const (
	priceSensitivityScale = 1e-6
	trendAgeHorizonYears  = 20.0
	trendViewsSaturate    = 1000.0
)

// ProfileBuilder aggregates interaction history into a UserProfile.
type ProfileBuilder struct {
	store InteractionStore
}

// NewProfileBuilder creates a builder reading from store.
func NewProfileBuilder(store InteractionStore) *ProfileBuilder {
	return &ProfileBuilder{store: store}
}

// Build loads the user's history and derives the profile.
// A user without wishlist, booking or review history gets the new-user
// sentinel profile.
func (b *ProfileBuilder) Build(ctx context.Context, userID string) (*UserProfile, error) {
	if b.store == nil {
		return NewUserProfile(userID), nil
	}

	wishlist, err := b.store.WishlistListings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	booked, err := b.store.BookedListings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	reviewed, err := b.store.ReviewedListings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	chats, err := b.store.ChatMessageCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	history := make([]Listing, 0, len(wishlist)+len(booked)+len(reviewed))
	history = append(history, wishlist...)
	history = append(history, booked...)
	history = append(history, reviewed...)

	profile := BuildProfile(userID, history)
	profile.Inquiries = chats
	return profile, nil
}

// BuildProfile derives a profile from a history list. A listing appearing
// several times (saved and booked, say) is counted every time.
func BuildProfile(userID string, history []Listing) *UserProfile {
	if len(history) == 0 {
		return NewUserProfile(userID)
	}

	p := &UserProfile{
		UserID:          userID,
		PreferredTypes:  make(map[string]int),
		PreferredCities: make(map[string]int),
		PreferredStates: make(map[string]int),
	}

	n := float64(len(history))
	prices := make([]float64, len(history))
	distinct := make(map[string]struct{}, len(history))
	cities := make(map[string]struct{})
	totalCities := 0

	var sumBedrooms, sumBathrooms, sumArea, sumAmenity, sumTrend float64
	p.PriceRange = PriceRange{Min: math.Inf(1), Max: math.Inf(-1)}

	for i := range history {
		l := &history[i]
		price := math.Max(sanitize(l.Price), 0)
		prices[i] = price
		p.PriceRange.Min = math.Min(p.PriceRange.Min, price)
		p.PriceRange.Max = math.Max(p.PriceRange.Max, price)

		sumBedrooms += float64(l.Bedrooms)
		sumBathrooms += float64(l.Bathrooms)
		sumArea += math.Max(sanitize(l.Area), 0)
		sumAmenity += l.Amenities.Ratio()
		sumTrend += (ageScore(l.PropertyAge, trendAgeHorizonYears) +
			math.Min(float64(max(l.ViewCount, 0))/trendViewsSaturate, 1)) / 2

		distinct[l.ID] = struct{}{}

		if t := categorical(l.Type); t != unknownValue {
			p.PreferredTypes[t]++
		}
		if s := categorical(l.State); s != unknownValue {
			p.PreferredStates[s]++
		}
		if c := categorical(l.City); c != unknownValue {
			p.PreferredCities[c]++
			cities[c] = struct{}{}
			totalCities++
		}
	}

	p.AvgPrice = stat.Mean(prices, nil)
	p.AvgBedrooms = sumBedrooms / n
	p.AvgBathrooms = sumBathrooms / n
	p.AvgArea = sumArea / n
	p.TotalInteractions = len(distinct)

	minPrice := p.PriceRange.Min
	if p.TotalInteractions < 2 || minPrice <= 0 {
		p.PriceSensitivity = neutralTrait
		p.BudgetFlexibility = neutralTrait
	} else {
		p.PriceSensitivity = clamp01(stat.PopVariance(prices, nil) / minPrice * priceSensitivityScale)
		p.BudgetFlexibility = clamp01((p.PriceRange.Max - minPrice) / minPrice)
	}

	p.LocationLoyalty = locationLoyalty(len(cities), totalCities)
	p.AmenityImportance = clamp01(sumAmenity / n)
	p.RiskTolerance = clamp01((p.BudgetFlexibility + (1 - p.LocationLoyalty)) / 2)
	p.TrendFollowing = clamp01(sumTrend / n)

	return p
}

// locationLoyalty is 1 when every interaction was in one city and falls
// towards 0 as the set of cities grows.
func locationLoyalty(unique, total int) float64 {
	if total <= 1 {
		return 1
	}
	return clamp01(1 - float64(unique-1)/float64(total-1))
}
