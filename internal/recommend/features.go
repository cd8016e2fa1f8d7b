// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"math"
	"strings"
	"time"
)

// Feature extraction constants.
const (
	areaEpsilon          = 1.0
	demandDivisor        = 100.0
	maxPropertyAgeYears  = 30.0
	recencyWindowDays    = 365.0
	pricePerSqFtCeiling  = 20000.0
	largeAreaSqFt        = 3000.0
	manyBedrooms         = 5.0
	reviewCountSaturates = 50.0

	metroLocationScore = 1.0
	tier1LocationScore = 0.8
	otherLocationScore = 0.6

	unknownValue = "unknown"
)

// Price category boundaries, in the listing currency.
const (
	budgetCeiling  = 2_000_000.0
	midCeiling     = 7_500_000.0
	premiumCeiling = 20_000_000.0
)

// Price categories.
const (
	PriceBudget  = "budget"
	PriceMid     = "mid"
	PricePremium = "premium"
	PriceLuxury  = "luxury"
)

var metroCities = map[string]struct{}{
	"mumbai": {}, "delhi": {}, "new delhi": {}, "bangalore": {}, "bengaluru": {},
	"chennai": {}, "kolkata": {}, "hyderabad": {}, "pune": {},
}

var tier1Cities = map[string]struct{}{
	"ahmedabad": {}, "jaipur": {}, "lucknow": {}, "chandigarh": {}, "kochi": {},
	"indore": {}, "nagpur": {}, "surat": {}, "coimbatore": {}, "gurgaon": {},
	"gurugram": {}, "noida": {}, "vadodara": {}, "bhopal": {}, "visakhapatnam": {},
}

// Features is the feature vector of a listing, optionally conditioned on a
// user profile. All fields except Price, PricePerSqFt and DiscountPercentage
// are in [0, 1].
type Features struct {
	Price              float64
	PricePerSqFt       float64
	DiscountPercentage float64

	AmenitiesScore      float64
	LocationScore       float64
	MarketDemand        float64
	SocialProof         float64
	PropertyAgeScore    float64
	RecencyScore        float64
	PriceValue          float64
	SizeScore           float64
	BedroomScore        float64
	PriceLevel          float64
	InvestmentPotential float64

	UserPriceAffinity      float64
	UserLocationPreference float64
	UserTypePreference     float64

	PropertyType  string
	City          string
	PriceCategory string
}

// Map returns the features as a flat named map.
func (f Features) Map() map[string]any {
	return map[string]any{
		"price":                  f.Price,
		"pricePerSqFt":           f.PricePerSqFt,
		"discountPercentage":     f.DiscountPercentage,
		"amenitiesScore":         f.AmenitiesScore,
		"locationScore":          f.LocationScore,
		"marketDemand":           f.MarketDemand,
		"socialProof":            f.SocialProof,
		"propertyAgeScore":       f.PropertyAgeScore,
		"recencyScore":           f.RecencyScore,
		"priceValue":             f.PriceValue,
		"sizeScore":              f.SizeScore,
		"bedroomScore":           f.BedroomScore,
		"priceLevel":             f.PriceLevel,
		"investmentPotential":    f.InvestmentPotential,
		"userPriceAffinity":      f.UserPriceAffinity,
		"userLocationPreference": f.UserLocationPreference,
		"userTypePreference":     f.UserTypePreference,
		"propertyType":           f.PropertyType,
		"city":                   f.City,
		"priceCategory":          f.PriceCategory,
	}
}

// FeatureExtractor derives Features from listings.
// The clock is only used for listing recency; it is injectable so that
// scoring is reproducible.
type FeatureExtractor struct {
	now func() time.Time
}

// NewFeatureExtractor creates an extractor. A nil clock uses time.Now.
func NewFeatureExtractor(now func() time.Time) *FeatureExtractor {
	if now == nil {
		now = time.Now
	}
	return &FeatureExtractor{now: now}
}

// Now returns the extractor's current time.
func (fe *FeatureExtractor) Now() time.Time {
	return fe.now()
}

// Extract computes the feature vector of a listing. The profile may be nil,
// in which case the user-conditioned features are 0.
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func (fe *FeatureExtractor) Extract(l Listing, profile *UserProfile) Features {
	price := math.Max(sanitize(l.Price), 0)
	area := math.Max(sanitize(l.Area), 0)

	f := Features{
		Price:            price,
		PricePerSqFt:     price / math.Max(area, areaEpsilon),
		AmenitiesScore:   l.Amenities.Ratio(),
		LocationScore:    LocationScore(l.City),
		MarketDemand:     MarketDemand(l),
		SocialProof:      clamp01(sanitize(l.Rating)/5*0.7 + math.Min(float64(l.ReviewCount)/reviewCountSaturates, 1)*0.3),
		PropertyAgeScore: ageScore(l.PropertyAge, maxPropertyAgeYears),
		RecencyScore:     fe.recency(l.CreatedAt),
		SizeScore:        clamp01(area / largeAreaSqFt),
		BedroomScore:     clamp01(float64(l.Bedrooms) / manyBedrooms),
		PropertyType:     categorical(l.Type),
		City:             categorical(l.City),
		PriceCategory:    PriceCategory(price),
	}

	discount := sanitize(l.DiscountPrice)
	if l.Offer && discount > 0 && price > 0 {
		f.DiscountPercentage = math.Min(math.Max((price-discount)/price*100, 0), 100)
	}

	f.PriceValue = 1 - math.Min(f.PricePerSqFt/pricePerSqFtCeiling, 1)
	f.PriceLevel = PriceLevel(f.PriceCategory)
	f.InvestmentPotential = clamp01(0.4*f.LocationScore + 0.3*f.MarketDemand +
		0.2*f.PropertyAgeScore + 0.1*f.DiscountPercentage/100)

	if profile != nil {
		if profile.AvgPrice > 0 {
			f.UserPriceAffinity = clamp01(1 - math.Abs(price-profile.AvgPrice)/profile.AvgPrice)
		}
		f.UserLocationPreference = frequencyRatio(profile.PreferredCities, f.City)
		f.UserTypePreference = frequencyRatio(profile.PreferredTypes, f.PropertyType)
	}

	return f
}

func (fe *FeatureExtractor) recency(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	days := fe.now().Sub(createdAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp01(1 - days/recencyWindowDays)
}

// LocationScore returns the tier constant for a city.
func LocationScore(city string) float64 {
	key := strings.ToLower(strings.TrimSpace(city))
	if _, ok := metroCities[key]; ok {
		return metroLocationScore
	}
	if _, ok := tier1Cities[key]; ok {
		return tier1LocationScore
	}
	return otherLocationScore
}

// MarketDemand blends view, wishlist and booking counts into [0, 1].
//
//nolint:gocritic // hugeParam: listing passed by value, it is read-only here
func MarketDemand(l Listing) float64 {
	raw := float64(max(l.ViewCount, 0))*0.1 +
		float64(max(l.WishlistCount, 0))*0.5 +
		float64(max(l.BookingCount, 0))*1.0
	return clamp01(raw / demandDivisor)
}

// PriceCategory buckets a price.
func PriceCategory(price float64) string {
	switch {
	case price < budgetCeiling:
		return PriceBudget
	case price < midCeiling:
		return PriceMid
	case price < premiumCeiling:
		return PricePremium
	default:
		return PriceLuxury
	}
}

// PriceLevel maps a price category to [0, 1].
func PriceLevel(category string) float64 {
	switch category {
	case PriceBudget:
		return 0
	case PriceMid:
		return 1.0 / 3.0
	case PricePremium:
		return 2.0 / 3.0
	default:
		return 1
	}
}

// ageScore maps a property age to [0, 1], newer is higher.
func ageScore(years int, horizon float64) float64 {
	if years <= 0 {
		return 1
	}
	return clamp01(1 - float64(years)/horizon)
}

func frequencyRatio(counts map[string]int, key string) float64 {
	total := 0
	hits := 0
	for k, n := range counts {
		total += n
		if strings.EqualFold(k, key) {
			hits += n
		}
	}
	if total == 0 {
		return 0
	}
	return clamp01(float64(hits) / float64(total))
}

func categorical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return unknownValue
	}
	return s
}

// sanitize replaces NaN and infinities with 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp01 bounds v to [0, 1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
