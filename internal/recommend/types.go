// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package recommend

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors returned by the engine and its collaborators.
var (
	// ErrInvalidRequest is returned when a request cannot be served at all.
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrMatrixUnavailable is returned when no interaction matrix can be built.
	ErrMatrixUnavailable = errors.New("interaction matrix unavailable")
)

// Amenities holds the fixed amenity checklist of a listing.
type Amenities struct {
	Furnished   bool `json:"furnished"`
	Parking     bool `json:"parking"`
	Gym         bool `json:"gym"`
	Pool        bool `json:"pool"`
	Garden      bool `json:"garden"`
	Security    bool `json:"security"`
	Lift        bool `json:"lift"`
	PowerBackup bool `json:"power_backup"`
}

// amenityChecklistSize is the number of flags in Amenities.
const amenityChecklistSize = 8

// Count returns how many checklist amenities are present.
func (a Amenities) Count() int {
	n := 0
	for _, present := range []bool{
		a.Furnished, a.Parking, a.Gym, a.Pool,
		a.Garden, a.Security, a.Lift, a.PowerBackup,
	} {
		if present {
			n++
		}
	}
	return n
}

// Ratio returns the fraction of the checklist present, in [0, 1].
func (a Amenities) Ratio() float64 {
	return float64(a.Count()) / amenityChecklistSize
}

// Listing is a property listing as seen by the recommendation core.
// Zero values are the documented defaults for missing source fields:
// numeric fields default to 0, strings to "" (reported as "unknown" by
// the feature extractor) and a zero CreatedAt is treated as the oldest
// possible listing.
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discount_price,omitempty"`
	Offer         bool      `json:"offer"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Area          float64   `json:"area"`
	Type          string    `json:"type"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Amenities     Amenities `json:"amenities"`
	PropertyAge   int       `json:"property_age"`
	ViewCount     int       `json:"view_count"`
	WishlistCount int       `json:"wishlist_count"`
	BookingCount  int       `json:"booking_count"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	Images        []string  `json:"images,omitempty"`
}

// PriceRange is the span of prices a user has interacted with.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UserProfile summarizes a user's interaction history.
// It is built fresh for every request and never mutated afterwards.
type UserProfile struct {
	UserID string `json:"user_id"`

	AvgPrice     float64 `json:"avg_price"`
	AvgBedrooms  float64 `json:"avg_bedrooms"`
	AvgBathrooms float64 `json:"avg_bathrooms"`
	AvgArea      float64 `json:"avg_area"`

	PreferredTypes  map[string]int `json:"preferred_types"`
	PreferredCities map[string]int `json:"preferred_cities"`
	PreferredStates map[string]int `json:"preferred_states"`

	PriceRange        PriceRange `json:"price_range"`
	TotalInteractions int        `json:"total_interactions"`
	Inquiries         int        `json:"inquiries"`

	// Traits, all in [0, 1].
	PriceSensitivity  float64 `json:"price_sensitivity"`
	LocationLoyalty   float64 `json:"location_loyalty"`
	AmenityImportance float64 `json:"amenity_importance"`
	BudgetFlexibility float64 `json:"budget_flexibility"`
	RiskTolerance     float64 `json:"risk_tolerance"`
	TrendFollowing    float64 `json:"trend_following"`

	IsNewUser bool `json:"is_new_user"`
}

// neutralTrait is the value every trait takes when nothing is known.
const neutralTrait = 0.5

// NewUserProfile returns the sentinel profile for a user without history.
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:            userID,
		PreferredTypes:    map[string]int{},
		PreferredCities:   map[string]int{},
		PreferredStates:   map[string]int{},
		PriceSensitivity:  neutralTrait,
		LocationLoyalty:   neutralTrait,
		AmenityImportance: neutralTrait,
		BudgetFlexibility: neutralTrait,
		RiskTolerance:     neutralTrait,
		TrendFollowing:    neutralTrait,
		IsNewUser:         true,
	}
}

// Recommendation type labels.
const (
	TypePersonalized = "personalized"
	TypeEnsemble     = "ensemble"
	TypeTrending     = "trending"
)

// Recommendation is a scored listing. Values are never mutated after they
// are returned; re-ranking builds new slices.
type Recommendation struct {
	Listing     Listing            `json:"listing"`
	Score       float64            `json:"score"`
	Confidence  float64            `json:"confidence"`
	Model       string             `json:"model"`
	Models      []string           `json:"models,omitempty"`
	Type        string             `json:"recommendation_type"`
	Explanation []string           `json:"model_explanation,omitempty"`
	Insights    []string           `json:"ai_insights,omitempty"`
	ModelScores map[string]float64 `json:"model_scores,omitempty"`
}

// Model names accepted by the selector.
const (
	ModelEnsemble            = "ensemble"
	ModelMatrixFactorization = "matrix-factorization"
	ModelRandomForest        = "random-forest"
	ModelNeuralNetwork       = "neural-network"
	ModelKMeans              = "k-means"
	ModelTimeSeries          = "time-series"
	ModelPopularity          = "popularity"
)

// ModelSelector picks which scorer answers a request.
type ModelSelector string

// ParseModelSelector normalizes a selector name.
// Unrecognized names select the ensemble.
func ParseModelSelector(s string) ModelSelector {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case ModelMatrixFactorization, ModelRandomForest, ModelNeuralNetwork,
		ModelKMeans, ModelTimeSeries:
		return ModelSelector(name)
	default:
		return ModelSelector(ModelEnsemble)
	}
}

// String returns the selector name.
func (m ModelSelector) String() string {
	if m == "" {
		return ModelEnsemble
	}
	return string(m)
}

// IsEnsemble reports whether the selector asks for the combined ranking.
func (m ModelSelector) IsEnsemble() bool {
	return m.String() == ModelEnsemble
}

// Models returns every selector name in a stable order.
func Models() []string {
	return []string{
		ModelEnsemble,
		ModelMatrixFactorization,
		ModelRandomForest,
		ModelNeuralNetwork,
		ModelKMeans,
		ModelTimeSeries,
	}
}

// Scorer ranks candidate listings for a profile.
//
// Implementations must return fallback output rather than an empty slice
// whenever the candidate pool is non-empty.
type Scorer interface {
	// Name returns the model name, one of the Model* constants.
	Name() string

	// Score ranks candidates for the profile and returns at most limit results.
	Score(ctx context.Context, candidates []Listing, profile *UserProfile, limit int) ([]Recommendation, error)
}

// Request is a recommendation request.
type Request struct {
	// RequestID is used for log correlation. Generated when empty.
	RequestID string

	// UserID identifies the user. Required.
	UserID string

	// Candidates is the pool to rank, already stripped of excluded listings.
	Candidates []Listing

	// Limit is the maximum number of results. Zero selects the default.
	Limit int

	// Model selects the scorer. Empty selects the ensemble.
	Model ModelSelector
}

// Response is the result of a recommendation request.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	Profile         ProfileSummary   `json:"profile"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ProfileSummary is the part of the profile exposed to clients.
type ProfileSummary struct {
	IsNewUser         bool    `json:"is_new_user"`
	TotalInteractions int     `json:"total_interactions"`
	AvgPrice          float64 `json:"avg_price"`
	PriceSensitivity  float64 `json:"price_sensitivity"`
	LocationLoyalty   float64 `json:"location_loyalty"`
	AmenityImportance float64 `json:"amenity_importance"`
	BudgetFlexibility float64 `json:"budget_flexibility"`
	RiskTolerance     float64 `json:"risk_tolerance"`
	TrendFollowing    float64 `json:"trend_following"`
}

// SummarizeProfile extracts the client-facing part of a profile.
func SummarizeProfile(p *UserProfile) ProfileSummary {
	if p == nil {
		return ProfileSummary{}
	}
	return ProfileSummary{
		IsNewUser:         p.IsNewUser,
		TotalInteractions: p.TotalInteractions,
		AvgPrice:          p.AvgPrice,
		PriceSensitivity:  p.PriceSensitivity,
		LocationLoyalty:   p.LocationLoyalty,
		AmenityImportance: p.AmenityImportance,
		BudgetFlexibility: p.BudgetFlexibility,
		RiskTolerance:     p.RiskTolerance,
		TrendFollowing:    p.TrendFollowing,
	}
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id"`
	UserID          string    `json:"user_id"`
	Model           string    `json:"model"`
	ModelsUsed      []string  `json:"models_used"`
	FallbackUsed    bool      `json:"fallback_used"`
	TotalCandidates int       `json:"total_candidates"`
	LatencyMS       int64     `json:"latency_ms"`
	MatrixVersion   int64     `json:"matrix_version"`
	Timestamp       time.Time `json:"timestamp"`
}

// Interaction is a single weighted user-listing event used to build the
// interaction matrix.
type Interaction struct {
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Interaction kinds.
const (
	InteractionWishlist = "wishlist"
	InteractionBooking  = "booking"
	InteractionReview   = "review"
)

// InteractionStore reads a user's history. It is implemented by the
// database layer.
type InteractionStore interface {
	// WishlistListings returns listings the user saved.
	WishlistListings(ctx context.Context, userID string) ([]Listing, error)

	// BookedListings returns listings the user booked, one entry per booking.
	BookedListings(ctx context.Context, userID string) ([]Listing, error)

	// ReviewedListings returns listings the user reviewed, one entry per review.
	ReviewedListings(ctx context.Context, userID string) ([]Listing, error)

	// ChatMessageCount returns how many chat messages the user has sent.
	ChatMessageCount(ctx context.Context, userID string) (int, error)
}

// EventSink receives a notification for every served response.
// Implementations must not block.
type EventSink interface {
	RecommendationServed(ctx context.Context, resp *Response)
}
