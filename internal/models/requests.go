// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package models

import (
	"time"

	"github.com/tomtom215/propsight/internal/recommend"
)

// RecommendationsQuery holds the query parameters of
// GET /api/v1/recommendations.
type RecommendationsQuery struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Model  string `json:"model" validate:"max=64"`
	Filter string `json:"filter" validate:"max=512"`
}

// TrendingQuery holds the query parameters of
// GET /api/v1/recommendations/trending.
type TrendingQuery struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Filter string `json:"filter" validate:"max=512"`
}

// BookingRequest is the body of POST /api/v1/bookings.
type BookingRequest struct {
	ListingID string `json:"listing_id" validate:"required,listing_id"`
	Status    string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

// ReviewRequest is the body of POST /api/v1/reviews.
type ReviewRequest struct {
	ListingID string  `json:"listing_id" validate:"required,listing_id"`
	Rating    float64 `json:"rating" validate:"gte=1,lte=5"`
	Comment   string  `json:"comment" validate:"max=2000"`
}

// ListingIDParam validates a listing id taken from the URL path.
type ListingIDParam struct {
	ID string `json:"id" validate:"required,listing_id"`
}

// WishlistResult is returned by the wishlist endpoints.
type WishlistResult struct {
	ListingID string `json:"listing_id"`
	Saved     bool   `json:"saved"`
	Changed   bool   `json:"changed"`
}

// TrendingResponse is returned by the trending endpoint.
type TrendingResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	TotalCandidates int                        `json:"total_candidates"`
	Timestamp       time.Time                  `json:"timestamp"`
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	Name         string  `json:"name"`
	Registered   bool    `json:"registered"`
	Weight       float64 `json:"weight,omitempty"`
	AccuracyHint float64 `json:"accuracy_hint,omitempty"`
}

// ModelsResponse is returned by the models endpoint.
type ModelsResponse struct {
	Tier    string      `json:"tier"`
	Default string      `json:"default"`
	Models  []ModelInfo `json:"models"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Database      bool      `json:"database_connected"`
	MatrixVersion int64     `json:"matrix_version"`
	Uptime        float64   `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
}
