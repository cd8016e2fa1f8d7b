// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/propsight/internal/recommend"
)

// TypeRecommendationServed is the event type of RecommendationServed.
const TypeRecommendationServed = "recommendation.served"

// RecommendationServed describes one served response.
type RecommendationServed struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	RequestID     string    `json:"request_id"`
	UserID        string    `json:"user_id"`
	Model         string    `json:"model"`
	ModelsUsed    []string  `json:"models_used"`
	FallbackUsed  bool      `json:"fallback_used"`
	IsNewUser     bool      `json:"is_new_user"`
	Candidates    int       `json:"candidates"`
	ListingIDs    []string  `json:"listing_ids"`
	LatencyMS     int64     `json:"latency_ms"`
	MatrixVersion int64     `json:"matrix_version"`
	Timestamp     time.Time `json:"timestamp"`
}

// FromResponse builds the event for a response.
func FromResponse(resp *recommend.Response) *RecommendationServed {
	ids := make([]string, len(resp.Recommendations))
	for i := range resp.Recommendations {
		ids[i] = resp.Recommendations[i].Listing.ID
	}
	md := resp.Metadata
	return &RecommendationServed{
		EventID:       uuid.NewString(),
		Type:          TypeRecommendationServed,
		RequestID:     md.RequestID,
		UserID:        md.UserID,
		Model:         md.Model,
		ModelsUsed:    md.ModelsUsed,
		FallbackUsed:  md.FallbackUsed,
		IsNewUser:     resp.Profile.IsNewUser,
		Candidates:    md.TotalCandidates,
		ListingIDs:    ids,
		LatencyMS:     md.LatencyMS,
		MatrixVersion: md.MatrixVersion,
		Timestamp:     md.Timestamp,
	}
}

// Encode serializes the event.
func (e *RecommendationServed) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// Decode parses an event and checks its type.
func Decode(data []byte) (*RecommendationServed, error) {
	var e RecommendationServed
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if e.Type != TypeRecommendationServed {
		return nil, fmt.Errorf("decode event: unexpected type %q", e.Type)
	}
	return &e, nil
}
