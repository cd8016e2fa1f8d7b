// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/database"
	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/models"
)

// listingIDFromPath validates the {id} URL parameter.
func listingIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := models.ListingIDParam{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&p); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return "", false
	}
	return p.ID, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Authentication required", nil)
	}
	return userID, ok
}

// GetListing handles GET /api/v1/listings/{id}. Each call counts as a view,
// which feeds market demand.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := listingIDFromPath(w, r)
	if !ok {
		return
	}

	listing, err := h.store.GetListing(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Listing")
		return
	}
	if err := h.store.RecordView(r.Context(), id); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("listing_id", id).Msg("failed to record view")
	} else {
		listing.ViewCount++
	}

	respondSuccess(w, r, http.StatusOK, listing, start)
}

// AddWishlist handles POST /api/v1/wishlist/{id}.
func (h *Handler) AddWishlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := listingIDFromPath(w, r)
	if !ok {
		return
	}

	added, err := h.store.AddWishlist(r.Context(), database.WishlistEntry{UserID: userID, ListingID: id})
	if err != nil {
		respondStoreError(w, r, err, "Listing")
		return
	}
	if added {
		h.invalidateUser(r, userID)
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondSuccess(w, r, status, models.WishlistResult{ListingID: id, Saved: true, Changed: added}, start)
}

// RemoveWishlist handles DELETE /api/v1/wishlist/{id}.
func (h *Handler) RemoveWishlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := listingIDFromPath(w, r)
	if !ok {
		return
	}

	removed, err := h.store.RemoveWishlist(r.Context(), userID, id)
	if err != nil {
		respondStoreError(w, r, err, "Listing")
		return
	}
	if removed {
		h.invalidateUser(r, userID)
	}
	respondSuccess(w, r, http.StatusOK, models.WishlistResult{ListingID: id, Saved: false, Changed: removed}, start)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.BookingRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}

	booking, err := h.store.AddBooking(r.Context(), database.Booking{
		UserID:    userID,
		ListingID: req.ListingID,
		Status:    req.Status,
	})
	if err != nil {
		respondStoreError(w, r, err, "Listing")
		return
	}
	h.invalidateUser(r, userID)
	respondSuccess(w, r, http.StatusCreated, booking, start)
}

// CreateReview handles POST /api/v1/reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, apiErr)
		return
	}

	review, err := h.store.AddReview(r.Context(), database.Review{
		UserID:    userID,
		ListingID: req.ListingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondStoreError(w, r, err, "Listing")
		return
	}
	h.invalidateUser(r, userID)
	respondSuccess(w, r, http.StatusCreated, review, start)
}
