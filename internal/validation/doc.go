// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package validation validates API requests with go-playground/validator v10.
//
// A single validator instance is shared by all handlers; it caches struct
// metadata and is safe for concurrent use. Field names in errors use the
// json tag of the field, so messages match what clients send:
//
//	type recommendationsQuery struct {
//	    Limit  int    `json:"limit" validate:"gte=0,lte=100"`
//	    Filter string `json:"filter" validate:"max=512"`
//	}
//
//	if err := validation.ValidateStruct(&q); err != nil {
//	    apiErr := err.ToAPIError()
//	    // respond 400 with apiErr
//	}
//
// Custom tags:
//
//	listing_id  1 to 64 characters of letters, digits, '-', '_' or ':'
package validation
