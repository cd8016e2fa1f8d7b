// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package api provides the HTTP REST API.

Routes:

	GET    /health                              database and matrix status
	GET    /metrics                             Prometheus metrics
	GET    /api/v1/recommendations              personalized ranking (auth)
	GET    /api/v1/recommendations/trending     popularity ranking (public)
	GET    /api/v1/recommendations/models       available models
	GET    /api/v1/recommendations/stats        engine and event statistics (auth)
	GET    /api/v1/listings/{id}                one listing, counts a view
	POST   /api/v1/wishlist/{id}                save a listing (auth)
	DELETE /api/v1/wishlist/{id}                unsave a listing (auth)
	POST   /api/v1/bookings                     record a booking (auth)
	POST   /api/v1/reviews                      record a review (auth)

Every response uses the models.APIResponse envelope. Query and body
parameters are validated with the validation package; an invalid filter
expression is a 400 with code INVALID_FILTER.

Personalized rankings are cached per user, model, limit and filter. Writes
that change a user's history invalidate that user's entries.

Usage:

	h, err := api.NewHandler(api.Deps{Store: db, Engine: engine, Config: cfg})
	router := api.NewRouter(h, authMiddleware, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
