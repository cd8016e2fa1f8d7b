// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/middleware"
	"github.com/tomtom215/propsight/internal/models"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

// Router wires the handlers into a chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mwConfig uses the defaults.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to every route, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	if router.handler.perf != nil {
		r.Use(router.handler.perf.Middleware)
	}
	r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/trending", router.handler.Trending)
			r.Get("/models", router.handler.Models)

			r.Group(func(r chi.Router) {
				r.Use(router.auth.RequireUser)
				r.Get("/", router.handler.Recommendations)
				r.Get("/stats", router.handler.Stats)
			})
		})

		r.Get("/listings/{id}", router.handler.GetListing)

		r.Group(func(r chi.Router) {
			r.Use(router.auth.RequireUser)
			r.Post("/wishlist/{id}", router.handler.AddWishlist)
			r.Delete("/wishlist/{id}", router.handler.RemoveWishlist)
			r.Post("/bookings", router.handler.CreateBooking)
			r.Post("/reviews", router.handler.CreateReview)
		})
	})

	return r
}
