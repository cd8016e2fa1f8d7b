// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package auth authenticates API callers.

Callers present an HS256 JWT in the Authorization header:

	Authorization: Bearer <token>

The token subject is the user id the recommendations are computed for. The
issuer must match SecurityConfig.JWTIssuer and the token must be within its
validity window.

When no JWT secret is configured (development only, production refuses to
start without one) the middleware runs in header mode and takes the user id
from the X-User-ID header instead.

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	mw := auth.NewMiddleware(jwtManager)
	r.With(mw.RequireUser).Get("/api/v1/recommendations", h.Recommendations)

	userID, ok := auth.UserIDFromContext(r.Context())
*/
package auth
