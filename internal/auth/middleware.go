// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/models"
)

type contextKey string

const userIDContextKey contextKey = "user-id"

// UserIDHeader carries the caller in header mode.
const UserIDHeader = "X-User-ID"

// maxUserIDLength bounds user ids taken from tokens and headers.
const maxUserIDLength = 128

// ContextWithUserID returns a copy of ctx carrying userID.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

// Middleware resolves the calling user.
type Middleware struct {
	jwtManager *JWTManager
}

// NewMiddleware creates the middleware. A nil manager selects header mode.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// HeaderMode reports whether callers are identified by the X-User-ID header.
func (m *Middleware) HeaderMode() bool {
	return m.jwtManager == nil
}

// RequireUser rejects requests without a valid caller identity and stores
// the user id in the request context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, reason := m.resolve(r)
		if userID == "" {
			logging.Ctx(r.Context()).Debug().
				Str("reason", reason).
				Str("path", r.URL.Path).
				Msg("request rejected by auth")
			writeUnauthorized(w, reason)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) resolve(r *http.Request) (userID, reason string) {
	if m.HeaderMode() {
		userID = strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			return "", "missing " + UserIDHeader + " header"
		}
		if len(userID) > maxUserIDLength {
			return "", "user id too long"
		}
		return userID, ""
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", "missing bearer token"
	}
	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("token validation failed")
		return "", "invalid token"
	}
	if len(claims.UserID()) > maxUserIDLength {
		return "", "user id too long"
	}
	return claims.UserID(), ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="propsight"`)
	w.WriteHeader(http.StatusUnauthorized)

	resp := models.APIResponse{
		Status:   models.StatusError,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    models.ErrCodeUnauthorized,
			Message: "Unauthorized: " + message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode auth error")
	}
}
