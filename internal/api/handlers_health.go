// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/propsight/internal/models"
)

// healthPingTimeout bounds the database ping of a health check.
const healthPingTimeout = 2 * time.Second

// Health handles GET /health. It answers 503 when the database is
// unreachable so load balancers take the instance out of rotation.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	dbConnected := h.store.Ping(ctx) == nil

	health := models.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Database:      dbConnected,
		MatrixVersion: h.matrixVersion(),
		Uptime:        time.Since(h.startTime).Seconds(),
		Timestamp:     time.Now(),
	}

	status := http.StatusOK
	if !dbConnected {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, status, health, start)
}
