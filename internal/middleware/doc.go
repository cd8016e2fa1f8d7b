// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    logging context
  - PrometheusMetrics: records request counts and latency per chi route
    pattern, so path parameters do not create new label values
  - PerformanceMonitor: keeps a sliding window of recent request durations
    and reports per-route percentiles for the stats endpoint

All middleware has the chi signature func(http.Handler) http.Handler.
*/
package middleware
