// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto at
package init and exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendations:
  - propsight_recommendations_total{model, outcome}
  - propsight_recommendation_duration_seconds{model}
  - propsight_recommendation_results{model}
  - propsight_scorer_duration_seconds{scorer}
  - propsight_scorer_fallbacks_total{scorer, reason}

Interaction matrix:
  - propsight_matrix_rebuilds_total{status}
  - propsight_matrix_rebuild_duration_seconds
  - propsight_matrix_users, propsight_matrix_listings, propsight_matrix_version

Store, cache and API:
  - propsight_db_query_duration_seconds{operation}
  - propsight_db_query_errors_total{operation}
  - propsight_circuit_breaker_state{name}
  - propsight_response_cache_total{backend, result}
  - propsight_events_total{topic, status}
  - propsight_api_requests_total{method, endpoint, status}
  - propsight_api_request_duration_seconds{method, endpoint}

Helper functions such as RecordRecommendation wrap the raw collectors so
that call sites stay short.
*/
package metrics
