// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package services adapts Propsight components to suture.Service.

HTTPServerService turns the blocking ListenAndServe/Shutdown pair of
*http.Server into a context-driven Serve with a bounded graceful shutdown.

TickerService runs a task on a fixed interval. It backs the matrix refresh
and cache janitor services:

	refresh := services.NewMatrixRefreshService(matrixCache, 15*time.Minute, logger)
	tree.AddDataService(refresh)

Task failures are logged and retried on the next tick; they never make the
service return, so a flaky database does not burn through the supervisor's
failure budget.

The event emitter and consumer already implement Serve and String and are
added to the tree directly.
*/
package services
