// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Package supervisor runs Propsight's long-lived services under suture v4.

The tree has three layers, each its own supervisor:

	RootSupervisor ("propsight")
	├── DataSupervisor ("data-layer")
	│   ├── matrix-refresh   rebuilds the interaction matrix on a schedule
	│   └── cache-janitor    drops expired entries (memory cache only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── event-emitter    publishes recommendation.served events
	│   └── event-consumer   aggregates per-model statistics (if enabled)
	└── APISupervisor ("api-layer")
	    └── http-server

Services that return an error are restarted with suture's backoff. A
service that returns nil is not restarted. Supervisor events are logged
through sutureslog, which takes a *slog.Logger; cmd/server passes one
backed by the process zerolog logger.

The service wrappers live in the services subpackage.
*/
package supervisor
