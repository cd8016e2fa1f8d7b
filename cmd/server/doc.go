// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

/*
Command server runs the Propsight recommendation API.

# Startup

Components are initialized in this order:

 1. Configuration: koanf (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB, seeded from SEED_FILE when empty
 4. Interaction matrix: restored from the BadgerDB snapshot if present
 5. Engine: tier configuration plus the six scorers
 6. Response cache: none, memory or redis
 7. Events: Watermill on gochannel or NATS JetStream
 8. Authentication: JWT, or the X-User-ID header when no secret is set
 9. Supervisor tree and HTTP server

# Supervision

	RootSupervisor ("propsight")
	├── data-layer
	│   ├── matrix-refresh
	│   └── cache-janitor (memory cache only)
	├── messaging-layer (EVENTS_ENABLED)
	│   ├── event-emitter
	│   └── event-consumer
	└── api-layer
	    └── http-server

SIGINT and SIGTERM cancel the tree. Each service gets the configured
shutdown timeout to stop.

# Flags

	-token <user-id>   print a signed JWT for the user and exit

# Examples

Development, header authentication, in-memory database:

	export ENVIRONMENT=development
	export DUCKDB_PATH=:memory:
	export SEED_FILE=./testdata/listings.json
	./propsight
	curl -H 'X-User-ID: u1' localhost:8080/api/v1/recommendations?limit=5

Production:

	export ENVIRONMENT=production
	export JWT_SECRET=$(openssl rand -base64 48)
	export CACHE_BACKEND=redis REDIS_ADDR=redis:6379
	export EVENTS_BACKEND=nats NATS_URL=nats://nats:4222
	./propsight
*/
package main
