// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package config loads the service configuration.
//
// # Sources
//
// Configuration is layered with Koanf v2, later sources winning:
//
//  1. Defaults from defaultConfig()
//  2. An optional YAML file (CONFIG_PATH, then config.yaml / config.yml,
//     then /etc/propsight/config.yaml)
//  3. Environment variables, after loading an optional .env file with
//     godotenv. Only the names listed in envMappings are read.
//
// # Example config.yaml
//
//	server:
//	  port: 8080
//	database:
//	  path: /data/propsight.duckdb
//	  seed_file: /data/seed.json
//	recommend:
//	  tier: enhanced
//	  matrix_refresh_interval: 10m
//	cache:
//	  backend: redis
//	  redis_addr: localhost:6379
//	events:
//	  backend: nats
//	  nats_url: nats://localhost:4222
//
// Config is immutable after Load and safe for concurrent reads.
package config
