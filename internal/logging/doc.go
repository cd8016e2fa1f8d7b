// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package logging configures the process-wide zerolog logger.
//
// Components receive a zerolog.Logger at construction time and derive a
// child logger with a "component" field. The package-level helpers exist
// for code that runs before wiring is complete (main, config loading) and
// for adapters such as the slog bridge used by the supervisor tree.
//
// # Configuration
//
// Level and format come from the logging section of the service config:
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//
// JSON is the default output. Console output is intended for development.
//
// # Request Context
//
// HTTP handlers store the request ID in the context; Ctx returns a logger
// carrying it:
//
//	logging.Ctx(r.Context()).Info().Str("user_id", uid).Msg("recommendations served")
package logging
