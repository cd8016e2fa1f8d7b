// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

// Package models defines the JSON shapes shared by the HTTP API.
//
// Every endpoint answers with an APIResponse envelope. Successful responses
// carry the payload in Data; failures carry an APIError with a stable,
// machine-readable Code.
package models
