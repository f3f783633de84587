// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a development stand-in for the user-record API.
//
// Endpoints (mounted under /api, /health also at the root):
//   - GET  /health                       - Liveness and record count
//   - GET  /users/{id}                   - Read a user record
//   - POST /users/{id}/request-account   - Request an AWS account
//   - PUT  /admin/users/{id}             - Create or edit a record (admin)
//
// Every endpoint except /health requires an HS256 bearer token carrying
// "username" and "role" claims. Users may read and request only for
// themselves; the "admin" role may act on anyone. Errors are returned as
// {"error": "<message>"}.
//
// Middleware (outermost first): recovery, request ID, logging, security
// headers, CORS, per-client rate limiting.
package server
