// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists user records for the development API.
//
// Records live in a single SQLite table (modernc.org/sqlite, no cgo). The
// store enforces the account request transitions:
//
//	"false" or ""  -> "pending"           (RequestAccount)
//	"pending"      -> ErrAlreadyPending
//	anything else  -> ErrAlreadyProvisioned
//
// Approvals go through SetStatus.
package storage
