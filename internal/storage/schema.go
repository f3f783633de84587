// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Schema creates the users table.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	username           TEXT PRIMARY KEY,
	role               TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	aws_account_status TEXT NOT NULL DEFAULT 'false',
	requested_at       INTEGER NOT NULL DEFAULT 0,
	created_at         INTEGER NOT NULL,
	updated_at         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_status ON users(aws_account_status);
`
