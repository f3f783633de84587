// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package users provides the client for the user-record API.
//
// Two operations are exposed through the API interface:
//
//   - GetUser: read the record (role, email, AWS account status) for a user
//   - RequestAccount: ask for an AWS account to be provisioned for a user
//
// Reads are retried on connection errors and 5xx responses. The account
// request is a mutation and is never retried; its failure message is meant to
// be shown to the user verbatim.
//
// # Usage
//
//	client := users.NewClient(&users.ClientConfig{BaseURL: cfg.API.BaseURL})
//	u, err := client.GetUser(ctx, "alice")
//	switch u.State() {
//	case users.StateUngranted:
//	    err = client.RequestAccount(ctx, "alice")
//	}
package users
