// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity resolves the current user's identity from the session
// token issued by the external identity provider.
//
// The token is a JWT. Its payload carries the username that keys every
// user-record lookup. The signature is the provider's concern and is not
// checked here; the user-record API verifies the same token on every call.
//
// # Key Types
//
//   - Provider: anything that can report the current username
//   - TokenProvider: reads the token from config or a token file
//   - Static: fixed username, for tests and one-shot commands
//
// # Usage
//
//	p := identity.NewTokenProvider(cfg.Session.Token, cfg.Session.TokenFile)
//	username, err := p.Username(ctx)
//	if username == "" {
//	    // unauthenticated: nothing to fetch yet
//	}
package identity
