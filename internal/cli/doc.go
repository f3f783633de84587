// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive commands
// of the dashboard.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - JSONResponse: Machine-readable output envelope for --json
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdStatus:
//	    cli.HandleStatus(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - tui (default): the interactive profile view
//   - status: print the current user's role, email and AWS account status
//   - request: request an AWS account for the current user
//   - serve: run the development user-record API
//   - token: mint a development session token
//   - approve: set a user's account status (admin)
//   - config: show the effective configuration
//
// Commands that print data support --json.
package cli
