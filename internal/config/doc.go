// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the dashboard.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: User-record API client settings
//   - SessionConfig: Where the session token comes from
//   - ProfileConfig: Polling interval, banner timing, console URL
//   - ServerConfig: Development user-record API settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DASHBOARD_*)
//   - ~/.dashboard/config.toml
//   - ~/.dashboard/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	interval := cfg.PollInterval()
package config
