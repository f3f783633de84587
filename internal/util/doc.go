// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the dashboard packages.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, WrapWidth: terminal-cell aware text handling
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
