// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the dashboard TUI.
//
// Colors are lipgloss.AdaptiveColor values so the view reads well on both
// light and dark terminals. Every colored status also carries an ASCII
// indicator (see StatusIndicators) so nothing depends on color alone.
//
// # Usage
//
//	theme := styles.NewTheme()
//	button := theme.ButtonPrimary.Render("Request AWS Access")
//	ok := styles.RenderSuccess("Requested AWS Access!")
package styles
