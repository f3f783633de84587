// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces for the dashboard TUI.

# Components

Banner (banner.go) - Auto-dismissing success/error notification. Show returns
a tea.Cmd that delivers BannerExpiredMsg; Dismiss cancels it early.

Spinner (spinner.go) - ASCII spinner wrapping bubbles/spinner.

Button (button.go) - Fixed-width primary, link and disabled buttons.

# Usage

	b := components.NewBanner(components.BannerSuccess)
	cmd := b.Show("Requested AWS Access!", 3*time.Second)
	...
	case components.BannerExpiredMsg:
		b.HandleExpired(msg)
*/
package components
