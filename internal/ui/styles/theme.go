// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ButtonWidth matches the fixed-width buttons of the web dashboard.
const ButtonWidth = 30

// Theme holds the styled components for the profile view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Body
	Title  lipgloss.Style
	Line   lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Loader lipgloss.Style

	// Buttons
	ButtonPrimary  lipgloss.Style
	ButtonSuccess  lipgloss.Style
	ButtonDisabled lipgloss.Style
	LinkURL        lipgloss.Style

	// Footer
	Footer      lipgloss.Style
	FooterError lipgloss.Style
}

// NewTheme detects terminal capabilities and builds the styles.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		MarginBottom(1)

	t.Line = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Value = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.Loader = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	button := lipgloss.NewStyle().
		Width(ButtonWidth).
		Align(lipgloss.Center).
		Padding(0, 1).
		MarginTop(1)

	t.ButtonPrimary = button.
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)

	t.ButtonSuccess = button.
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true)

	t.ButtonDisabled = button.
		Foreground(TextMuted).
		Background(Overlay)

	t.LinkURL = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		MarginTop(1)

	t.FooterError = lipgloss.NewStyle().
		Foreground(Amber)
}

// SetSize records the terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
