// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mstacm/dashboard-tui/internal/ui/styles"
)

// ButtonKind selects how a button is drawn.
type ButtonKind int

const (
	// ButtonPrimary is an actionable button
	ButtonPrimary ButtonKind = iota
	// ButtonLink opens an external URL
	ButtonLink
	// ButtonDisabled is drawn but cannot be pressed
	ButtonDisabled
)

// Button is a labelled control with an optional key hint and detail line.
type Button struct {
	Kind   ButtonKind
	Label  string
	Key    string // shown as "[key]" after the label
	Prefix string // e.g. a spinner frame
	Detail string // rendered under the button, e.g. a URL
}

// Render draws the button with theme.
func (b Button) Render(theme *styles.Theme) string {
	label := b.Label
	if b.Prefix != "" {
		label = b.Prefix + " " + label
	}

	var style lipgloss.Style
	switch b.Kind {
	case ButtonLink:
		style = theme.ButtonSuccess
	case ButtonDisabled:
		style = theme.ButtonDisabled
	default:
		style = theme.ButtonPrimary
	}

	out := style.Render(label)
	if b.Key != "" && b.Kind != ButtonDisabled {
		out = lipgloss.JoinHorizontal(lipgloss.Bottom, out,
			lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" ["+b.Key+"]"))
	}
	if b.Detail != "" {
		detail := b.Detail
		if b.Kind == ButtonLink {
			detail = styles.StatusIndicators.Link + " " + theme.LinkURL.Render(b.Detail)
		}
		out = lipgloss.JoinVertical(lipgloss.Left, out, detail)
	}
	return out
}
