// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the dashboard TUI.
//
// This file implements auto-dismissing banners. A banner stays visible for a
// fixed duration after Show and hides itself when its expiry tick arrives.
// Each Show or Dismiss bumps a sequence number, so a tick scheduled for an
// earlier showing is ignored.
package components

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mstacm/dashboard-tui/internal/ui/styles"
	"github.com/mstacm/dashboard-tui/internal/util"
)

// =============================================================================
// BANNER TYPES
// =============================================================================

// BannerKind selects the banner's color and indicator.
type BannerKind int

const (
	// BannerSuccess is an emerald confirmation banner
	BannerSuccess BannerKind = iota
	// BannerError is a rose failure banner
	BannerError
)

// String returns the kind name used in logs.
func (k BannerKind) String() string {
	switch k {
	case BannerSuccess:
		return "success"
	case BannerError:
		return "error"
	default:
		return "unknown"
	}
}

// Ticker schedules fn after d. tea.Tick satisfies it.
type Ticker func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// BannerExpiredMsg is delivered when a banner's display time elapses.
type BannerExpiredMsg struct {
	Kind BannerKind
	Seq  int
}

// =============================================================================
// BANNER
// =============================================================================

// Banner is a single transient notification slot. The zero value is not
// usable; construct with NewBanner.
type Banner struct {
	kind     BannerKind
	message  string
	visible  bool
	seq      int
	shownAt  time.Time
	duration time.Duration

	tick Ticker
	now  func() time.Time
}

// NewBanner creates a hidden banner of the given kind.
func NewBanner(kind BannerKind) Banner {
	return Banner{
		kind: kind,
		tick: tea.Tick,
		now:  time.Now,
	}
}

// SetTicker replaces the timer used for auto-dismissal.
func (b *Banner) SetTicker(t Ticker) {
	if t == nil {
		t = tea.Tick
	}
	b.tick = t
}

// Show makes the banner visible with message and returns the command that
// hides it after d. Showing a visible banner restarts its timer.
func (b *Banner) Show(message string, d time.Duration) tea.Cmd {
	b.seq++
	b.message = message
	b.visible = true
	b.shownAt = b.now()
	b.duration = d

	kind, seq := b.kind, b.seq
	return b.tick(d, func(time.Time) tea.Msg {
		return BannerExpiredMsg{Kind: kind, Seq: seq}
	})
}

// Dismiss hides the banner now. Its pending expiry becomes a no-op.
func (b *Banner) Dismiss() {
	if !b.visible {
		return
	}
	b.seq++
	b.visible = false
}

// HandleExpired hides the banner if msg belongs to its current showing.
// It reports whether the banner was hidden.
func (b *Banner) HandleExpired(msg BannerExpiredMsg) bool {
	if msg.Kind != b.kind || msg.Seq != b.seq || !b.visible {
		return false
	}
	b.visible = false
	return true
}

// Kind returns the banner kind.
func (b *Banner) Kind() BannerKind { return b.kind }

// Visible reports whether the banner is showing.
func (b *Banner) Visible() bool { return b.visible }

// Message returns the text of the current or last showing.
func (b *Banner) Message() string { return b.message }

// Seq returns the current showing's sequence number.
func (b *Banner) Seq() int { return b.seq }

// Duration returns how long the current showing lasts.
func (b *Banner) Duration() time.Duration { return b.duration }

// Remaining returns the time left before auto-dismissal.
func (b *Banner) Remaining() time.Duration {
	if !b.visible {
		return 0
	}
	remaining := b.duration - b.now().Sub(b.shownAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// BANNER RENDERING
// =============================================================================

// RenderBanner renders a visible banner as a bordered box. Hidden banners
// render as the empty string.
func RenderBanner(b *Banner, width int) string {
	if b == nil || !b.visible {
		return ""
	}

	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch b.kind {
	case BannerError:
		color = styles.Rose
		icon = styles.StatusIndicators.Error
	default:
		color = styles.Emerald
		icon = styles.StatusIndicators.Success
	}

	iconStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	message := util.WrapWidth(b.message, maxWidth-10)
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		iconStyle.Render(icon+" "),
		messageStyle.Render(message),
	)

	hints := []string{styles.StatusIndicators.Close + " Dismiss"}
	if secs := int(b.Remaining().Round(time.Second) / time.Second); secs > 0 {
		hints = append(hints, strconv.Itoa(secs)+"s")
	}
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	content += "\n" + hintStyle.Render(strings.Join(hints, "  "))

	box := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		MaxWidth(maxWidth + 4)

	return box.Render(content)
}

// RenderBannerStack renders the visible banners stacked and centered
// horizontally within width, for placement at the top of the screen.
func RenderBannerStack(width int, banners ...*Banner) string {
	rendered := make([]string, 0, len(banners))
	for _, b := range banners {
		if s := RenderBanner(b, width); s != "" {
			rendered = append(rendered, s)
		}
	}
	if len(rendered) == 0 {
		return ""
	}

	stack := lipgloss.JoinVertical(lipgloss.Center, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, stack)
	}
	return stack
}
