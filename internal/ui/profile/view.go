// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mstacm/dashboard-tui/internal/ui/components"
	"github.com/mstacm/dashboard-tui/internal/ui/styles"
	"github.com/mstacm/dashboard-tui/internal/users"
	"github.com/mstacm/dashboard-tui/internal/util"
)

// maxErrorRunes caps error text shown in the footer.
const maxErrorRunes = 160

// Labels drawn in the body.
const (
	LoadingText      = "Loading..."
	LoggedInLabel    = "Logged in as: "
	AccessLevelLabel = "Access Level: "
	RequestLabel     = "Request AWS Access"
	PendingLabel     = "Waiting for approval..."
	ConsoleLabel     = "Open AWS Console"
	FetchFailedLabel = "Last refresh failed: "
)

// View renders the banner overlay above the centered body.
func (m *Model) View() string {
	if m.closed {
		return ""
	}

	sections := make([]string, 0, 3)
	if overlay := components.RenderBannerStack(m.width, &m.success, &m.failure); overlay != "" {
		sections = append(sections, overlay)
	}
	sections = append(sections, m.center(m.renderBody()))
	sections = append(sections, m.center(m.renderFooter()))

	return strings.Join(sections, "\n")
}

func (m *Model) center(block string) string {
	if m.width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, block)
}

// fit truncates a body line to the window, leaving a small margin.
func (m *Model) fit(line string) string {
	if m.width <= 4 || util.StringWidth(line) <= m.width-4 {
		return line
	}
	return util.TruncateWidth(line, m.width-4)
}

func (m *Model) renderBody() string {
	title := m.theme.Title.Render(styles.StatusIndicators.Account + " Profile")

	if m.State() == StateLoading {
		return lipgloss.JoinVertical(lipgloss.Center, title, m.theme.Loader.Render(LoadingText))
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		title,
		m.theme.Line.Render(m.fit(LoggedInLabel+m.email)),
		m.theme.Line.Render(m.fit(AccessLevelLabel+m.role)),
		m.renderControl(),
	)
}

// renderControl draws the single control for the current account state.
func (m *Model) renderControl() string {
	var b components.Button

	switch m.State() {
	case StatePending:
		b = components.Button{
			Kind:   components.ButtonDisabled,
			Label:  PendingLabel,
			Prefix: m.spinner.Frame(),
		}
	case StateGranted:
		b = components.Button{
			Kind:   components.ButtonLink,
			Label:  ConsoleLabel,
			Key:    "o",
			Detail: m.opts.ConsoleURL,
		}
	case StateUngranted:
		b = components.Button{
			Kind:  components.ButtonPrimary,
			Label: RequestLabel,
			Key:   "enter",
		}
		if m.requesting {
			b.Kind = components.ButtonDisabled
			b.Prefix = m.spinner.Frame()
		}
	default:
		return ""
	}
	return b.Render(m.theme)
}

func (m *Model) renderFooter() string {
	var lines []string

	if m.identityErr != nil {
		lines = append(lines, m.theme.FooterError.Render(
			styles.StatusIndicators.Warning+" Session error: "+util.TruncateRunes(m.identityErr.Error(), maxErrorRunes)))
	}
	if m.fetchErr != nil {
		lines = append(lines, m.theme.FooterError.Render(
			styles.StatusIndicators.Warning+" "+FetchFailedLabel+util.TruncateRunes(users.Describe(m.fetchErr), maxErrorRunes)))
	}
	if m.notice != "" {
		lines = append(lines, m.theme.FooterError.Render(styles.StatusIndicators.Info+" "+m.notice))
	}
	if m.loaded && !m.lastFetch.IsZero() && m.fetchErr == nil {
		lines = append(lines, "Updated "+m.lastFetch.Format("15:04:05"))
	}

	keys := m.keys.forState(m.State(), m.success.Visible() || m.failure.Visible())
	lines = append(lines, m.help.View(keys))

	return m.theme.Footer.Render(strings.Join(lines, "\n"))
}
