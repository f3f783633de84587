// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/poll"
	"github.com/mstacm/dashboard-tui/internal/ui/components"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// Update handles a message and returns the next command.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.closed {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		return m, m.scheduler.Focus()

	case tea.BlurMsg:
		m.scheduler.Blur()
		return m, nil

	case IdentityMsg:
		return m, m.handleIdentity(msg)

	case tokenChangedMsg:
		return m, tea.Batch(m.resolveIdentity(), waitForToken(m.tokenCh))

	case watchStartedMsg:
		if msg.err != nil {
			log.Printf("TOKEN_WATCH_FAILED | file=%s err=%v", m.deps.TokenFile, msg.err)
			return m, nil
		}
		m.tokenCh = msg.ch
		return m, waitForToken(m.tokenCh)

	case poll.TickMsg:
		fire, next := m.scheduler.Handle(msg)
		if fire {
			return m, tea.Batch(next, m.startFetch())
		}
		return m, next

	case UserFetchedMsg:
		return m, m.handleFetched(msg)

	case AccessRequestedMsg:
		return m, m.handleRequested(msg)

	case ConsoleOpenedMsg:
		if msg.Err != nil {
			log.Printf("CONSOLE_OPEN_FAILED | url=%s err=%v", msg.URL, msg.Err)
			m.notice = "Could not open a browser. Visit " + msg.URL
		}
		return m, nil

	case components.BannerExpiredMsg:
		if m.success.HandleExpired(msg) || m.failure.HandleExpired(msg) {
			log.Printf("BANNER_EXPIRED | kind=%s", msg.Kind)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Request):
		return m, m.RequestAccess()

	case key.Matches(msg, m.keys.Open):
		return m, m.OpenConsole()

	case key.Matches(msg, m.keys.Dismiss):
		m.DismissSuccess()
		m.DismissError()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.startFetch()
	}
	return m, nil
}

// =============================================================================
// IDENTITY
// =============================================================================

func (m *Model) resolveIdentity() tea.Cmd {
	provider := m.deps.Identity
	if provider == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		username, err := provider.Username(ctx)
		return IdentityMsg{Username: identity.Normalize(username), Err: err}
	}
}

func (m *Model) handleIdentity(msg IdentityMsg) tea.Cmd {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return nil
		}
		log.Printf("IDENTITY_FAILED | err=%v", msg.Err)
		m.identityErr = msg.Err
		return nil
	}
	m.identityErr = nil

	if msg.Username == m.username {
		if m.username != "" && !m.scheduler.Running() {
			return m.scheduler.Start()
		}
		return nil
	}

	log.Printf("IDENTITY_CHANGED | user=%q", msg.Username)
	m.username = msg.Username
	m.resetDisplay()

	if m.username == "" {
		m.scheduler.Stop()
		return nil
	}
	return m.scheduler.Start()
}

// resetDisplay drops the previous identity's record.
func (m *Model) resetDisplay() {
	m.role, m.email, m.status = "", "", ""
	m.loaded = false
	m.fetchErr = nil
	m.fetching = false
	m.fetchSeq++
	m.spinner.Stop()
}

func (m *Model) watchToken() tea.Cmd {
	ctx, file := m.ctx, m.deps.TokenFile
	return func() tea.Msg {
		ch, err := identity.Watch(ctx, file)
		return watchStartedMsg{ch: ch, err: err}
	}
}

func waitForToken(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return tokenChangedMsg{}
	}
}

// =============================================================================
// FETCH
// =============================================================================

// startFetch issues a user-record fetch unless one is already in flight or
// there is no identity to key it by.
func (m *Model) startFetch() tea.Cmd {
	if m.username == "" || m.fetching || m.deps.API == nil {
		return nil
	}
	m.fetching = true
	m.fetchSeq++

	ctx, api := m.ctx, m.deps.API
	seq, username := m.fetchSeq, m.username
	return func() tea.Msg {
		u, err := api.GetUser(ctx, username)
		return UserFetchedMsg{Seq: seq, Username: username, User: u, Err: err}
	}
}

func (m *Model) handleFetched(msg UserFetchedMsg) tea.Cmd {
	if msg.Seq == m.fetchSeq {
		m.fetching = false
	}
	if m.username == "" || msg.Username != m.username {
		return nil
	}

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return nil
		}
		if m.fetchErr == nil || m.fetchErr.Error() != msg.Err.Error() {
			log.Printf("USER_FETCH_FAILED | user=%s err=%v", msg.Username, msg.Err)
		}
		m.fetchErr = msg.Err
		return nil
	}
	if msg.User == nil {
		return nil
	}

	if m.loaded && msg.User.AWSAccountStatus != m.status {
		log.Printf("ACCOUNT_STATUS_CHANGED | user=%s from=%q to=%q",
			msg.Username, m.status, msg.User.AWSAccountStatus)
	}
	m.role = msg.User.Role
	m.email = msg.User.Email
	m.status = msg.User.AWSAccountStatus
	m.loaded = true
	m.lastFetch = time.Now()
	m.fetchErr = nil

	return m.syncSpinner()
}

// syncSpinner runs the spinner only while the pending button or an in-flight
// request is drawn.
func (m *Model) syncSpinner() tea.Cmd {
	if m.requesting || m.State() == StatePending {
		return m.spinner.Start()
	}
	m.spinner.Stop()
	return nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// RequestAccess submits an AWS account request for the current user. It is
// a no-op unless the Request AWS Access button is showing and no request is
// already in flight. The account status is not changed locally; the next
// poll picks up the backend's new value.
func (m *Model) RequestAccess() tea.Cmd {
	if m.closed || m.requesting || m.deps.API == nil {
		return nil
	}
	if m.username == "" || m.State() != StateUngranted {
		return nil
	}
	m.requesting = true

	ctx, api, username := m.ctx, m.deps.API, m.username
	log.Printf("ACCESS_REQUEST_SENT | user=%s", username)
	return tea.Batch(m.spinner.Start(), func() tea.Msg {
		err := api.RequestAccount(ctx, username)
		return AccessRequestedMsg{Username: username, Err: err}
	})
}

func (m *Model) handleRequested(msg AccessRequestedMsg) tea.Cmd {
	m.requesting = false
	spin := m.syncSpinner()

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return spin
		}
		text := users.ErrorMessagePrefix + users.Describe(msg.Err)
		log.Printf("ACCESS_REQUEST_FAILED | user=%s err=%v", msg.Username, msg.Err)
		return tea.Batch(spin, m.failure.Show(text, m.opts.ErrorDuration))
	}

	log.Printf("ACCESS_REQUEST_OK | user=%s", msg.Username)
	return tea.Batch(
		spin,
		m.success.Show(users.SuccessMessage, m.opts.SuccessDuration),
		m.scheduler.Now(),
	)
}

// DismissSuccess hides the success banner and cancels its timer.
func (m *Model) DismissSuccess() {
	m.success.Dismiss()
}

// DismissError hides the error banner and cancels its timer.
func (m *Model) DismissError() {
	m.failure.Dismiss()
}

// OpenConsole launches the AWS console in the browser. Only available in
// the granted state.
func (m *Model) OpenConsole() tea.Cmd {
	if m.State() != StateGranted {
		return nil
	}
	url, open := m.opts.ConsoleURL, m.deps.Opener
	m.notice = ""
	return func() tea.Msg {
		return ConsoleOpenedMsg{URL: url, Err: open(url)}
	}
}
