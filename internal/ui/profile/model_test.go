// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/users"
)

func aliceAPI(status string) *fakeAPI {
	api := newFakeAPI()
	api.set("alice", users.User{Role: "member", Email: "a@x.com", AWSAccountStatus: status})
	return api
}

// =============================================================================
// RENDER STATES
// =============================================================================

func TestScenario_UngrantedShowsRequestButton(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false")).start()

	require.Equal(t, StateUngranted, h.m.State())
	view := h.m.View()
	assert.Contains(t, view, "Logged in as: a@x.com")
	assert.Contains(t, view, "Access Level: member")
	assert.Contains(t, view, "Request AWS Access")
	assert.NotContains(t, view, "Waiting for approval...")
	assert.NotContains(t, view, "Open AWS Console")
}

func TestScenario_PendingShowsDisabledControl(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("pending")).start()

	require.Equal(t, StatePending, h.m.State())
	view := h.m.View()
	assert.Contains(t, view, "Waiting for approval...")
	assert.NotContains(t, view, "Request AWS Access")

	assert.Nil(t, h.m.RequestAccess(), "pending state must not offer a request")
	h.key("enter")
	assert.Empty(t, h.api.requests)
}

func TestScenario_GrantedShowsConsoleLink(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("granted")).start()

	require.Equal(t, StateGranted, h.m.State())
	view := h.m.View()
	assert.Contains(t, view, "Open AWS Console")
	assert.Contains(t, view, "https://mstacm.awsapps.com/start#/")

	h.key("o")
	assert.Equal(t, []string{"https://mstacm.awsapps.com/start#/"}, h.opened)
}

func TestRenderState_ExactlyOneBranch(t *testing.T) {
	tests := []struct {
		status string
		want   RenderState
		marker string
	}{
		{"false", StateUngranted, RequestLabel},
		{"", StateGranted, ConsoleLabel},
		{"pending", StatePending, PendingLabel},
		{"granted", StateGranted, ConsoleLabel},
		{"123456789012", StateGranted, ConsoleLabel},
		{"true", StateGranted, ConsoleLabel},
	}

	markers := []string{LoadingText, RequestLabel, PendingLabel, ConsoleLabel}

	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			h := newHarness(t, "alice", aliceAPI(tt.status)).start()
			assert.Equal(t, tt.want, h.m.State())

			body := h.m.renderBody()
			for _, mk := range markers {
				if mk == tt.marker {
					assert.Contains(t, body, mk)
				} else {
					assert.NotContains(t, body, mk)
				}
			}
		})
	}
}

func TestLoading_BeforeFirstFetch(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false"))

	assert.Equal(t, StateLoading, h.m.State())
	assert.Contains(t, h.m.View(), "Loading...")
	assert.NotContains(t, h.m.View(), "Logged in as:")
}

// =============================================================================
// IDENTITY
// =============================================================================

func TestEmptyIdentity_NeverPopulated(t *testing.T) {
	api := aliceAPI("false")
	api.set("", users.User{Role: "ghost", Email: "ghost@x.com", AWSAccountStatus: "false"})
	h := newHarness(t, "", api).start()

	h.advance(5 * time.Second)
	assert.Zero(t, api.getCount(), "no fetch without identity")
	assert.Equal(t, StateLoading, h.m.State())

	h.send(UserFetchedMsg{Username: "", User: &users.User{Role: "ghost", Email: "ghost@x.com"}})
	assert.Empty(t, h.m.Role())
	assert.Empty(t, h.m.Email())
	assert.Equal(t, StateLoading, h.m.State())
}

func TestFetchForOtherIdentity_Discarded(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false")).start()

	h.send(UserFetchedMsg{
		Username: "bob",
		User:     &users.User{Role: "admin", Email: "b@x.com", AWSAccountStatus: "granted"},
	})
	assert.Equal(t, "a@x.com", h.m.Email())
	assert.Equal(t, "member", h.m.Role())
	assert.Equal(t, StateUngranted, h.m.State())
}

func TestIdentityChange_RefetchesForNewUser(t *testing.T) {
	api := aliceAPI("false")
	api.set("bob", users.User{Role: "admin", Email: "b@x.com", AWSAccountStatus: "granted"})
	h := newHarness(t, "alice", api).start()
	require.Equal(t, "a@x.com", h.m.Email())

	h.send(IdentityMsg{Username: "bob"})
	assert.Equal(t, "bob", h.m.Username())
	assert.Equal(t, "b@x.com", h.m.Email())
	assert.Equal(t, StateGranted, h.m.State())
}

func TestIdentityError_KeepsLoading(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false"))
	h.send(IdentityMsg{Err: errors.New("token unreadable")})

	assert.Equal(t, StateLoading, h.m.State())
	assert.Contains(t, h.m.View(), "Session error: token unreadable")
}

// =============================================================================
// POLLING
// =============================================================================

func TestPolling_RefetchesOnInterval(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()
	require.Equal(t, 1, api.getCount())

	h.advance(500 * time.Millisecond)
	assert.Equal(t, 2, api.getCount())

	api.set("alice", users.User{Role: "member", Email: "a@x.com", AWSAccountStatus: "pending"})
	h.advance(500 * time.Millisecond)
	assert.Equal(t, StatePending, h.m.State())
}

func TestPolling_PausedWhileBlurred(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()

	h.send(tea.BlurMsg{})
	before := api.getCount()
	h.advance(3 * time.Second)
	assert.Equal(t, before, api.getCount(), "no fetches while unfocused")

	h.send(tea.FocusMsg{})
	assert.Equal(t, before+1, api.getCount(), "refetch on focus")

	h.advance(500 * time.Millisecond)
	assert.Equal(t, before+2, api.getCount(), "interval resumes")
}

func TestRefetch_PreservesStaleValues(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()

	// fetch in flight: values stay
	cmd := h.m.startFetch()
	require.NotNil(t, cmd)
	assert.True(t, h.m.Fetching())
	assert.Equal(t, "member", h.m.Role())
	assert.Equal(t, "a@x.com", h.m.Email())
	assert.Equal(t, "false", h.m.AccountStatus())
	assert.Equal(t, StateUngranted, h.m.State())
	assert.Nil(t, h.m.startFetch(), "fetches do not overlap")
	h.run(cmd)

	// failed refetch: values stay, footer explains
	api.getErr = &users.APIError{Type: users.ErrTypeServer, Status: 503, Message: "service unavailable"}
	h.advance(500 * time.Millisecond)
	assert.Equal(t, "member", h.m.Role())
	assert.Equal(t, StateUngranted, h.m.State())
	assert.Contains(t, h.m.View(), "Last refresh failed: service unavailable")

	api.getErr = nil
	h.advance(500 * time.Millisecond)
	assert.NotContains(t, h.m.View(), "Last refresh failed")
}

func TestRefreshKey_FetchesNow(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()
	before := api.getCount()

	h.key("R")
	assert.Equal(t, before+1, api.getCount())
}

// =============================================================================
// REQUEST ACCESS
// =============================================================================

func TestRequestAccess_SuccessBannerAutoHides(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()

	h.key("enter")
	require.Equal(t, []string{"alice"}, api.requests)

	banner := h.m.SuccessBanner()
	require.True(t, banner.Visible())
	assert.Equal(t, "Requested AWS Access!", banner.Message())
	assert.Contains(t, h.m.View(), "Requested AWS Access!")
	assert.False(t, h.m.ErrorBanner().Visible())

	h.advance(2999 * time.Millisecond)
	assert.True(t, banner.Visible(), "still visible before 3000ms")

	h.advance(time.Millisecond)
	assert.False(t, banner.Visible(), "hidden at 3000ms")
	assert.NotContains(t, h.m.View(), "Requested AWS Access!")
}

func TestRequestAccess_FailureBannerAutoHides(t *testing.T) {
	api := aliceAPI("false")
	api.requestErr = errors.New("network down")
	h := newHarness(t, "alice", api).start()

	h.key("r")

	banner := h.m.ErrorBanner()
	require.True(t, banner.Visible())
	assert.Equal(t, "Error requesting account access: network down", banner.Message())
	assert.False(t, h.m.SuccessBanner().Visible())

	h.advance(4999 * time.Millisecond)
	assert.True(t, banner.Visible(), "still visible before 5000ms")

	h.advance(time.Millisecond)
	assert.False(t, banner.Visible(), "hidden at 5000ms")
}

func TestRequestAccess_APIErrorMessage(t *testing.T) {
	api := aliceAPI("false")
	api.requestErr = &users.APIError{Type: users.ErrTypeConflict, Status: 409, Message: "account request already pending"}
	h := newHarness(t, "alice", api).start()

	h.key("enter")
	assert.Equal(t, "Error requesting account access: account request already pending",
		h.m.ErrorBanner().Message())
}

func TestRequestAccess_NoOptimisticMutation(t *testing.T) {
	api := aliceAPI("false")
	api.promote = true
	h := newHarness(t, "alice", api).start()

	cmd := h.m.RequestAccess()
	require.NotNil(t, cmd)
	msg := cmd()

	_, next := h.m.Update(msg)
	assert.Equal(t, "false", h.m.AccountStatus(), "status unchanged until the next fetch")
	assert.Equal(t, StateUngranted, h.m.State())

	h.run(next)
	assert.Equal(t, StatePending, h.m.State(), "refetch observes backend change")
}

func TestRequestAccess_IgnoredWhileInFlight(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false")).start()

	first := h.m.RequestAccess()
	require.NotNil(t, first)
	assert.True(t, h.m.Requesting())
	assert.True(t, h.m.spinner.IsActive(), "spinner runs while the request is in flight")
	assert.Nil(t, h.m.RequestAccess())
	assert.Contains(t, h.m.View(), RequestLabel)

	h.run(first)
	assert.False(t, h.m.Requesting())
	assert.False(t, h.m.spinner.IsActive(), "spinner stops once the request settles")
	assert.Len(t, h.api.requests, 1)
}

func TestRequestAccess_FailureStopsSpinner(t *testing.T) {
	api := aliceAPI("false")
	api.requestErr = errors.New("network down")
	h := newHarness(t, "alice", api).start()

	cmd := h.m.RequestAccess()
	require.True(t, h.m.spinner.IsActive())

	h.run(cmd)
	assert.False(t, h.m.spinner.IsActive())
	assert.True(t, h.m.ErrorBanner().Visible())
}

func TestRequestAccess_NoopWhileLoading(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false"))
	assert.Nil(t, h.m.RequestAccess())
}

// =============================================================================
// BANNER DISMISSAL
// =============================================================================

func TestDismiss_HidesImmediately(t *testing.T) {
	api := aliceAPI("false")
	api.requestErr = errors.New("network down")
	h := newHarness(t, "alice", api).start()

	h.key("enter")
	require.True(t, h.m.ErrorBanner().Visible())

	h.advance(10 * time.Millisecond)
	h.m.DismissError()
	assert.False(t, h.m.ErrorBanner().Visible())
	assert.NotContains(t, h.m.View(), "network down")
}

func TestDismissKey_HidesBoth(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false")).start()

	h.key("enter")
	require.True(t, h.m.SuccessBanner().Visible())

	h.key("x")
	assert.False(t, h.m.SuccessBanner().Visible())
	assert.False(t, h.m.ErrorBanner().Visible())
}

func TestDismiss_StaleTimerDoesNotHideNewBanner(t *testing.T) {
	api := aliceAPI("false")
	api.requestErr = errors.New("first")
	h := newHarness(t, "alice", api).start()

	h.key("enter")
	h.advance(time.Second)
	h.m.DismissError()

	api.requestErr = errors.New("second")
	h.key("enter")
	require.True(t, h.m.ErrorBanner().Visible())

	// the first banner's timer comes due here
	h.advance(4 * time.Second)
	assert.True(t, h.m.ErrorBanner().Visible())
	assert.Equal(t, "Error requesting account access: second", h.m.ErrorBanner().Message())

	h.advance(time.Second)
	assert.False(t, h.m.ErrorBanner().Visible())
}

// =============================================================================
// TEARDOWN
// =============================================================================

func TestQuit_ClosesAndIgnoresLateMessages(t *testing.T) {
	api := aliceAPI("false")
	h := newHarness(t, "alice", api).start()

	pending := h.m.RequestAccess()
	require.NotNil(t, pending)

	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.True(t, h.m.Closed())

	h.run(pending)
	assert.False(t, h.m.SuccessBanner().Visible())
	assert.False(t, h.m.ErrorBanner().Visible())

	before := api.getCount()
	h.advance(5 * time.Second)
	assert.Equal(t, before, api.getCount(), "polling stops after quit")
	assert.Empty(t, h.m.View())
}

// =============================================================================
// OPTIONS
// =============================================================================

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Profile.PollIntervalMs = 1000
	cfg.Profile.SuccessBannerMs = 1500
	cfg.Profile.ConsoleURL = "https://example.awsapps.com/start#/"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, time.Second, opts.Poll.Interval)
	assert.Equal(t, 1500*time.Millisecond, opts.SuccessDuration)
	assert.Equal(t, 5000*time.Millisecond, opts.ErrorDuration)
	assert.Equal(t, "https://example.awsapps.com/start#/", opts.ConsoleURL)
	assert.True(t, opts.Poll.RefetchOnFocus)
}

func TestView_HelpFooter(t *testing.T) {
	h := newHarness(t, "alice", aliceAPI("false")).start()
	view := h.m.View()
	assert.True(t, strings.Contains(view, "request access"), "help lists request binding")
	assert.NotContains(t, view, "open console", "console binding hidden when ungranted")
}
