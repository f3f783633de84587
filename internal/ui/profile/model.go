// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/poll"
	"github.com/mstacm/dashboard-tui/internal/ui/components"
	"github.com/mstacm/dashboard-tui/internal/ui/styles"
	"github.com/mstacm/dashboard-tui/internal/users"
	"github.com/mstacm/dashboard-tui/internal/util"
)

// =============================================================================
// RENDER STATE
// =============================================================================

// RenderState is the branch the view draws.
type RenderState int

const (
	StateLoading RenderState = iota
	StatePending
	StateGranted
	StateUngranted
)

// String returns the state name.
func (s RenderState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePending:
		return "pending"
	case StateGranted:
		return "granted"
	case StateUngranted:
		return "ungranted"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Deps are the collaborators the view talks to.
type Deps struct {
	// API reads user records and submits access requests
	API users.API
	// Identity resolves the signed-in username
	Identity identity.Provider
	// TokenFile is watched for session changes when non-empty
	TokenFile string
	// Opener launches the console URL; defaults to util.OpenBrowser
	Opener func(url string) error
	// Ticker schedules poll ticks and banner expiry; defaults to tea.Tick
	Ticker components.Ticker
	// Theme defaults to styles.NewTheme()
	Theme *styles.Theme
}

// Options tune timing and the console link.
type Options struct {
	Poll            poll.Options
	SuccessDuration time.Duration
	ErrorDuration   time.Duration
	ConsoleURL      string
}

// DefaultOptions returns the stock timings: poll every 500ms while focused,
// success banner 3s, error banner 5s.
func DefaultOptions() Options {
	return Options{
		Poll: poll.Options{
			Interval:       poll.DefaultInterval,
			RefetchOnFocus: true,
		},
		SuccessDuration: 3000 * time.Millisecond,
		ErrorDuration:   5000 * time.Millisecond,
		ConsoleURL:      config.DefaultConsoleURL,
	}
}

// OptionsFromConfig derives Options from the profile section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	opts.Poll = poll.Options{
		Interval:       cfg.PollInterval(),
		RefetchOnFocus: cfg.Profile.RefetchOnFocus,
		InBackground:   cfg.Profile.PollInBackground,
	}
	if d := cfg.SuccessBannerDuration(); d > 0 {
		opts.SuccessDuration = d
	}
	if d := cfg.ErrorBannerDuration(); d > 0 {
		opts.ErrorDuration = d
	}
	if cfg.Profile.ConsoleURL != "" {
		opts.ConsoleURL = cfg.Profile.ConsoleURL
	}
	return opts
}

// Model is the Bubble Tea model for the profile view. All fields are owned
// by the Update loop.
type Model struct {
	deps  Deps
	opts  Options
	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	// Cancelled by Close; every command runs under it
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	// Identity
	username    string
	identityErr error

	// Display state mirrors the latest successful fetch for username
	role      string
	email     string
	status    string
	loaded    bool
	lastFetch time.Time
	fetchErr  error

	// In-flight bookkeeping
	scheduler  *poll.Scheduler
	fetching   bool
	fetchSeq   int
	requesting bool
	tokenCh    <-chan struct{}
	notice     string

	// Overlay
	success components.Banner
	failure components.Banner
	spinner components.Spinner

	width  int
	height int
}

// New creates the profile view.
func New(deps Deps, opts Options) *Model {
	def := DefaultOptions()
	if opts.SuccessDuration <= 0 {
		opts.SuccessDuration = def.SuccessDuration
	}
	if opts.ErrorDuration <= 0 {
		opts.ErrorDuration = def.ErrorDuration
	}
	if opts.ConsoleURL == "" {
		opts.ConsoleURL = def.ConsoleURL
	}
	if deps.Opener == nil {
		deps.Opener = util.OpenBrowser
	}
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		deps:      deps,
		opts:      opts,
		theme:     deps.Theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		ctx:       ctx,
		cancel:    cancel,
		scheduler: poll.New(opts.Poll),
		success:   components.NewBanner(components.BannerSuccess),
		failure:   components.NewBanner(components.BannerError),
		spinner:   components.NewSpinner(),
	}
	m.scheduler.SetTicker(deps.Ticker)
	m.success.SetTicker(deps.Ticker)
	m.failure.SetTicker(deps.Ticker)
	return m
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the branch the next render will draw.
func (m *Model) State() RenderState {
	if m.username == "" || !m.loaded {
		return StateLoading
	}
	switch users.ClassifyStatus(m.status) {
	case users.StatePending:
		return StatePending
	case users.StateGranted:
		return StateGranted
	default:
		return StateUngranted
	}
}

// Username returns the resolved identity ("" while unresolved).
func (m *Model) Username() string { return m.username }

// Role returns the displayed access level.
func (m *Model) Role() string { return m.role }

// Email returns the displayed email.
func (m *Model) Email() string { return m.email }

// AccountStatus returns the displayed raw awsAccountStatus.
func (m *Model) AccountStatus() string { return m.status }

// SuccessBanner exposes the success banner for inspection.
func (m *Model) SuccessBanner() *components.Banner { return &m.success }

// ErrorBanner exposes the error banner for inspection.
func (m *Model) ErrorBanner() *components.Banner { return &m.failure }

// Requesting reports whether an access request is in flight.
func (m *Model) Requesting() bool { return m.requesting }

// Fetching reports whether a user-record fetch is in flight.
func (m *Model) Fetching() bool { return m.fetching }

// Scheduler returns the poll scheduler.
func (m *Model) Scheduler() *poll.Scheduler { return m.scheduler }

// Closed reports whether Close has run.
func (m *Model) Closed() bool { return m.closed }

// =============================================================================
// LIFECYCLE
// =============================================================================

// Init resolves identity and starts watching the token file.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.resolveIdentity()}
	if m.deps.TokenFile != "" {
		cmds = append(cmds, m.watchToken())
	}
	return tea.Batch(cmds...)
}

// Close tears the view down: outstanding commands are cancelled and every
// later message is ignored.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.cancel()
	m.scheduler.Stop()
	m.spinner.Stop()
	m.success.Dismiss()
	m.failure.Dismiss()
}
