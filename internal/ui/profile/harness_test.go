// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// =============================================================================
// FAKE USER API
// =============================================================================

type fakeAPI struct {
	mu         sync.Mutex
	records    map[string]users.User
	getErr     error
	requestErr error
	gets       []string
	requests   []string
	// promote flips the stored status to pending on a successful request
	promote bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: make(map[string]users.User)}
}

func (f *fakeAPI) set(username string, u users.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[username] = u
}

func (f *fakeAPI) GetUser(ctx context.Context, userID string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, userID)
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.records[userID]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (f *fakeAPI) RequestAccount(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, userID)
	if f.requestErr != nil {
		return f.requestErr
	}
	if f.promote {
		u := f.records[userID]
		u.AWSAccountStatus = users.StatusPending
		f.records[userID] = u
	}
	return nil
}

func (f *fakeAPI) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gets)
}

// =============================================================================
// VIRTUAL CLOCK
// =============================================================================

type timer struct {
	due time.Time
	seq int
	fn  func(time.Time) tea.Msg
}

// clock stands in for tea.Tick. Executing a scheduled command registers a
// timer; advance fires the timers that have come due.
type clock struct {
	now    time.Time
	seq    int
	timers []timer
	delays []time.Duration
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		c.seq++
		c.delays = append(c.delays, d)
		c.timers = append(c.timers, timer{due: c.now.Add(d), seq: c.seq, fn: fn})
		return nil
	}
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	t      *testing.T
	m      *Model
	api    *fakeAPI
	clock  *clock
	opened []string
}

func newHarness(t *testing.T, username string, api *fakeAPI) *harness {
	t.Helper()
	h := &harness{t: t, api: api, clock: newClock()}
	h.m = New(Deps{
		API:      api,
		Identity: identity.Static(username),
		Ticker:   h.clock.tick,
		Opener: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	}, DefaultOptions())
	t.Cleanup(h.m.Close)
	return h
}

// start runs Init and everything it triggers that does not wait on time.
func (h *harness) start() *harness {
	h.run(h.m.Init())
	return h
}

// send delivers msg and runs the resulting commands.
func (h *harness) send(msg tea.Msg) {
	_, cmd := h.m.Update(msg)
	h.run(cmd)
}

// run executes cmd and feeds every resulting message back into the model.
// Spinner frames are dropped so the animation does not loop forever.
func (h *harness) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, tea.QuitMsg:
		default:
			_, next := h.m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// advance moves virtual time forward by d, firing due timers in order.
func (h *harness) advance(d time.Duration) {
	target := h.clock.now.Add(d)
	for {
		sort.SliceStable(h.clock.timers, func(i, j int) bool {
			if h.clock.timers[i].due.Equal(h.clock.timers[j].due) {
				return h.clock.timers[i].seq < h.clock.timers[j].seq
			}
			return h.clock.timers[i].due.Before(h.clock.timers[j].due)
		})
		if len(h.clock.timers) == 0 || h.clock.timers[0].due.After(target) {
			break
		}
		next := h.clock.timers[0]
		h.clock.timers = h.clock.timers[1:]
		h.clock.now = next.due
		h.send(next.fn(next.due))
	}
	h.clock.now = target
}

func (h *harness) key(k string) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	h.send(msg)
}
