// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package poll

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the refetch cadence while focused.
const DefaultInterval = 500 * time.Millisecond

// Options configures a Scheduler.
type Options struct {
	// Interval between fetches while active
	Interval time.Duration
	// RefetchOnFocus fires immediately when focus returns
	RefetchOnFocus bool
	// InBackground keeps ticking while unfocused
	InBackground bool
}

// TickMsg is delivered when a scheduled tick elapses.
type TickMsg struct {
	Gen  int
	Time time.Time
	// Immediate ticks come from Focus/Now rather than the interval timer
	Immediate bool
}

// Scheduler decides when the model should refetch. Not safe for concurrent
// use; it lives inside the Bubble Tea model and is touched only from Update.
type Scheduler struct {
	opts    Options
	running bool
	focused bool
	gen     int

	// a tick is outstanding for the current generation
	ticking bool

	// injectable for tests
	tick func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd
}

// New creates a stopped, focused scheduler.
func New(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Scheduler{
		opts:    opts,
		focused: true,
		tick:    tea.Tick,
	}
}

// SetTicker replaces the timer used between ticks. nil restores tea.Tick.
func (s *Scheduler) SetTicker(tick func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd) {
	if tick == nil {
		tick = tea.Tick
	}
	s.tick = tick
}

// Interval returns the polling interval.
func (s *Scheduler) Interval() time.Duration { return s.opts.Interval }

// Active reports whether ticks currently fire: started, and either focused
// or allowed to poll in the background.
func (s *Scheduler) Active() bool {
	return s.running && (s.focused || s.opts.InBackground)
}

// Running reports whether Start has been called without a matching Stop.
func (s *Scheduler) Running() bool { return s.running }

// Focused reports the last known focus state.
func (s *Scheduler) Focused() bool { return s.focused }

// Start begins polling. The first fetch fires immediately. Calling Start on
// a running scheduler restarts the cadence.
func (s *Scheduler) Start() tea.Cmd {
	s.running = true
	s.gen++
	s.ticking = false
	if !s.Active() {
		return nil
	}
	return s.Now()
}

// Stop halts polling; outstanding ticks become no-ops.
func (s *Scheduler) Stop() {
	s.running = false
	s.ticking = false
	s.gen++
}

// Focus records that the terminal regained focus and resumes ticking.
func (s *Scheduler) Focus() tea.Cmd {
	wasActive := s.Active()
	s.focused = true
	if !s.running {
		return nil
	}
	if s.opts.RefetchOnFocus {
		return s.Now()
	}
	if !wasActive {
		s.gen++
		return s.schedule()
	}
	return nil
}

// Blur records that the terminal lost focus. Unless polling in the
// background, outstanding ticks are invalidated.
func (s *Scheduler) Blur() {
	s.focused = false
	if !s.opts.InBackground {
		s.gen++
		s.ticking = false
	}
}

// Now returns a command that fires a fetch on the next update and restarts
// the interval from there. Returns nil when inactive.
func (s *Scheduler) Now() tea.Cmd {
	if !s.Active() {
		return nil
	}
	s.gen++
	s.ticking = true
	gen := s.gen
	return func() tea.Msg {
		return TickMsg{Gen: gen, Time: time.Now(), Immediate: true}
	}
}

// Handle processes a tick. fire reports whether the model should fetch now;
// next schedules the following tick (nil when the tick was stale or the
// scheduler is inactive).
func (s *Scheduler) Handle(msg TickMsg) (fire bool, next tea.Cmd) {
	if msg.Gen != s.gen || !s.Active() {
		return false, nil
	}
	s.ticking = false
	return true, s.schedule()
}

func (s *Scheduler) schedule() tea.Cmd {
	if !s.Active() || s.ticking {
		return nil
	}
	s.ticking = true
	gen := s.gen
	return s.tick(s.opts.Interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, Time: t}
	})
}
