// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package poll

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTicks replaces tea.Tick so tests do not sleep. It records the
// requested delays.
func instantTicks(s *Scheduler) *[]time.Duration {
	var delays []time.Duration
	s.tick = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		delays = append(delays, d)
		return func() tea.Msg { return fn(time.Now()) }
	}
	return &delays
}

func runTick(t *testing.T, cmd tea.Cmd) TickMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(TickMsg)
	require.True(t, ok, "command did not produce a TickMsg")
	return msg
}

func TestNew_Defaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, DefaultInterval, s.Interval())
	assert.True(t, s.Focused())
	assert.False(t, s.Running())
	assert.False(t, s.Active())
}

func TestStart_FiresImmediatelyThenOnInterval(t *testing.T) {
	s := New(Options{Interval: 250 * time.Millisecond})
	delays := instantTicks(s)

	first := runTick(t, s.Start())
	assert.True(t, first.Immediate)

	fire, next := s.Handle(first)
	assert.True(t, fire)

	second := runTick(t, next)
	assert.False(t, second.Immediate)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, *delays)

	fire, next = s.Handle(second)
	assert.True(t, fire)
	assert.NotNil(t, next)
}

func TestBlur_SuspendsPolling(t *testing.T) {
	s := New(Options{Interval: time.Second})
	instantTicks(s)

	first := runTick(t, s.Start())
	_, next := s.Handle(first)
	pending := runTick(t, next)

	s.Blur()
	assert.False(t, s.Active())

	fire, next := s.Handle(pending)
	assert.False(t, fire, "tick scheduled before blur must not fire")
	assert.Nil(t, next)
}

func TestFocus_RefetchesImmediately(t *testing.T) {
	s := New(Options{Interval: time.Second, RefetchOnFocus: true})
	instantTicks(s)

	runTick(t, s.Start())
	s.Blur()

	msg := runTick(t, s.Focus())
	assert.True(t, msg.Immediate)

	fire, next := s.Handle(msg)
	assert.True(t, fire)
	assert.NotNil(t, next)
}

func TestFocus_WithoutRefetchResumesInterval(t *testing.T) {
	s := New(Options{Interval: time.Second})
	delays := instantTicks(s)

	runTick(t, s.Start())
	s.Blur()

	msg := runTick(t, s.Focus())
	assert.False(t, msg.Immediate)
	assert.Equal(t, []time.Duration{time.Second}, *delays)

	fire, _ := s.Handle(msg)
	assert.True(t, fire)
}

func TestInBackground_KeepsPolling(t *testing.T) {
	s := New(Options{Interval: time.Second, InBackground: true})
	instantTicks(s)

	first := runTick(t, s.Start())
	_, next := s.Handle(first)
	pending := runTick(t, next)

	s.Blur()
	assert.True(t, s.Active())

	fire, next := s.Handle(pending)
	assert.True(t, fire)
	assert.NotNil(t, next)
}

func TestStop_InvalidatesOutstandingTicks(t *testing.T) {
	s := New(Options{Interval: time.Second})
	instantTicks(s)

	first := runTick(t, s.Start())
	s.Stop()

	fire, next := s.Handle(first)
	assert.False(t, fire)
	assert.Nil(t, next)
	assert.Nil(t, s.Focus(), "focus on a stopped scheduler does nothing")
	assert.Nil(t, s.Now())
}

func TestStart_WhileBlurredWaitsForFocus(t *testing.T) {
	s := New(Options{Interval: time.Second, RefetchOnFocus: true})
	instantTicks(s)

	s.Blur()
	assert.Nil(t, s.Start())
	assert.True(t, s.Running())

	msg := runTick(t, s.Focus())
	fire, _ := s.Handle(msg)
	assert.True(t, fire)
}

func TestNow_SupersedesPendingTick(t *testing.T) {
	s := New(Options{Interval: time.Second})
	instantTicks(s)

	first := runTick(t, s.Start())
	_, next := s.Handle(first)
	pending := runTick(t, next)

	manual := runTick(t, s.Now())

	fire, _ := s.Handle(pending)
	assert.False(t, fire, "interval tick superseded by manual refresh")

	fire, next = s.Handle(manual)
	assert.True(t, fire)
	assert.NotNil(t, next)
}

func TestHandle_NoDuplicateTimers(t *testing.T) {
	s := New(Options{Interval: time.Second})
	delays := instantTicks(s)

	first := runTick(t, s.Start())
	_, next := s.Handle(first)
	require.NotNil(t, next)

	// Focus while already active and without refetch schedules nothing new
	assert.Nil(t, s.Focus())
	assert.Len(t, *delays, 1)
}
