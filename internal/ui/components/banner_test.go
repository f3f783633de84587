// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeTicker records scheduled delays and returns commands that fire at once.
type fakeTicker struct {
	delays []time.Duration
}

func (f *fakeTicker) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	f.delays = append(f.delays, d)
	return func() tea.Msg { return fn(time.Now()) }
}

func newTestBanner(kind BannerKind) (*Banner, *fakeTicker) {
	b := NewBanner(kind)
	ft := &fakeTicker{}
	b.SetTicker(ft.tick)
	return &b, ft
}

func TestBannerShowAndExpire(t *testing.T) {
	b, ft := newTestBanner(BannerSuccess)

	cmd := b.Show("Requested AWS Access!", 3000*time.Millisecond)
	if !b.Visible() {
		t.Fatal("banner should be visible right after Show")
	}
	if len(ft.delays) != 1 || ft.delays[0] != 3*time.Second {
		t.Fatalf("expected one 3s timer, got %v", ft.delays)
	}

	msg, ok := cmd().(BannerExpiredMsg)
	if !ok {
		t.Fatal("expected BannerExpiredMsg")
	}
	if !b.HandleExpired(msg) {
		t.Error("expiry for current showing should hide banner")
	}
	if b.Visible() {
		t.Error("banner should be hidden after expiry")
	}
}

func TestBannerDismissCancelsTimer(t *testing.T) {
	b, _ := newTestBanner(BannerError)

	cmd := b.Show("Error requesting account access: boom", 5*time.Second)
	b.Dismiss()
	if b.Visible() {
		t.Fatal("Dismiss should hide immediately")
	}

	if b.HandleExpired(cmd().(BannerExpiredMsg)) {
		t.Error("stale expiry should be ignored after Dismiss")
	}
}

func TestBannerStaleTimerDoesNotHideNewerShowing(t *testing.T) {
	b, _ := newTestBanner(BannerSuccess)

	first := b.Show("one", 3*time.Second)
	b.Dismiss()
	b.Show("two", 3*time.Second)

	if b.HandleExpired(first().(BannerExpiredMsg)) {
		t.Error("expiry from first showing hid the second")
	}
	if !b.Visible() || b.Message() != "two" {
		t.Errorf("expected second showing visible, got visible=%v msg=%q", b.Visible(), b.Message())
	}
}

func TestBannerIgnoresOtherKind(t *testing.T) {
	success, _ := newTestBanner(BannerSuccess)
	errBanner, _ := newTestBanner(BannerError)

	cmd := errBanner.Show("bad", time.Second)
	success.Show("good", time.Second)

	if success.HandleExpired(cmd().(BannerExpiredMsg)) {
		t.Error("success banner hidden by error banner expiry")
	}
}

func TestBannerRemaining(t *testing.T) {
	b, _ := newTestBanner(BannerSuccess)
	start := time.Now()
	b.now = func() time.Time { return start }
	b.Show("x", 3*time.Second)

	b.now = func() time.Time { return start.Add(time.Second) }
	if got := b.Remaining(); got != 2*time.Second {
		t.Errorf("Remaining = %v, want 2s", got)
	}

	b.now = func() time.Time { return start.Add(10 * time.Second) }
	if got := b.Remaining(); got != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", got)
	}
}

func TestRenderBanner(t *testing.T) {
	b, _ := newTestBanner(BannerError)
	if got := RenderBanner(b, 80); got != "" {
		t.Errorf("hidden banner rendered %q", got)
	}

	b.Show("Error requesting account access: network down", 5*time.Second)
	out := RenderBanner(b, 80)
	for _, want := range []string{"Error requesting account access:", "network down", "Dismiss"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBannerStack_SkipsHidden(t *testing.T) {
	success, _ := newTestBanner(BannerSuccess)
	errBanner, _ := newTestBanner(BannerError)

	if got := RenderBannerStack(80, success, errBanner); got != "" {
		t.Errorf("expected empty stack, got %q", got)
	}

	success.Show("Requested AWS Access!", time.Second)
	out := RenderBannerStack(80, success, errBanner)
	if !strings.Contains(out, "Requested AWS Access!") {
		t.Errorf("stack missing success banner:\n%s", out)
	}
}
