// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings for the profile view.
type KeyMap struct {
	Request key.Binding
	Open    key.Binding
	Dismiss key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Request: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter/r", "request access"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open console"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Request, k.Open, k.Dismiss, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// forState enables only the bindings that do something in the given state.
func (k KeyMap) forState(state RenderState, bannerVisible bool) KeyMap {
	k.Request.SetEnabled(state == StateUngranted)
	k.Open.SetEnabled(state == StateGranted)
	k.Dismiss.SetEnabled(bannerVisible)
	return k
}
