// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package profile

import "github.com/mstacm/dashboard-tui/internal/users"

// IdentityMsg carries the result of resolving the current username.
type IdentityMsg struct {
	Username string
	Err      error
}

// UserFetchedMsg carries a polled user record. Seq identifies the fetch so
// a superseded result cannot clear the in-flight flag of a newer one.
type UserFetchedMsg struct {
	Seq      int
	Username string
	User     *users.User
	Err      error
}

// AccessRequestedMsg carries the outcome of an access request.
type AccessRequestedMsg struct {
	Username string
	Err      error
}

// ConsoleOpenedMsg reports whether the browser could be launched.
type ConsoleOpenedMsg struct {
	URL string
	Err error
}

// tokenChangedMsg is sent when the session token file changes on disk.
type tokenChangedMsg struct{}

// watchStartedMsg hands the token watcher's channel to the model.
type watchStartedMsg struct {
	ch  <-chan struct{}
	err error
}
