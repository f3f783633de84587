// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - Identity and API client construction shared by commands.

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// ErrNoSession is returned when no session token is available.
var ErrNoSession = errors.New("no session token; sign in or run 'dashboard token --user NAME --write'")

// Session bundles the identity provider and API client built from config.
type Session struct {
	Identity *identity.TokenProvider
	Client   *users.Client
}

// NewSession builds the identity provider and user-record client for cfg.
// The client sends the current session token on every call.
func NewSession(cfg *config.Config) *Session {
	provider := identity.NewTokenProvider(cfg.Session.Token, cfg.Session.TokenFile)
	client := users.NewClient(&users.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.APITimeout(),
		MaxRetries:        cfg.API.MaxRetries,
		RetryDelay:        cfg.RetryDelay(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Token:             provider.Token,
	})
	return &Session{Identity: provider, Client: client}
}

// Username resolves the current username, failing with ErrNoSession when
// nobody is signed in.
func (s *Session) Username(ctx context.Context) (string, error) {
	return requireUsername(ctx, s.Identity)
}

func requireUsername(ctx context.Context, provider identity.Provider) (string, error) {
	username, err := provider.Username(ctx)
	if err != nil {
		return "", NewCommandError("session", "resolve identity", err)
	}
	if username == "" {
		return "", ErrNoSession
	}
	return username, nil
}

// commandContext bounds a one-shot command by the worst-case retry budget
// and cancels it on interrupt.
func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	attempts := time.Duration(cfg.API.MaxRetries + 1)
	budget := attempts*cfg.APITimeout() + (attempts-1)*cfg.RetryDelay()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, budget)
	return ctx, func() {
		cancel()
		stop()
	}
}
