// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// approve.go - Approve command implementation.
//
// Command: approve
// Short:   Set a user's AWS account status
//
// Examples:
//   dashboard approve alice                     Grant through the API
//   dashboard approve alice --status pending    Put back into pending
//   dashboard approve alice --db users.db       Update the database directly
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/server"
	"github.com/mstacm/dashboard-tui/internal/storage"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// adminTokenTTL is the lifetime of the token minted for one approve call.
const adminTokenTTL = time.Minute

// adminUsername is the subject of tokens minted for approve.
const adminUsername = "dashboard-admin"

// userSetter updates a user record.
type userSetter interface {
	SetUser(ctx context.Context, userID string, u users.User) (*users.User, error)
}

// storeSetter applies status updates straight to the database.
type storeSetter struct {
	store *storage.UserStore
}

func (s storeSetter) SetUser(ctx context.Context, userID string, u users.User) (*users.User, error) {
	if err := s.store.SetStatus(ctx, userID, u.AWSAccountStatus); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := rec.User()
	return &user, nil
}

// HandleApprove handles the "approve" command.
func HandleApprove(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	flags := args.Flags()

	username := identity.Normalize(flags.Subcommand())
	if username == "" {
		return ErrMissingArgument("username", "dashboard approve alice")
	}
	status := flags.FlagOrDefault("status", users.StatusGranted)

	ctx, cancel := commandContext(cfg)
	defer cancel()

	if dbPath := flags.Flag("db"); dbPath != "" {
		store, err := storage.Open(dbPath)
		if err != nil {
			return NewCommandError("approve", "open database", err)
		}
		defer store.Close()
		return runApprove(ctx, os.Stdout, storeSetter{store: store}, username, status, args.JSON)
	}

	client, err := adminClient(cfg)
	if err != nil {
		return err
	}
	return runApprove(ctx, os.Stdout, client, username, status, args.JSON)
}

// adminClient builds an API client that authenticates with a short-lived
// admin token minted from the configured signing key.
func adminClient(cfg *config.Config) (*users.Client, error) {
	if cfg.Server.SigningKey == "" {
		return nil, NewValidationErrorWithExample("server.signing_key", "",
			"a signing key is required to act as admin (or pass --db)",
			"DASHBOARD_SIGNING_KEY=dev-secret dashboard approve alice")
	}
	key := []byte(cfg.Server.SigningKey)

	return users.NewClient(&users.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.APITimeout(),
		Token: func() (string, error) {
			return server.MintToken(key, adminUsername, server.RoleAdmin, adminTokenTTL)
		},
	}), nil
}

// runApprove sets username's account status and prints the result.
func runApprove(ctx context.Context, w io.Writer, setter userSetter, username, status string, jsonMode bool) error {
	user, err := setter.SetUser(ctx, username, users.User{AWSAccountStatus: status})
	if err != nil {
		return err
	}
	log.Printf("ACCOUNT_STATUS_SET | user=%s status=%s", username, user.AWSAccountStatus)

	if jsonMode {
		return NewJSONResponse("approve", StatusData{
			Username:         username,
			Role:             user.Role,
			Email:            user.Email,
			AWSAccountStatus: user.AWSAccountStatus,
			State:            user.State().String(),
		}).Write(w)
	}

	fmt.Fprintf(w, "%s %s is now %s\n", SuccessStyle.Render("[OK]"), username, RenderAccountState(user.State()))
	return nil
}
