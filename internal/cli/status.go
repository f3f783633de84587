// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation.
//
// Command: status
// Short:   Display the signed-in user's profile
// Aliases: s
//
// Examples:
//   dashboard status                 Show role, email and AWS account status
//   dashboard status --json          Same, as JSON
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// StatusData is the --json payload of the status command.
type StatusData struct {
	Username         string `json:"username"`
	Role             string `json:"role"`
	Email            string `json:"email"`
	AWSAccountStatus string `json:"aws_account_status"`
	State            string `json:"state"`
}

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	session := NewSession(cfg)

	ctx, cancel := commandContext(cfg)
	defer cancel()

	return runStatus(ctx, os.Stdout, session.Client, session.Identity, args.JSON)
}

// runStatus fetches the current user's record and prints it.
func runStatus(ctx context.Context, w io.Writer, api users.API, provider identity.Provider, jsonMode bool) error {
	username, err := requireUsername(ctx, provider)
	if err != nil {
		return err
	}

	user, err := api.GetUser(ctx, username)
	if err != nil {
		return err
	}

	data := StatusData{
		Username:         username,
		Role:             user.Role,
		Email:            user.Email,
		AWSAccountStatus: user.AWSAccountStatus,
		State:            user.State().String(),
	}

	if jsonMode {
		return NewJSONResponse("status", data).Write(w)
	}

	fmt.Fprintln(w, TitleStyle.Render("Profile"))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("User"), ValueStyle.Render(data.Username))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Access Level"), ValueStyle.Render(data.Role))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("Email"), ValueStyle.Render(data.Email))
	fmt.Fprintf(w, "%s%s\n", RenderLabel("AWS Account"), RenderAccountState(user.State()))
	return nil
}
