// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// request.go - Request command implementation.
//
// Command: request
// Short:   Request an AWS account for the signed-in user
// Aliases: req
//
// Examples:
//   dashboard request              Prompt, then request
//   dashboard request --yes        Request without prompting
//   dashboard request --yes --json Machine-readable result
//
// The output matches the profile view's banners.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// RequestData is the --json payload of the request command.
type RequestData struct {
	Username  string `json:"username"`
	Requested bool   `json:"requested"`
	State     string `json:"state"`
	Message   string `json:"message"`
}

// RequestError is a failed access request. Its text is the error banner.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return users.ErrorMessagePrefix + users.Describe(e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// HandleRequest handles the "request" command.
func HandleRequest(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	session := NewSession(cfg)

	ctx, cancel := commandContext(cfg)
	defer cancel()

	opts := ConfirmationOptions{
		Yes:      args.Flags().BoolFlag("yes") || args.Flags().BoolFlag("y"),
		JSONMode: args.JSON,
	}
	return runRequest(ctx, os.Stdout, session.Client, session.Identity, opts)
}

// runRequest checks the current state, confirms, and sends the request.
// Granted and pending accounts are reported without sending anything.
func runRequest(ctx context.Context, w io.Writer, api users.API, provider identity.Provider, opts ConfirmationOptions) error {
	username, err := requireUsername(ctx, provider)
	if err != nil {
		return err
	}

	user, err := api.GetUser(ctx, username)
	if err != nil {
		return err
	}

	data := RequestData{Username: username, State: user.State().String()}

	switch user.State() {
	case users.StateGranted:
		data.Message = "AWS account already provisioned"
	case users.StatePending:
		data.Message = "AWS account request already pending approval"
	default:
		confirmed, err := RequireConfirmation("Request an AWS account for "+username, opts)
		if err != nil {
			return err
		}
		if !confirmed {
			ShowCancellationMessage()
			return nil
		}

		log.Printf("ACCESS_REQUEST_SENT | user=%s source=cli", username)
		if err := api.RequestAccount(ctx, username); err != nil {
			log.Printf("ACCESS_REQUEST_FAILED | user=%s error=%v", username, err)
			return &RequestError{Err: err}
		}
		log.Printf("ACCESS_REQUEST_OK | user=%s source=cli", username)

		data.Requested = true
		data.State = users.StatePending.String()
		data.Message = users.SuccessMessage
	}

	if opts.JSONMode {
		return NewJSONResponse("request", data).Write(w)
	}

	if data.Requested {
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("[OK]"), data.Message)
	} else {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("[i]"), data.Message)
	}
	return nil
}
