// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// token.go - Token command implementation.
//
// Command: token
// Short:   Mint a development session token
//
// Examples:
//   dashboard token --user alice                 Print a token for alice
//   dashboard token --user root --role admin     Admin token
//   dashboard token --user alice --write         Sign in as alice
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/identity"
	"github.com/mstacm/dashboard-tui/internal/server"
	"github.com/mstacm/dashboard-tui/internal/util"
)

// DefaultTokenTTL is the lifetime of minted tokens without --ttl.
const DefaultTokenTTL = 24 * time.Hour

// TokenData is the --json payload of the token command.
type TokenData struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
	Token     string `json:"token,omitempty"`
	WrittenTo string `json:"written_to,omitempty"`
}

// tokenOptions are the parsed token command flags.
type tokenOptions struct {
	Username string
	Role     string
	TTL      time.Duration
	Write    bool
}

// HandleToken handles the "token" command.
func HandleToken(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	flags := args.Flags()

	ttl, err := flags.FlagDuration("ttl", DefaultTokenTTL)
	if err != nil {
		return NewValidationError("ttl", flags.Flag("ttl"), err.Error())
	}
	opts := tokenOptions{
		Username: identity.Normalize(flags.Flag("user")),
		Role:     flags.FlagOrDefault("role", DefaultSeedRole),
		TTL:      ttl,
		Write:    flags.BoolFlag("write"),
	}
	return runToken(os.Stdout, cfg, opts, args.JSON)
}

// runToken mints a token and prints it or writes it to the session file.
func runToken(w io.Writer, cfg *config.Config, opts tokenOptions, jsonMode bool) error {
	if opts.Username == "" {
		return ErrMissingArgument("user", "dashboard token --user alice")
	}
	if cfg.Server.SigningKey == "" {
		return NewValidationErrorWithExample("server.signing_key", "",
			"a signing key is required to mint tokens",
			"DASHBOARD_SIGNING_KEY=dev-secret dashboard token --user alice")
	}

	token, err := server.MintToken([]byte(cfg.Server.SigningKey), opts.Username, opts.Role, opts.TTL)
	if err != nil {
		return NewCommandError("token", "mint", err)
	}

	data := TokenData{
		Username:  opts.Username,
		Role:      opts.Role,
		ExpiresAt: time.Now().Add(opts.TTL).UTC().Format(time.RFC3339),
	}

	if opts.Write {
		if cfg.Session.TokenFile == "" {
			return NewValidationError("session.token_file", "", "no token file configured")
		}
		if err := util.AtomicWriteFile(cfg.Session.TokenFile, []byte(token+"\n"), 0600); err != nil {
			return NewCommandError("token", "write token file", err)
		}
		log.Printf("TOKEN_WRITTEN | user=%s role=%s file=%s", opts.Username, opts.Role, cfg.Session.TokenFile)
		data.WrittenTo = cfg.Session.TokenFile
	} else {
		data.Token = token
	}

	if jsonMode {
		return NewJSONResponse("token", data).Write(w)
	}
	if opts.Write {
		fmt.Fprintf(w, "%s Signed in as %s (%s) until %s\n",
			SuccessStyle.Render("[OK]"), opts.Username, opts.Role, data.ExpiresAt)
		return nil
	}
	fmt.Fprintln(w, token)
	return nil
}
