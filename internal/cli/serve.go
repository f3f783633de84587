// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Serve command implementation.
//
// Command: serve
// Short:   Run the development user-record API
// Aliases: server
//
// Examples:
//   dashboard serve                        Listen on server.listen_addr
//   dashboard serve --addr :9000           Listen on another port
//   dashboard serve --seed alice,bob       Create members if missing
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mstacm/dashboard-tui/internal/server"
	"github.com/mstacm/dashboard-tui/internal/storage"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// shutdownTimeout bounds graceful shutdown after an interrupt.
const shutdownTimeout = 5 * time.Second

// DefaultSeedRole is the role given to seeded users.
const DefaultSeedRole = "member"

// HandleServe handles the "serve" command. It blocks until interrupted.
func HandleServe(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	flags := args.Flags()

	addr := flags.FlagOrDefault("addr", cfg.Server.ListenAddr)
	dbPath := flags.FlagOrDefault("db", cfg.Server.DBPath)
	if cfg.Server.SigningKey == "" {
		return NewValidationErrorWithExample("server.signing_key", "",
			"a signing key is required to verify session tokens",
			"DASHBOARD_SIGNING_KEY=dev-secret dashboard serve")
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return NewCommandError("serve", "open database", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seeds := flags.FlagList("seed"); len(seeds) > 0 {
		created, err := seedUsers(ctx, store, seeds)
		if err != nil {
			return NewCommandError("serve", "seed users", err)
		}
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "Seeded %d new user(s)\n", created)
		}
	}

	srv, err := server.New(store, server.Config{
		Addr:           addr,
		SigningKey:     []byte(cfg.Server.SigningKey),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RatePerSecond:  cfg.Server.RateLimitPerSecond,
		RateBurst:      cfg.Server.RateLimitBurst,
	})
	if err != nil {
		return NewCommandError("serve", "configure server", err)
	}

	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s listening on http://%s%s (db: %s)\n",
			SuccessStyle.Render("[OK]"), addr, server.APIPrefix, dbPath)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return NewCommandError("serve", "listen on "+addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return NewCommandError("serve", "shut down", err)
	}
	return <-errCh
}

// seedStore is the part of the store seeding needs.
type seedStore interface {
	Get(ctx context.Context, username string) (*storage.Record, error)
	Upsert(ctx context.Context, r storage.Record) error
}

// seedUsers creates each missing username as an ungranted member and
// returns how many were created. Existing records are left alone.
func seedUsers(ctx context.Context, store seedStore, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := store.Get(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return created, err
		}

		rec := storage.Record{
			Username:         name,
			Role:             DefaultSeedRole,
			Email:            name + "@mst.edu",
			AWSAccountStatus: users.StatusNotRequested,
		}
		if err := store.Upsert(ctx, rec); err != nil {
			return created, err
		}
		log.Printf("USER_SEEDED | user=%s", name)
		created++
	}
	return created, nil
}
