// dashboard - profile and AWS account access in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mstacm/dashboard-tui/internal/cli"
	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/ui/profile"
	"github.com/mstacm/dashboard-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// One-shot commands log to stderr only when asked to
	if cmd != cli.CmdTUI && cmd != cli.CmdServe && !args.Verbose {
		log.SetOutput(io.Discard)
	}

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdStatus:
		cli.Exit(cmd, cli.HandleStatus(args), args.JSON)
	case cli.CmdRequest:
		cli.Exit(cmd, cli.HandleRequest(args), args.JSON)
	case cli.CmdServe:
		cli.Exit(cmd, cli.HandleServe(args), args.JSON)
	case cli.CmdToken:
		cli.Exit(cmd, cli.HandleToken(args), args.JSON)
	case cli.CmdApprove:
		cli.Exit(cmd, cli.HandleApprove(args), args.JSON)
	case cli.CmdConfig:
		cli.Exit(cmd, cli.HandleConfig(args), args.JSON)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	default:
		cli.HandleUnknown(args)
	}
}

// runTUI runs the profile view until the user quits.
func runTUI(args cli.Args) {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		cli.HandleErrorAndExit(err, false)
	}

	// The terminal belongs to the view, so logs go to a file
	if err := config.EnsureConfigDir(); err == nil && cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "dashboard")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
			log.SetOutput(io.Discard)
		} else {
			defer f.Close()
		}
	} else {
		log.SetOutput(io.Discard)
	}
	log.Printf("STARTUP | version=%s api=%s poll_ms=%d", Version, cfg.API.BaseURL, cfg.Profile.PollIntervalMs)

	session := cli.NewSession(cfg)

	deps := profile.Deps{
		API:      session.Client,
		Identity: session.Identity,
		Theme:    styles.NewTheme(),
	}
	if cfg.Session.WatchTokenFile && cfg.Session.Token == "" {
		deps.TokenFile = cfg.Session.TokenFile
	}

	m := profile.New(deps, profile.OptionsFromConfig(cfg))
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),   // Use alternate screen buffer
		tea.WithReportFocus(), // Poll only while focused
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
