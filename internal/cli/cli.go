// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and shared command plumbing for the dashboard.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/mstacm/dashboard-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdStatus
	CmdRequest
	CmdServe
	CmdToken
	CmdApprove
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdStatus:
		return "status"
	case CmdRequest:
		return "request"
	case CmdServe:
		return "serve"
	case CmdToken:
		return "token"
	case CmdApprove:
		return "approve"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config PATH
	APIURL     string // --api URL
	JSON       bool   // Output in JSON format
	Quiet      bool
	Verbose    bool

	// Name is the command word as typed (used for unknown-command errors)
	Name string

	// Subcommand is the first positional argument after the command
	Subcommand string

	// Raw args (remaining after the command word)
	Raw []string
}

// Flags parses the command-specific arguments.
func (a Args) Flags() *ArgParser {
	return NewArgParser(a.Raw)
}

const usageText = `dashboard - profile and AWS access for your account

Usage:
  dashboard                      Start the profile view (default)
  dashboard status, s            Show role, email and AWS account status
  dashboard request [--yes]      Request an AWS account
  dashboard serve [options]      Run the development user-record API
  dashboard token --user NAME    Mint a development session token
  dashboard approve NAME         Set a user's AWS account status (admin)
  dashboard config [show|path]   Show configuration
  dashboard version              Show version information
  dashboard help                 Show the manual

Global Options:
  --config PATH    Read configuration from PATH
  --api URL        Override the user-record API base URL
  --json           Machine-readable output
  -q, --quiet      Suppress informational output
  -v, --verbose    Verbose logging

Serve Options:
  --addr HOST:PORT   Listen address (default 127.0.0.1:8790)
  --db PATH          SQLite database file
  --seed NAME        Create NAME as a member if missing (repeatable as a,b,c)

Token Options:
  --user NAME      Username claim (required)
  --role ROLE      Role claim (default: member)
  --ttl DURATION   Lifetime, e.g. 8h (default: 24h)
  --write          Save to the session token file instead of printing

Approve Options:
  --status VALUE   Status to set (default: granted)
  --db PATH        Update the SQLite database directly instead of the API

Environment:
  DASHBOARD_HOME, DASHBOARD_API_URL, DASHBOARD_TOKEN, DASHBOARD_TOKEN_FILE,
  DASHBOARD_POLL_MS, DASHBOARD_CONSOLE_URL, DASHBOARD_LISTEN_ADDR,
  DASHBOARD_DB_PATH, DASHBOARD_SIGNING_KEY, DASHBOARD_VERBOSE, NO_COLOR

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("dashboard version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument list (without the program name).
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	parsedArgs.Name = remaining[0]
	parsedArgs.Raw = remaining[1:]
	parsedArgs.Subcommand = parsedArgs.Flags().Subcommand()

	switch strings.ToLower(remaining[0]) {
	case "tui", "ui":
		return CmdTUI, parsedArgs
	case "status", "s":
		return CmdStatus, parsedArgs
	case "request", "req":
		return CmdRequest, parsedArgs
	case "serve", "server":
		return CmdServe, parsedArgs
	case "token":
		return CmdToken, parsedArgs
	case "approve":
		return CmdApprove, parsedArgs
	case "config", "cfg":
		return CmdConfig, parsedArgs
	case "version", "--version", "-V":
		return CmdVersion, parsedArgs
	case "help", "--help", "-h":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags wherever they appear and returns
// the rest in order.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		case "--api":
			if i+1 < len(args) {
				i++
				parsedArgs.APIURL = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--api="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// LoadConfig loads the configuration selected by args and applies the
// global flag overrides. The result is also installed as config.Global().
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil && !args.Quiet && !args.JSON {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(args.APIURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, NewValidationError("api", args.APIURL, err.Error())
		}
	}
	if args.Verbose {
		cfg.Log.Verbose = true
	}

	config.SetGlobal(cfg)
	return cfg, nil
}

// =============================================================================
// VERSION
// =============================================================================

// VersionData is the --json payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}

// HandleUnknown reports an unrecognized command and exits with a usage error.
func HandleUnknown(args Args) {
	HandleErrorAndExit(NewValidationErrorWithExample("command", args.Name,
		"unknown command", "dashboard help"), args.JSON)
}
