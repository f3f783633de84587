// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation.
//
// Command: config
// Short:   Show or initialize configuration
// Aliases: cfg
//
// Subcommands:
//   show (default)   Effective configuration, secrets masked
//   path             Config file location
//   init             Write the defaults to the config file if none exists
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mstacm/dashboard-tui/internal/config"
)

// ConfigPathData is the --json payload of "config path".
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return NewCommandError("config", "locate config file", err)
		}
		path = p
	}

	switch args.Subcommand {
	case "", "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return runConfigShow(os.Stdout, cfg, args.JSON)
	case "path":
		return runConfigPath(os.Stdout, path, args.JSON)
	case "init":
		return runConfigInit(os.Stdout, path, args.JSON)
	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"expected show, path or init", "dashboard config show")
	}
}

func runConfigShow(w io.Writer, cfg *config.Config, jsonMode bool) error {
	if jsonMode {
		masked := *cfg
		if masked.Session.Token != "" {
			masked.Session.Token = "********"
		}
		if masked.Server.SigningKey != "" {
			masked.Server.SigningKey = "********"
		}
		return NewJSONResponse("config", masked).Write(w)
	}
	fmt.Fprint(w, cfg.String())
	return nil
}

func runConfigPath(w io.Writer, path string, jsonMode bool) error {
	_, err := os.Stat(path)
	data := ConfigPathData{Path: path, Exists: err == nil}

	if jsonMode {
		return NewJSONResponse("config", data).Write(w)
	}
	fmt.Fprintln(w, data.Path)
	return nil
}

// runConfigInit writes the default configuration to path. An existing file
// is never overwritten.
func runConfigInit(w io.Writer, path string, jsonMode bool) error {
	if _, err := os.Stat(path); err == nil {
		return NewCommandError("config", "init", fmt.Errorf("%s already exists", path))
	} else if !errors.Is(err, os.ErrNotExist) {
		return NewCommandError("config", "init", err)
	}

	cfg := config.Default()
	cfg.SetDefaults()
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "init", err)
	}

	if jsonMode {
		return NewJSONResponse("config", ConfigPathData{Path: path, Exists: true}).Write(w)
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}
