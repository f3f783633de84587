// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// help.go - Help command: the manual, rendered as Markdown.

package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// manual is the long-form help shown by "dashboard help".
const manual = `# dashboard

Your profile and AWS account access, in the terminal.

## Profile view

Run ` + "`dashboard`" + ` with no arguments. The view shows who you are logged in
as, your access level, and the state of your AWS account:

| Account state   | What you see                              |
|-----------------|-------------------------------------------|
| not requested   | **Request AWS Access** (press enter or r) |
| pending         | *Waiting for approval...*                 |
| granted         | **Open AWS Console** (press o)            |

The view refreshes every 500ms while the terminal has focus. A success
banner stays for 3 seconds and an error banner for 5; press x to dismiss
early, R to refresh now, q to quit.

## Commands

- ` + "`status`" + ` prints your role, email and account state.
- ` + "`request`" + ` requests an AWS account (add ` + "`--yes`" + ` to skip the prompt).
- ` + "`serve`" + ` runs a local user-record API backed by SQLite.
- ` + "`token --user NAME --write`" + ` signs you in against that API.
- ` + "`approve NAME`" + ` grants an account (admin).
- ` + "`config show|path|init`" + ` inspects configuration.

## Local development

    export DASHBOARD_SIGNING_KEY=dev-secret
    dashboard serve --seed alice &
    dashboard token --user alice --write
    dashboard

## Files

- ` + "`~/.dashboard/config.toml`" + ` configuration
- ` + "`~/.dashboard/session.token`" + ` session token
- ` + "`~/.dashboard/dashboard.log`" + ` log of the profile view
`

// RenderManual renders the manual for a terminal of the given width.
// Colors follow ColorsEnabled; rendering failures fall back to raw Markdown.
func RenderManual(width int) string {
	style := glamour.WithAutoStyle()
	if !ColorsEnabled() {
		style = glamour.WithStandardStyle("notty")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return manual
	}
	out, err := renderer.Render(manual)
	if err != nil {
		return manual
	}
	return out
}

// HandleHelp handles the "help" command: usage first, then the manual.
func HandleHelp(args Args) {
	PrintUsage()
	if args.Quiet {
		return
	}
	fmt.Print(RenderManual(GetTerminalWidth() - 4))
}
