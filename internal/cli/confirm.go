// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation handling for commands that change state.
//
// The pattern:
//  1. If --yes is present, proceed without prompting
//  2. If --json mode, require --yes (no interactive prompts in JSON mode)
//  3. If stdin is not a TTY, require --yes (can't prompt)
//  4. Otherwise, show an interactive prompt

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
)

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Yes indicates --yes was passed (skip interactive prompt)
	Yes bool
	// JSONMode indicates --json was passed
	JSONMode bool
}

// promptLine reads one line of input after showing prompt. Replaced in tests.
var promptLine = linerPrompt

// canPrompt reports whether promptLine can reach a user. Replaced in tests.
var canPrompt = CanPrompt

// linerPrompt reads a line with liner so ctrl+c aborts cleanly.
func linerPrompt(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	input, err := line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", nil
	}
	return input, err
}

// RequireConfirmation asks the user to confirm action.
//
// Returns:
//
//	bool  - true if confirmed, false if cancelled
//	error - non-nil if confirmation is required but cannot be asked for
func RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}

	if opts.JSONMode {
		return false, NewValidationErrorWithExample("confirmation", "",
			"--yes is required in JSON mode", "dashboard request --yes --json")
	}

	if !canPrompt() {
		return false, &TTYRequiredError{Operation: "confirm " + action + "; use --yes"}
	}

	input, err := promptLine(fmt.Sprintf("%s? [y/N]: ", action))
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}

// ShowCancellationMessage displays a standard cancellation message.
func ShowCancellationMessage() {
	fmt.Println(DimStyle.Render("Cancelled."))
}
