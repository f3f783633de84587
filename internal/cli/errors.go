// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for dashboard commands.
//
// Handlers return errors; main decides how to display them and which exit
// code to use.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mstacm/dashboard-tui/internal/config"
	"github.com/mstacm/dashboard-tui/internal/storage"
	"github.com/mstacm/dashboard-tui/internal/users"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication or authorization failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "request", "serve")
	Action  string // Action being performed (e.g., "open database")
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Action)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return NewValidationErrorWithExample(argName, "", "required argument missing", usage)
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError displays an error in a consistent format.
// In JSON mode the error is written to stdout as a JSONResponse.
func DisplayError(command string, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		NewJSONErrorResponse(command, err).Print()
		return
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// HandleErrorAndExit displays an error and exits with an appropriate exit code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}

	DisplayError("", err, jsonMode)
	os.Exit(GetExitCode(err))
}

// Exit displays err for command and exits; a nil err returns normally.
func Exit(command Command, err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(command.String(), err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var configErr config.ValidateErrors
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ExitNotFoundError
	}

	var apiErr *users.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case users.ErrTypeUnauthorized:
			return ExitAuthError
		case users.ErrTypeNotFound:
			return ExitNotFoundError
		case users.ErrTypeConnection:
			return ExitNetworkError
		case users.ErrTypeTimeout:
			return ExitTimeoutError
		case users.ErrTypeInvalidRequest:
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
