// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

import (
	"errors"
	"net/http"
)

// Access request outcome texts, shared by the profile view and the CLI.
const (
	SuccessMessage     = "Requested AWS Access!"
	ErrorMessagePrefix = "Error requesting account access: "
)

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeConflict
	ErrTypeRateLimited
	ErrTypeServer
	ErrTypeInvalidResponse
	ErrTypeInvalidRequest
)

// APIError represents an error from the user-record API or the transport.
// Error() is exactly the human-readable message, without the cause chain,
// so it can be shown in the UI as-is.
type APIError struct {
	Type    ErrorType
	Status  int
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// Sentinel errors for errors.Is checks. They carry only a type.
var (
	ErrUnauthorized = &APIError{Type: ErrTypeUnauthorized}
	ErrNotFound     = &APIError{Type: ErrTypeNotFound}
	ErrConflict     = &APIError{Type: ErrTypeConflict}
	ErrTimeout      = &APIError{Type: ErrTypeTimeout}
)

// Retryable reports whether a read should be retried after err.
func Retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Type {
	case ErrTypeConnection, ErrTypeTimeout, ErrTypeServer, ErrTypeRateLimited:
		return true
	}
	return false
}

// typeForStatus maps an HTTP status to an ErrorType.
func typeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrTypeUnauthorized
	case status == http.StatusNotFound:
		return ErrTypeNotFound
	case status == http.StatusConflict:
		return ErrTypeConflict
	case status == http.StatusTooManyRequests:
		return ErrTypeRateLimited
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrTypeInvalidRequest
	case status >= 500:
		return ErrTypeServer
	}
	return ErrTypeUnknown
}

// Describe returns the human-readable part of err, falling back to
// "unknown error" when there is none.
func Describe(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "unknown error"
}
