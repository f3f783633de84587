// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

// Values of User.AWSAccountStatus with special meaning. Any other non-empty
// value means the account has been provisioned.
const (
	StatusNotRequested = "false"
	StatusPending      = "pending"
	StatusGranted      = "granted"
)

// User is the backend-held profile record.
type User struct {
	Username         string `json:"username,omitempty"`
	Role             string `json:"role"`
	Email            string `json:"email"`
	AWSAccountStatus string `json:"awsAccountStatus"`
}

// State classifies the record's AWS account status.
func (u *User) State() AccountState {
	if u == nil {
		return StateUngranted
	}
	return ClassifyStatus(u.AWSAccountStatus)
}

// AccountState is the tri-state reading of awsAccountStatus.
type AccountState int

const (
	// StateUngranted - no account requested yet; the user may request one
	StateUngranted AccountState = iota
	// StatePending - a request is awaiting approval
	StatePending
	// StateGranted - an account exists
	StateGranted
)

// String returns the state name.
func (s AccountState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateGranted:
		return "granted"
	default:
		return "ungranted"
	}
}

// ClassifyStatus maps a raw awsAccountStatus value to an AccountState.
// Only "false" is ungranted. Every value other than "pending", the empty
// string included, is granted.
func ClassifyStatus(status string) AccountState {
	switch status {
	case StatusPending:
		return StatePending
	case StatusNotRequested:
		return StateUngranted
	default:
		return StateGranted
	}
}

// requestAccountBody is the POST body for an access request.
type requestAccountBody struct {
	UserID string `json:"userId"`
}

// errorBody matches the error envelope of the user-record API.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
