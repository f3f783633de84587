// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/text/unicode/norm"
)

// ErrMalformedToken is returned when the session token cannot be decoded.
var ErrMalformedToken = errors.New("malformed session token")

// usernameClaims lists the claims checked for the username, in order.
var usernameClaims = []string{"username", "cognito:username", "sub"}

// Provider reports the identity of the current session.
// An empty username with a nil error means "no session yet".
type Provider interface {
	Username(ctx context.Context) (string, error)
}

// Static is a Provider with a fixed username.
type Static string

// Username returns the fixed username.
func (s Static) Username(ctx context.Context) (string, error) {
	return Normalize(string(s)), nil
}

// TokenProvider reads the session token and extracts the username claim.
type TokenProvider struct {
	token     string
	tokenFile string
}

// NewTokenProvider creates a provider. An inline token wins over the file.
func NewTokenProvider(token, tokenFile string) *TokenProvider {
	return &TokenProvider{
		token:     strings.TrimSpace(token),
		tokenFile: tokenFile,
	}
}

// TokenFile returns the watched token file path (may be empty).
func (p *TokenProvider) TokenFile() string {
	return p.tokenFile
}

// Token returns the raw session token, re-reading the token file each time
// so a refreshed session is picked up. A missing file yields "".
func (p *TokenProvider) Token() (string, error) {
	if p.token != "" {
		return p.token, nil
	}
	if p.tokenFile == "" {
		return "", nil
	}

	data, err := os.ReadFile(p.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Username returns the username carried by the current session token.
func (p *TokenProvider) Username(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := p.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}
	return UsernameFromToken(token)
}

// UsernameFromToken decodes a JWT without verifying its signature and
// returns the first non-empty username claim.
func UsernameFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	for _, name := range usernameClaims {
		if v, ok := claims[name].(string); ok {
			if username := Normalize(v); username != "" {
				return username, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no username claim", ErrMalformedToken)
}

// Normalize trims whitespace and applies Unicode NFC so the same user typed
// two ways keys the same record.
func Normalize(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}
