// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-key"))
	require.NoError(t, err)
	return tok
}

func TestUsernameFromToken_ClaimPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"username claim", jwt.MapClaims{"username": "alice", "sub": "uuid-1"}, "alice"},
		{"cognito claim", jwt.MapClaims{"cognito:username": "bob", "sub": "uuid-2"}, "bob"},
		{"sub fallback", jwt.MapClaims{"sub": "carol"}, "carol"},
		{"blank username falls through", jwt.MapClaims{"username": "  ", "sub": "dave"}, "dave"},
		{"trimmed", jwt.MapClaims{"username": " erin \n"}, "erin"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UsernameFromToken(signedToken(t, tc.claims))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUsernameFromToken_Errors(t *testing.T) {
	_, err := UsernameFromToken("not-a-jwt")
	assert.True(t, errors.Is(err, ErrMalformedToken))

	_, err = UsernameFromToken(signedToken(t, jwt.MapClaims{"role": "member"}))
	assert.True(t, errors.Is(err, ErrMalformedToken))
}

func TestUsernameFromToken_IgnoresSignatureAndExpiry(t *testing.T) {
	// Issued by the external provider with a key we do not hold, already expired
	tok := signedToken(t, jwt.MapClaims{
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	got, err := UsernameFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestNormalize_NFC(t *testing.T) {
	decomposed := "jose\u0301"
	composed := "jos\u00e9"
	assert.Equal(t, composed, Normalize(decomposed))
	assert.Equal(t, "alice", Normalize("  alice "))
}

func TestTokenProvider_InlineTokenWins(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.token")
	require.NoError(t, os.WriteFile(file, []byte(signedToken(t, jwt.MapClaims{"username": "from-file"})), 0600))

	p := NewTokenProvider(signedToken(t, jwt.MapClaims{"username": "inline"}), file)
	got, err := p.Username(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inline", got)
}

func TestTokenProvider_MissingFileIsUnauthenticated(t *testing.T) {
	p := NewTokenProvider("", filepath.Join(t.TempDir(), "absent.token"))
	got, err := p.Username(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestTokenProvider_RereadsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.token")
	p := NewTokenProvider("", file)

	require.NoError(t, os.WriteFile(file, []byte(signedToken(t, jwt.MapClaims{"username": "alice"})+"\n"), 0600))
	got, err := p.Username(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	require.NoError(t, os.WriteFile(file, []byte(signedToken(t, jwt.MapClaims{"username": "bob"})), 0600))
	got, err = p.Username(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
}

func TestTokenProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTokenProvider("x", "").Username(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic(t *testing.T) {
	got, err := Static(" alice ").Username(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestWatch_SignalsOnWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "session.token")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, file)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, []byte("token"), 0600))

	select {
	case _, ok := <-changes:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing the token file")
	}

	cancel()
	// Channel closes once the context is done
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestWatch_RequiresPath(t *testing.T) {
	_, err := Watch(context.Background(), "")
	assert.Error(t, err)
}
