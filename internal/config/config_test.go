// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesProfileBehaviour(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 3000*time.Millisecond, cfg.SuccessBannerDuration())
	assert.Equal(t, 5000*time.Millisecond, cfg.ErrorBannerDuration())
	assert.Equal(t, "https://mstacm.awsapps.com/start#/", cfg.Profile.ConsoleURL)
	assert.True(t, cfg.Profile.RefetchOnFocus)
	assert.False(t, cfg.Profile.PollInBackground)
	require.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "ftp://example.com"
	cfg.Profile.PollIntervalMs = 10
	cfg.Profile.ErrorBannerMs = 0
	cfg.Server.ListenAddr = "nope"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"api.base_url",
		"profile.poll_interval_ms",
		"profile.error_banner_ms",
		"server.listen_addr",
	}, fields)
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "api.base_url", Message: "missing host"}
	assert.Equal(t, "api.base_url: missing host", err.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_API_URL", "https://api.example.com/v1")
	t.Setenv("DASHBOARD_TOKEN", "tok")
	t.Setenv("DASHBOARD_POLL_MS", "1500")
	t.Setenv("DASHBOARD_SIGNING_KEY", "secret")
	t.Setenv("DASHBOARD_VERBOSE", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.Session.Token)
	assert.Equal(t, 1500, cfg.Profile.PollIntervalMs)
	assert.Equal(t, "secret", cfg.Server.SigningKey)
	assert.True(t, cfg.Log.Verbose)
}

func TestApplyEnvOverrides_IgnoresBadPollValue(t *testing.T) {
	t.Setenv("DASHBOARD_POLL_MS", "fast")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 500, cfg.Profile.PollIntervalMs)
}

func TestSetDefaults_FillsPathsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DASHBOARD_HOME", home)

	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, filepath.Join(home, "session.token"), cfg.Session.TokenFile)
	assert.Equal(t, filepath.Join(home, "users.db"), cfg.Server.DBPath)
	assert.Equal(t, filepath.Join(home, "dashboard.log"), cfg.Log.File)
	assert.Equal(t, 500, cfg.Profile.PollIntervalMs)
}

func TestSetDefaults_TrimsTrailingSlash(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "http://127.0.0.1:8790/api/"
	cfg.SetDefaults()
	assert.Equal(t, "http://127.0.0.1:8790/api", cfg.API.BaseURL)
}

func TestLoadFromPath_TOML(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://users.example.com"

[profile]
poll_interval_ms = 2000
console_url = "https://console.example.com/"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "https://users.example.com", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, "https://console.example.com/", cfg.Profile.ConsoleURL)
	// Untouched sections keep their defaults
	assert.Equal(t, 3000, cfg.Profile.SuccessBannerMs)
	assert.Equal(t, 3, cfg.API.MaxRetries)
}

func TestLoadFromPath_JSON(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"profile": {"error_banner_ms": 7000}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.ErrorBannerDuration())
}

func TestLoadFromPath_Invalid(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[profile]\npoll_interval_ms = 5\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile.poll_interval_ms")
}

func TestLoadTOML_FixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644))

	require.NoError(t, LoadTOML(Default(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Profile.PollIntervalMs = 750
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 750, loaded.Profile.PollIntervalMs)
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Session.Token = "eyJhbGciOi..."
	cfg.Server.SigningKey = "dev-secret"

	out := cfg.String()
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.NotContains(t, out, "dev-secret")
	assert.True(t, strings.Contains(out, "********"))
	// The original is untouched
	assert.Equal(t, "dev-secret", cfg.Server.SigningKey)
}

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal() can be
// called concurrently. Run with: go test -race ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	t.Setenv("DASHBOARD_HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
