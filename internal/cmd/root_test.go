package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webskin/gcs-go-cli/internal/gcs"
)

// resetSessionProvided clears the verbose source-tracking state a test
// may leave behind.
func resetSessionProvided(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { sessionProvided = nil })
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "token", "session", "timeout", "verbose", "output", "compact", "insecure"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
	assert.Equal(t, "gcs", rootCmd.Use)
}

func TestAdoptDefaultSession_FillsTokenAndURL(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)
	seedSessions(t, map[string]*gcs.Session{
		"default": {URL: "https://gcs.example.org", AccessToken: "saved-token", CreatedAt: time.Now()},
	})

	cfg := &gcs.Config{}
	adoptDefaultSession(cfg)

	assert.Equal(t, "saved-token", cfg.AccessToken)
	assert.Equal(t, "https://gcs.example.org", cfg.BaseURL)
	assert.True(t, sessionProvided[gcs.ConfigKeyAccessToken])
	assert.True(t, sessionProvided[gcs.ConfigKeyBaseURL])
}

func TestAdoptDefaultSession_KeepsExplicitURL(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)
	seedSessions(t, map[string]*gcs.Session{
		"default": {URL: "https://gcs.example.org", AccessToken: "saved-token", CreatedAt: time.Now()},
	})

	cfg := &gcs.Config{BaseURL: "https://explicit.example.org"}
	adoptDefaultSession(cfg)

	assert.Equal(t, "saved-token", cfg.AccessToken)
	assert.Equal(t, "https://explicit.example.org", cfg.BaseURL)
	assert.False(t, sessionProvided[gcs.ConfigKeyBaseURL])
}

func TestAdoptDefaultSession_IgnoresExpired(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)
	seedSessions(t, map[string]*gcs.Session{
		"default": {URL: "https://gcs.example.org", AccessToken: "stale", CreatedAt: time.Now().Add(-72 * time.Hour)},
	})

	cfg := &gcs.Config{}
	adoptDefaultSession(cfg)

	assert.Empty(t, cfg.AccessToken)
	assert.Empty(t, cfg.BaseURL)
}

func TestAdoptDefaultSession_IgnoresMissing(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)

	cfg := &gcs.Config{}
	adoptDefaultSession(cfg)

	assert.Empty(t, cfg.AccessToken)
	assert.Empty(t, cfg.BaseURL)
}

func TestDetermineConfigSource(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)

	urlField := configFields[0]
	require.Equal(t, gcs.ConfigKeyBaseURL, urlField.key)

	t.Run("flag wins", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().String("url", "", "")
		require.NoError(t, cmd.Flags().Set("url", "https://flag.example.org"))

		assert.Equal(t, "flag", determineConfigSource(cmd, urlField))
	})

	t.Run("session beats env and file", func(t *testing.T) {
		sessionProvided = map[string]bool{gcs.ConfigKeyBaseURL: true}
		defer func() { sessionProvided = nil }()

		assert.Equal(t, "session", determineConfigSource(&cobra.Command{}, urlField))
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("GCS_BASE_URL", "https://env.example.org")

		assert.Equal(t, "env", determineConfigSource(&cobra.Command{}, urlField))
	})

	t.Run("file", func(t *testing.T) {
		require.NoError(t, gcs.SetConfigValue("base-url", "https://file.example.org"))

		assert.Equal(t, "file", determineConfigSource(&cobra.Command{}, urlField))
	})

	t.Run("built-in default", func(t *testing.T) {
		timeoutField := configFields[2]
		require.Equal(t, gcs.ConfigKeyTimeout, timeoutField.key)

		assert.Equal(t, "default", determineConfigSource(&cobra.Command{}, timeoutField))
	})
}

func TestLogEffectiveConfig_RedactsToken(t *testing.T) {
	setupTestPaths(t)
	resetSessionProvided(t)

	stderr := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetErr(stderr)

	logEffectiveConfig(cmd, &gcs.Config{
		BaseURL:      "https://gcs.example.org",
		AccessToken:  "secret-token",
		Timeout:      30,
		OutputFormat: "table",
	})

	out := stderr.String()
	assert.Contains(t, out, "[verbose] Config: base-url=https://gcs.example.org")
	assert.Contains(t, out, "access-token=<redacted>")
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "timeout=30")
	// Unset and uninteresting fields stay quiet
	assert.NotContains(t, out, "insecure-skip-verify")
}

func TestLogEnvironmentVariables_RedactsToken(t *testing.T) {
	t.Setenv("GCS_BASE_URL", "https://env.example.org")
	t.Setenv("GCS_ACCESS_TOKEN", "sneaky")

	stderr := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetErr(stderr)

	logEnvironmentVariables(cmd)

	out := stderr.String()
	assert.Contains(t, out, "[verbose] Environment: GCS_BASE_URL=https://env.example.org")
	assert.Contains(t, out, "GCS_ACCESS_TOKEN=<redacted>")
	assert.NotContains(t, out, "sneaky")
}

func TestConfigureColorOutput(t *testing.T) {
	previous := color.NoColor
	t.Cleanup(func() { color.NoColor = previous })

	configureColorOutput("never")
	assert.True(t, color.NoColor)

	configureColorOutput("always")
	assert.False(t, color.NoColor)
}
