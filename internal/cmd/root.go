package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
	"golang.org/x/term"
)

var (
	// Global flags
	baseURL            string
	accessToken        string
	sessionName        string
	timeout            int
	verbose            bool
	outputFormat       string
	compactJSON        bool
	insecureSkipVerify bool

	// Global config
	cfg *gcs.Config

	// sessionProvided records which config fields the saved session
	// supplied, for verbose source reporting.
	sessionProvided map[string]bool
)

// defaultSessionName is the session consulted when --session is not given.
const defaultSessionName = "default"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gcs",
	Short: "GCS Manager CLI - Manage Globus Connect Server collections",
	Long: `A command-line client for the Globus Connect Server Manager API.

The GCS Manager exposes the collections, storage gateways and roles of a
Globus Connect Server deployment. This CLI drives that API: inspect the
endpoint, create and share collections, and control who may manage what.

Configuration can be provided via:
  - Config file: ~/.config/gcs/config.yaml (or platform-equivalent)
  - Environment variables: GCS_BASE_URL, GCS_ACCESS_TOKEN, etc.
  - Command-line flags: --url, --token, etc.
  - Saved sessions: gcs session set-token (see 'gcs session --help')

Examples:
  # Save a token for the deployment once
  gcs session set-token --url https://gcs.example.org

  # Inspect the deployment
  gcs info
  gcs endpoint show

  # List and create collections
  gcs collections list --filter mapped_collections
  gcs collections create --display-name "Project Data" \
    --storage-gateway-id 4a5e84ce-2635-4c2a-9dba-fc4a4e8d1d03

For more information, visit: https://docs.globus.org/globus-connect-server/`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipCommands := []string{"completion", "version", "help", "commands", "config", "session"}
		for _, skip := range skipCommands {
			if cmd.Name() == skip || cmd.Parent() != nil && cmd.Parent().Name() == skip {
				return nil
			}
		}

		var err error

		// Priority order:
		// 1. Command-line flags (applied below)
		// 2. Environment variables (handled by viper)
		// 3. Config file
		// 4. Saved session (fills in whatever the above left blank)
		sessionProvided = nil
		if sessionName != "" {
			cfg, err = gcs.LoadConfigFromSession(sessionName)
			sessionProvided = map[string]bool{
				gcs.ConfigKeyBaseURL:     true,
				gcs.ConfigKeyAccessToken: true,
			}
		} else {
			cfg, err = gcs.LoadConfig()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Command-line flags override everything (highest priority). The
		// --output default would clobber a config-file setting, so it only
		// participates when the flag was actually set.
		flagOutput := ""
		if cmd.Flags().Changed("output") {
			flagOutput = outputFormat
		}
		cfg.MergeWithFlags(gcs.FlagValues{
			BaseURL:            baseURL,
			AccessToken:        accessToken,
			Timeout:            timeout,
			Verbose:            verbose,
			InsecureSkipVerify: insecureSkipVerify,
			OutputFormat:       flagOutput,
		})
		if !cmd.Flags().Changed("output") && cfg.OutputFormat != "" {
			outputFormat = cfg.OutputFormat
		}

		// No token from flags, env or file: fall back to the default
		// saved session
		if sessionName == "" && cfg.AccessToken == "" {
			adoptDefaultSession(cfg)
		}

		// Configure color output based on config setting
		configureColorOutput(cfg.Color)

		if cfg.Verbose {
			logEnvironmentVariables(cmd)
			logEffectiveConfig(cmd, cfg)
			if sessionName != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] Using session: %s (from --session flag)\n", sessionName)
			}
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "GCS Manager URL (env: GCS_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "", "Globus Auth bearer token (env: GCS_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&sessionName, "session", "s", "", "Use a named saved session (overrides the default session)")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "Request timeout in seconds (default: 30)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: json or table")
	rootCmd.PersistentFlags().BoolVar(&compactJSON, "compact", false, "Output compact JSON (no pretty-printing)")
	rootCmd.PersistentFlags().BoolVarP(&insecureSkipVerify, "insecure", "k", false, "Skip TLS certificate verification (insecure)")

	// Register dynamic flag completions (must be after flags are defined)
	RegisterFlagCompletions()
}

// adoptDefaultSession fills BaseURL and AccessToken from the default saved
// session when nothing else provided them. Missing or expired sessions are
// ignored; the command then fails config validation with a hint instead.
func adoptDefaultSession(cfg *gcs.Config) {
	sessions, err := gcs.LoadSessions()
	if err != nil {
		return
	}
	session, err := sessions.GetSession(defaultSessionName)
	if err != nil || session.AccessToken == "" || session.IsTokenExpired(0) {
		return
	}
	cfg.AccessToken = session.AccessToken
	sessionProvided = map[string]bool{gcs.ConfigKeyAccessToken: true}
	if cfg.BaseURL == "" {
		cfg.BaseURL = session.URL
		sessionProvided[gcs.ConfigKeyBaseURL] = true
	}
}

// sensitiveEnvVars lists environment variable names whose values should be redacted in verbose output.
var sensitiveEnvVars = map[string]bool{
	"GCS_ACCESS_TOKEN": true,
}

// configFieldInfo describes a config field for verbose source reporting.
type configFieldInfo struct {
	key       string                   // config key (e.g., "base-url")
	flagName  string                   // cobra flag name (empty if no flag)
	envVar    string                   // env var name (empty if no env)
	getValue  func(*gcs.Config) string // extracts the effective value
	sensitive bool                     // whether to redact the value
}

// configFields lists the config fields to display in verbose mode.
var configFields = []configFieldInfo{
	{key: gcs.ConfigKeyBaseURL, flagName: "url", envVar: "GCS_BASE_URL", getValue: func(c *gcs.Config) string { return c.BaseURL }},
	{key: gcs.ConfigKeyAccessToken, flagName: "token", envVar: "GCS_ACCESS_TOKEN", getValue: func(c *gcs.Config) string { return c.AccessToken }, sensitive: true},
	{key: gcs.ConfigKeyTimeout, flagName: "timeout", envVar: "GCS_TIMEOUT", getValue: func(c *gcs.Config) string { return strconv.Itoa(c.Timeout) }},
	{key: gcs.ConfigKeyOutputFormat, flagName: "output", envVar: "GCS_OUTPUT_FORMAT", getValue: func(c *gcs.Config) string { return c.OutputFormat }},
	{key: gcs.ConfigKeyInsecureSkipVerify, flagName: "insecure", envVar: "GCS_INSECURE_SKIP_VERIFY", getValue: func(c *gcs.Config) string { return strconv.FormatBool(c.InsecureSkipVerify) }},
}

// logEffectiveConfig prints each effective config value with its source in verbose mode.
func logEffectiveConfig(cmd *cobra.Command, cfg *gcs.Config) {
	for _, field := range configFields {
		value := field.getValue(cfg)

		// Skip unset string fields
		if value == "" {
			continue
		}
		// Skip insecure-skip-verify when false (uninteresting default)
		if field.key == gcs.ConfigKeyInsecureSkipVerify && value == "false" {
			continue
		}

		source := determineConfigSource(cmd, field)

		displayValue := value
		if field.sensitive {
			displayValue = gcs.RedactedValue
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] Config: %s=%s (source: %s)\n", field.key, displayValue, source)
	}
}

// determineConfigSource checks layers in priority order to determine where
// the effective config value came from. A saved session beats environment
// and file because selecting one is an explicit act.
func determineConfigSource(cmd *cobra.Command, field configFieldInfo) string {
	if field.flagName != "" && cmd.Flags().Changed(field.flagName) {
		return "flag"
	}
	if sessionProvided[field.key] {
		return "session"
	}
	if field.envVar != "" && os.Getenv(field.envVar) != "" {
		return "env"
	}
	if cv, err := gcs.GetConfigValue(field.key); err == nil {
		return cv.Source
	}
	return "default"
}

// logEnvironmentVariables prints all GCS_* environment variables in verbose
// mode, redacting values for sensitive variables.
func logEnvironmentVariables(cmd *cobra.Command) {
	var gcsVars []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "GCS_") {
			gcsVars = append(gcsVars, env)
		}
	}

	if len(gcsVars) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] Environment: no GCS_* variables set\n")
		return
	}

	sort.Strings(gcsVars)
	for _, env := range gcsVars {
		name, value, _ := strings.Cut(env, "=")
		if sensitiveEnvVars[name] {
			value = gcs.RedactedValue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] Environment: %s=%s\n", name, value)
	}
}

// configureColorOutput configures color output based on the color setting
func configureColorOutput(colorSetting string) {
	switch colorSetting {
	case "never":
		// Disable all colors
		color.NoColor = true
	case "always":
		// Force colors even if not a TTY
		color.NoColor = false
	case "auto", "":
		// Auto-detect: enable colors only if stdout is a terminal
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	}
}
