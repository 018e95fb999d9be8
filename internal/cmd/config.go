package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/webskin/gcs-go-cli/internal/gcs"
)

// Configuration keys and their descriptions
var configKeyDescriptions = map[string]string{
	gcs.ConfigKeyBaseURL:            "GCS Manager URL",
	gcs.ConfigKeyAccessToken:        "Globus Auth bearer token",
	gcs.ConfigKeyTimeout:            "Request timeout in seconds",
	gcs.ConfigKeyVerbose:            "Verbose output (true/false)",
	gcs.ConfigKeyOutputFormat:       "Default output format (table/json)",
	gcs.ConfigKeyColor:              "Color output (auto/always/never)",
	gcs.ConfigKeyInsecureSkipVerify: "Skip TLS certificate verification (true/false)",
}

// sortedConfigKeys returns the known config keys in stable order
func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeyDescriptions))
	for key := range configKeyDescriptions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// printValidConfigKeys prints all valid configuration keys
func printValidConfigKeys(w io.Writer) {
	fmt.Fprintln(w, "Valid configuration keys:")
	for _, key := range sortedConfigKeys() {
		fmt.Fprintf(w, "  %-22s - %s\n", key, configKeyDescriptions[key])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gcs config set <key> <value>")
	fmt.Fprintln(w, "  gcs session set-token          - Save a bearer token outside the config file")
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration settings.

Configuration can be set via:
  - Config file (~/.config/gcs/config.yaml)
  - Environment variables (GCS_*)
  - Command-line flags

Use subcommands to view and modify configuration.`,
}

// buildConfigSetLongHelp builds the long help text for config set
func buildConfigSetLongHelp() string {
	var sb strings.Builder
	sb.WriteString("Set a configuration value and persist it to the config file.\n\n")

	sb.WriteString("Valid configuration keys:\n")
	for _, key := range sortedConfigKeys() {
		sb.WriteString(fmt.Sprintf("  %-22s - %s\n", key, configKeyDescriptions[key]))
	}
	sb.WriteString("\n")

	sb.WriteString("Note: prefer 'gcs session set-token' for bearer tokens; tokens in the\n")
	sb.WriteString("config file are applied to every deployment the CLI talks to.\n\n")

	sb.WriteString("Examples:\n")
	sb.WriteString("  gcs config set base-url https://gcs.example.org\n")
	sb.WriteString("  gcs config set timeout 60\n")
	sb.WriteString("  gcs config set output-format json")

	return sb.String()
}

// configSetCmd represents the config set command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  buildConfigSetLongHelp(),
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			// No arguments provided - show valid keys
			printValidConfigKeys(cmd.ErrOrStderr())
			return fmt.Errorf("missing required arguments")
		}
		if len(args) == 1 {
			return fmt.Errorf("missing value for key '%s'\nUsage: gcs config set <key> <value>", args[0])
		}
		if len(args) > 2 {
			return fmt.Errorf("too many arguments\nUsage: gcs config set <key> <value>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := gcs.SetConfigValue(key, value); err != nil {
			// If invalid key, show valid keys
			if strings.Contains(err.Error(), "invalid config key") {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
				printValidConfigKeys(cmd.ErrOrStderr())
				return fmt.Errorf("") // Return empty error since we already printed the message
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, value)

		// Warn about sensitive data storage
		if gcs.SensitiveKeys[key] {
			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, "\n⚠️  SECURITY WARNING:")
			fmt.Fprintln(out, "   Tokens are stored in plaintext in the config file.")
			fmt.Fprintln(out, "   File permissions are set to 0600 (owner read/write only).")
			fmt.Fprintln(out, "   Never commit config.yaml to version control.")
		}

		return nil
	},
}

// configGetCmd represents the config get command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value and show its source.

The source indicates where the value comes from:
  - file    : Set in config file
  - env     : Set via environment variable
  - default : Using default value
  - not set : No value configured

Example:
  gcs config get base-url`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		configValue, err := gcs.GetConfigValue(key)
		if err != nil {
			return err
		}

		// Check if it's a sensitive key and should be redacted
		value := configValue.Value
		if gcs.SensitiveKeys[key] && value != "" {
			value = gcs.RedactedValue
		}

		out := cmd.OutOrStdout()
		if configValue.Source == "not set" {
			fmt.Fprintf(out, "%s: (not set)\n", key)
		} else {
			fmt.Fprintf(out, "%s: %s (source: %s)\n", key, value, configValue.Source)
		}

		return nil
	},
}

// configUnsetCmd represents the config unset command
var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Long: `Remove a configuration value from the config file.

Note: This only removes the value from the config file.
Environment variables and defaults may still provide a value.

Example:
  gcs config unset output-format`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		if err := gcs.UnsetConfigValue(key); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s from config file\n", key)
		return nil
	},
}

// configListCmd represents the config list command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Long: `List all configuration values with their sources.

The output shows:
  - KEY    : Configuration key name
  - VALUE  : Current value (sensitive values shown as <redacted>)
  - SOURCE : Where the value comes from (file/env/default/not set)

Use --show-secrets to display sensitive values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		showSecrets, _ := cmd.Flags().GetBool("show-secrets")

		allValues, err := gcs.GetAllConfigValues()
		if err != nil {
			return err
		}

		// Create table
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"KEY", "VALUE", "SOURCE"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetTablePadding("\t")
		table.SetNoWhiteSpace(true)

		keys := make([]string, 0, len(allValues))
		for key := range allValues {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			configValue := allValues[key]
			value := configValue.Value

			// Redact sensitive values unless --show-secrets is set
			if gcs.SensitiveKeys[key] && !showSecrets && value != "" {
				value = gcs.RedactedValue
			}

			// Show empty values as "(not set)"
			if value == "" {
				value = "(not set)"
			}

			table.Append([]string{key, value, configValue.Source})
		}

		table.Render()

		fmt.Fprintln(cmd.ErrOrStderr(), "\nNote: Tokens saved with 'gcs session set-token' live in the sessions file, not here.")
		return nil
	},
}

// configPathCmd represents the config path command
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Long: `Show the path to the configuration file.

This is useful for troubleshooting configuration issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := gcs.GetConfigPath()
		configDir := gcs.GetConfigDirPath()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", configPath)
		fmt.Fprintf(out, "Config directory: %s\n", configDir)
		fmt.Fprintf(out, "Sessions file: %s\n", gcs.GetSessionsPath())

		// Check if config file exists
		if gcs.ConfigExists() {
			fmt.Fprintf(out, "Status: exists\n")
		} else {
			fmt.Fprintf(out, "Status: not created (run 'gcs config init' to create)\n")
		}

		// Show search paths
		fmt.Fprintf(out, "\nConfig file search paths:\n")
		fmt.Fprintf(out, "  1. %s\n", configPath)
		fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")

		return nil
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Create a sample configuration file at the default location.

The configuration file will be created at:
  - Linux/macOS: ~/.config/gcs/config.yaml
  - Windows: %APPDATA%\gcs\config.yaml

The file contains commented example settings. Edit it to point the CLI
at your GCS Manager.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := gcs.InitConfigFile(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		configPath := filepath.Join(getConfigDirForDisplay(), "config.yaml")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Configuration file created at: %s\n", configPath)
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Edit the config file and uncomment/set your values")
		fmt.Fprintln(out, "  2. Or use environment variables (GCS_BASE_URL, GCS_ACCESS_TOKEN, etc.)")
		fmt.Fprintln(out, "  3. Or use command-line flags (--url, --token, etc.)")

		fmt.Fprintln(out, "\n⚠️  SECURITY NOTICE:")
		fmt.Fprintln(out, "   - File permissions set to 0600 (owner read/write only)")
		fmt.Fprintln(out, "   - Tokens stored in plaintext - never commit to version control")
		fmt.Fprintln(out, "   - Add config.yaml to .gitignore if using git")

		return nil
	},
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long: `Validate the current configuration and check for errors.

This command checks:
  - Configuration file syntax
  - Known keys
  - Valid values for fields

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if !gcs.ConfigExists() {
			fmt.Fprintln(out, "No configuration file found")
			fmt.Fprintf(out, "Run 'gcs config init' to create one at: %s\n", gcs.GetConfigPath())
			os.Exit(1)
		}

		errs := gcs.ValidateConfigFile()

		if len(errs) == 0 {
			fmt.Fprintln(out, "✓ Configuration is valid")
			return nil
		}

		fmt.Fprintf(out, "✗ Configuration has %d error(s):\n\n", len(errs))
		for _, err := range errs {
			if err.Field == "general" {
				fmt.Fprintf(out, "  - %s\n", err.Message)
			} else {
				fmt.Fprintf(out, "  - %s: %s\n", err.Field, err.Message)
			}
		}

		os.Exit(1)
		return nil
	},
}

// configResetCmd represents the config reset command
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration by deleting the config file.

This will delete the configuration file. You will need to run
'gcs config init' to create a new one.

Note: This does not affect environment variables, command-line flags
or saved sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !gcs.ConfigExists() {
			return fmt.Errorf("config file does not exist")
		}

		// Ask for confirmation
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "This will delete: %s\n", gcs.GetConfigPath())
		fmt.Fprint(out, "Are you sure? (y/N): ")

		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}

		if err := gcs.ResetConfig(); err != nil {
			return err
		}

		fmt.Fprintln(out, "✓ Configuration file deleted")
		fmt.Fprintf(out, "Run 'gcs config init' to create a new config file\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands to config
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configResetCmd)

	// Add flags
	configListCmd.Flags().Bool("show-secrets", false, "Show sensitive values (tokens)")

	// Complete key arguments from the known key set
	configGetCmd.ValidArgsFunction = completeConfigKeys
	configSetCmd.ValidArgsFunction = completeConfigKeys
	configUnsetCmd.ValidArgsFunction = completeConfigKeys
}

// getConfigDirForDisplay returns a user-friendly display of the config directory
func getConfigDirForDisplay() string {
	switch runtime.GOOS {
	case "windows":
		return "%APPDATA%\\gcs"
	default:
		return "~/.config/gcs"
	}
}
