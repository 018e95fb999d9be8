package gcs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"github.com/webskin/gcs-go-cli/internal/errors"
)

// Config key constants
const (
	ConfigKeyBaseURL            = "base-url"
	ConfigKeyAccessToken        = "access-token"
	ConfigKeyTimeout            = "timeout"
	ConfigKeyVerbose            = "verbose"
	ConfigKeyOutputFormat       = "output-format"
	ConfigKeyColor              = "color"
	ConfigKeyInsecureSkipVerify = "insecure-skip-verify"
)

// Error message constants
const (
	ErrMsgFailedToCreateConfigDir = "failed to create config directory: %w"
	ErrMsgFailedToReadConfigFile  = "failed to read config file: %w"
)

// Config holds the configuration for the GCS Manager client
type Config struct {
	BaseURL            string `yaml:"base-url" mapstructure:"base-url"`
	AccessToken        string `yaml:"access-token" mapstructure:"access-token"` // Globus Auth bearer token
	Timeout            int    `yaml:"timeout" mapstructure:"timeout"`
	Verbose            bool   `yaml:"verbose" mapstructure:"verbose"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`
	OutputFormat       string `yaml:"output-format" mapstructure:"output-format"` // Default output format (table/json)
	Color              string `yaml:"color" mapstructure:"color"`                 // Color output (auto/always/never)
}

// FlagValues holds command-line flag values for merging with config
type FlagValues struct {
	BaseURL            string
	AccessToken        string
	Timeout            int
	Verbose            bool
	InsecureSkipVerify bool
	OutputFormat       string
	Color              string
}

// LoadConfig loads configuration from multiple sources:
// 1. Config file (~/.config/gcs/config.yaml or platform-equivalent)
// 2. Environment variables (GCS_*)
// 3. Command-line flags (set by cobra, highest priority)
func LoadConfig() (*Config, error) {
	// Repair file permissions on every load (protects users upgrading from older versions)
	repairConfigPermissions()

	v := viper.New()

	// Set config file location
	configDir := getConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set environment variable prefix, mapping kebab-case keys to
	// GCS_UPPER_SNAKE variables
	v.SetEnvPrefix("GCS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault(ConfigKeyTimeout, 30)
	v.SetDefault(ConfigKeyVerbose, false)
	v.SetDefault(ConfigKeyOutputFormat, "table")
	v.SetDefault(ConfigKeyColor, "auto")

	// Keys without defaults need an explicit binding, or Unmarshal won't
	// see values that come from the environment alone
	v.BindEnv(ConfigKeyBaseURL)
	v.BindEnv(ConfigKeyAccessToken)
	v.BindEnv(ConfigKeyInsecureSkipVerify)

	// Read config file if it exists (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the entire config to properly handle all fields
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// MergeWithFlags merges configuration with command-line flags
func (c *Config) MergeWithFlags(flags FlagValues) {
	if flags.BaseURL != "" {
		c.BaseURL = flags.BaseURL
	}
	if flags.AccessToken != "" {
		c.AccessToken = flags.AccessToken
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	if flags.Verbose {
		c.Verbose = flags.Verbose
	}
	if flags.InsecureSkipVerify {
		c.InsecureSkipVerify = flags.InsecureSkipVerify
	}
	if flags.OutputFormat != "" {
		c.OutputFormat = flags.OutputFormat
	}
	if flags.Color != "" {
		c.Color = flags.Color
	}
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf(errors.MsgBaseURLRequired)
	}

	if c.AccessToken == "" {
		return fmt.Errorf(errors.MsgAccessTokenRequired)
	}

	return nil
}

// getConfigDir is a variable that returns the platform-specific config directory
// It's a variable (not a function) to allow tests to override it
var getConfigDir = func() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "gcs")
	case "darwin":
		configDir = filepath.Join(os.Getenv("HOME"), ".config", "gcs")
	default: // linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "gcs")
		} else {
			configDir = filepath.Join(os.Getenv("HOME"), ".config", "gcs")
		}
	}

	return configDir
}

// SetGetConfigDirFunc allows tests to override the config directory resolution
func SetGetConfigDirFunc(fn func() string) {
	getConfigDir = fn
}

// InitConfigFile creates a sample config file at the default location
func InitConfigFile() error {
	configDir := getConfigDir()
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf(ErrMsgFailedToCreateConfigDir, err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	sampleConfig := `# GCS CLI Configuration
# You can also use environment variables (GCS_*) or command-line flags

# GCS Manager API of your endpoint (required)
# Either the bare endpoint address or a full URL:
# base-url: "abc123.08cc.data.globus.org"
# base-url: "https://abc123.08cc.data.globus.org/api"

# Globus Auth bearer token for the endpoint's manage_collections scope
# Prefer 'gcs session set-token' over storing it here
# access-token: "..."

# Request timeout in seconds
timeout: 30

# Verbose output
verbose: false

# Skip TLS certificate verification (self-signed test deployments only)
insecure-skip-verify: false

# Default output format (table or json)
output-format: table

# Color output (auto, always, never)
color: auto
`

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Create .gitignore to prevent accidental commits
	gitignorePath := filepath.Join(configDir, ".gitignore")
	gitignoreContent := `# GCS CLI - Do not commit credentials
config.yaml
*.yaml
`
	// Ignore error - .gitignore is optional
	os.WriteFile(gitignorePath, []byte(gitignoreContent), 0644)

	return nil
}

// ConfigValue represents a configuration value with its source
type ConfigValue struct {
	Value  string
	Source string // "file", "env", "default", or "not set"
}

// ValidConfigKeys defines all valid configuration keys
var ValidConfigKeys = map[string]bool{
	ConfigKeyBaseURL:            true,
	ConfigKeyAccessToken:        true,
	ConfigKeyTimeout:            true,
	ConfigKeyVerbose:            true,
	ConfigKeyOutputFormat:       true,
	ConfigKeyColor:              true,
	ConfigKeyInsecureSkipVerify: true,
}

// SensitiveKeys defines which keys contain sensitive information
var SensitiveKeys = map[string]bool{
	ConfigKeyAccessToken: true,
}

// RedactedValue replaces sensitive values in display output
const RedactedValue = "<redacted>"

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// GetConfigDirPath returns the path to the config directory
func GetConfigDirPath() string {
	return getConfigDir()
}

// ConfigExists checks if the config file exists
func ConfigExists() bool {
	_, err := os.Stat(GetConfigPath())
	return err == nil
}

// repairConfigPermissions ensures config files have secure permissions
// This is called on every config load to protect users who upgrade from older versions
func repairConfigPermissions() {
	configDir := getConfigDir()
	configPath := GetConfigPath()

	// Fix directory permissions (should be 0700 - owner only)
	if info, err := os.Stat(configDir); err == nil {
		currentPerms := info.Mode().Perm()
		if currentPerms != 0700 {
			os.Chmod(configDir, 0700)
		}
	}

	// Fix config file permissions (should be 0600 - owner read/write only)
	if info, err := os.Stat(configPath); err == nil {
		currentPerms := info.Mode().Perm()
		if currentPerms != 0600 {
			os.Chmod(configPath, 0600)
		}
	}
}

// GetConfigValue gets a single configuration value with its source
func GetConfigValue(key string) (*ConfigValue, error) {
	if !ValidConfigKeys[key] {
		return nil, fmt.Errorf(errors.MsgInvalidConfigKey, key)
	}

	// Repair permissions before reading
	repairConfigPermissions()

	v := viper.New()
	configDir := getConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("GCS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault(ConfigKeyTimeout, 30)
	v.SetDefault(ConfigKeyVerbose, false)
	v.SetDefault(ConfigKeyOutputFormat, "table")
	v.SetDefault(ConfigKeyColor, "auto")

	// Read config file if it exists
	fileExists := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fileExists = true
	}

	// Determine source
	value := v.GetString(key)
	var source string

	// Check if value is from environment
	if os.Getenv(convertToEnvKey(key)) != "" {
		source = "env"
	} else if fileExists && v.InConfig(key) {
		source = "file"
	} else if value != "" {
		source = "default"
	} else {
		source = "not set"
	}

	return &ConfigValue{
		Value:  value,
		Source: source,
	}, nil
}

// convertToEnvKey converts a kebab-case config key to its GCS_UPPER_SNAKE
// environment variable name
func convertToEnvKey(key string) string {
	return "GCS_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// SetConfigValue sets a configuration value and persists it to the config file
func SetConfigValue(key, value string) error {
	if !ValidConfigKeys[key] {
		return fmt.Errorf(errors.MsgInvalidConfigKey, key)
	}

	configPath := GetConfigPath()
	configDir := getConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf(ErrMsgFailedToCreateConfigDir, err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read existing config if it exists
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf(ErrMsgFailedToReadConfigFile, err)
		}
	}

	// Set the value
	v.Set(key, value)

	// Write back to file
	if err := v.WriteConfig(); err != nil {
		// If config doesn't exist, create it
		if err := v.SafeWriteConfig(); err != nil {
			return fmt.Errorf(errors.MsgFailedToWriteConfigFile, err)
		}
	}

	// Ensure secure file permissions (in case viper created with default perms)
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// UnsetConfigValue removes a configuration value from the config file
func UnsetConfigValue(key string) error {
	if !ValidConfigKeys[key] {
		return fmt.Errorf(errors.MsgInvalidConfigKey, key)
	}

	configPath := GetConfigPath()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read existing config
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf(ErrMsgFailedToReadConfigFile, err)
	}

	// Get all settings
	settings := v.AllSettings()

	// Remove the key
	delete(settings, key)

	// Create a new viper instance and set all values except the removed key
	newV := viper.New()
	newV.SetConfigFile(configPath)
	newV.SetConfigType("yaml")

	for k, val := range settings {
		newV.Set(k, val)
	}

	// Write back to file
	if err := newV.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetAllConfigValues returns all configuration values with their sources
func GetAllConfigValues() (map[string]*ConfigValue, error) {
	result := make(map[string]*ConfigValue)

	for key := range ValidConfigKeys {
		value, err := GetConfigValue(key)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}

	return result, nil
}

// ResetConfig deletes the config file
func ResetConfig() error {
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist")
	}

	if err := os.Remove(configPath); err != nil {
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

// ValidateConfigFile validates the current configuration and returns any errors
func ValidateConfigFile() []ValidationError {
	var errs []ValidationError

	config, err := LoadConfig()
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "general",
			Message: fmt.Sprintf("Failed to load config: %v", err),
		})
		return errs
	}

	// Check base URL
	if config.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "base-url",
			Message: "Base URL is required",
		})
	}

	// Check authentication
	if config.AccessToken == "" {
		errs = append(errs, ValidationError{
			Field:   "access-token",
			Message: "Access token is required (run 'gcs session set-token')",
		})
	}

	// Validate output format
	if config.OutputFormat != "" && config.OutputFormat != "table" && config.OutputFormat != "json" {
		errs = append(errs, ValidationError{
			Field:   "output-format",
			Message: "Output format must be 'table' or 'json'",
		})
	}

	// Validate color
	if config.Color != "" && config.Color != "auto" && config.Color != "always" && config.Color != "never" {
		errs = append(errs, ValidationError{
			Field:   "color",
			Message: "Color must be 'auto', 'always', or 'never'",
		})
	}

	// Validate timeout
	if config.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "Timeout must be a positive number",
		})
	}

	return errs
}
