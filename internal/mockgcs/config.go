// Package mockgcs serves an in-memory fake of the GCS Manager API for
// demos and CLI integration testing. It speaks the same envelope dialect
// as a real deployment: DATA_TYPE-tagged documents inside result#1.0.0
// envelopes, with marker paging on list endpoints.
package mockgcs

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the mock server configuration, read from GCSMOCK_*
// environment variables.
type Config struct {
	Addr           string `envconfig:"GCSMOCK_ADDR" default:":9123"`
	LogLevel       string `envconfig:"GCSMOCK_LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"GCSMOCK_LOG_FORMAT" default:"console"`
	PageSize       int    `envconfig:"GCSMOCK_PAGE_SIZE" default:"25"`
	EndpointName   string `envconfig:"GCSMOCK_ENDPOINT_NAME" default:"Mock GCS Endpoint"`
	ManagerVersion string `envconfig:"GCSMOCK_MANAGER_VERSION" default:"5.4.61"`

	// Token, when set, makes every request except GET /info require
	// "Authorization: Bearer <Token>". Empty accepts anything.
	Token string `envconfig:"GCSMOCK_TOKEN"`

	// SeedCollections is how many mapped collections the store starts with.
	SeedCollections int `envconfig:"GCSMOCK_SEED_COLLECTIONS" default:"3"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("GCSMOCK_PAGE_SIZE must be at least 1, got %d", cfg.PageSize)
	}
	return &cfg, nil
}
