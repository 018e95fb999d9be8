package mockgcs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the mock's logger from the configured level and format.
// Console format writes human-readable lines; anything else emits raw JSON.
func NewLogger(cfg *Config) zerolog.Logger {
	var output io.Writer = os.Stderr
	if cfg.LogFormat == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(output).With().Timestamp().Str("service", "gcsmock").Logger().Level(level)
}
