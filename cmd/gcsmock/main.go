// Command gcsmock runs an in-memory mock of the GCS Manager API. It speaks
// the same document and envelope dialect as a real deployment, so the gcs
// CLI can be pointed at it for demos and integration testing:
//
//	gcsmock &
//	gcs --url http://localhost:9123 --token demo collections list
//
// Configuration comes from GCSMOCK_* environment variables, optionally via
// a .env file in the working directory. State lives in memory and resets on
// every start.
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/webskin/gcs-go-cli/internal/mockgcs"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on environment")
	}

	cfg, err := mockgcs.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := mockgcs.NewLogger(cfg)
	store := mockgcs.NewStore(cfg)
	server := mockgcs.NewServer(cfg, store, logger)

	logger.Info().
		Str("addr", cfg.Addr).
		Int("seed_collections", cfg.SeedCollections).
		Bool("auth_required", cfg.Token != "").
		Msg("mock GCS Manager API listening")

	srv := &http.Server{Addr: cfg.Addr, Handler: server.Handler()}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
