/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the campaign ledger server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment
  2. Initialize SQLite store
  3. Initialize blob store (local directory or GCS bucket)
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

CONFIGURATION (environment):
  HTTP_PORT             Server port (default: 8080)
  DATABASE_PATH         SQLite database path (default: ./data/ledger.db)
  JWT_SECRET            Token signing secret, min 32 chars (required)
  CORS_ALLOWED_ORIGINS  Comma-separated origins
  BLOB_BACKEND          "local" (default) or "gcs"
  BLOB_DIR              Local blob root (default: ./data/blobs)
  GCS_BUCKET            Bucket name when BLOB_BACKEND=gcs

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quitus/campaign-ledger/api"
	"github.com/quitus/campaign-ledger/blob"
	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/config"
	"github.com/quitus/campaign-ledger/logger"
	"github.com/quitus/campaign-ledger/store/sqlite"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to initialize database")
	}
	defer store.Close()

	// Initialize blob store
	var blobs campaign.BlobStore
	switch cfg.BlobBackend {
	case "gcs":
		gcs, err := blob.NewGCS(context.Background(), cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.GCSBucket).Msg("failed to initialize GCS blob store")
		}
		defer gcs.Close()
		blobs = gcs
	default:
		local, err := blob.NewLocal(cfg.BlobDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.BlobDir).Msg("failed to initialize local blob store")
		}
		blobs = local
	}

	// Wire services and router
	submission := campaign.NewSubmissionService(store, blobs, log)
	handler := api.NewHandler(store, store, submission, log)
	router := api.NewRouter(handler, cfg.JWTSecret, strings.Split(cfg.CORSOrigins, ","))

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
