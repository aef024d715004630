// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"os"
)

// Config is the server runtime configuration.
type Config struct {
	HTTPPort     string
	DatabasePath string
	JWTSecret    string
	CORSOrigins  string

	// BlobBackend selects where justificatifs go: "local" or "gcs".
	BlobBackend string
	BlobDir     string
	GCSBucket   string
}

// Load reads the configuration from environment variables, applying
// development defaults. JWT_SECRET has no default: tokens signed with a
// guessable secret are worse than no auth at all.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/ledger.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CORSOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		BlobBackend:  getEnv("BLOB_BACKEND", "local"),
		BlobDir:      getEnv("BLOB_DIR", "./data/blobs"),
		GCSBucket:    os.Getenv("GCS_BUCKET"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	switch cfg.BlobBackend {
	case "local":
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, errors.New("GCS_BUCKET is required when BLOB_BACKEND=gcs")
		}
	default:
		return nil, errors.New("BLOB_BACKEND must be local or gcs")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
