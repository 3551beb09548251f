package config

import (
	"os"
	"time"
)

// parseEnv overlays configuration values from FILEGATE_* environment
// variables. Unset variables leave the current value untouched, so the
// overlay composes with defaults and the JSON file. Duration variables
// accept time.ParseDuration syntax ("15m", "1h30m"); invalid values panic.
//
// A .env file, if present, is loaded into the process environment by main
// before LoadConfig runs.
func parseEnv(config *Config) {
	if v := os.Getenv("FILEGATE_HTTP_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("FILEGATE_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("FILEGATE_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("FILEGATE_UPLOAD_GRANT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.UploadGrantTTL = d
	}
	if v := os.Getenv("FILEGATE_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
	if v := os.Getenv("FILEGATE_S3_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("FILEGATE_S3_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("FILEGATE_S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("FILEGATE_S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("FILEGATE_S3_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
