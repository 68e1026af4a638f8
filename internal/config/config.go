package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string // GANTRY_DATABASE_URL (required)
	HTTPAddr    string // GANTRY_HTTP_ADDR (default ":8080")
	NATSURL     string // GANTRY_NATS_URL (optional, empty = no events)
	AuthToken   string // GANTRY_AUTH_TOKEN (optional, empty = auth disabled)

	// RequireFormat controls whether the format job gates the pipeline.
	// GANTRY_REQUIRE_FORMAT (default true). This is a policy choice; demote
	// it here rather than editing the workflow.
	RequireFormat bool

	// Archive settings
	ArchiveInterval   time.Duration // GANTRY_ARCHIVE_INTERVAL (default 5m; 0 = disabled)
	ArchiveS3Bucket   string        // GANTRY_ARCHIVE_S3_BUCKET (enables S3 when set)
	ArchiveS3Endpoint string        // GANTRY_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
	ArchiveS3Region   string        // GANTRY_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Key      string        // GANTRY_ARCHIVE_S3_KEY (default "gantry/runs.jsonl")
	ArchiveFile       string        // GANTRY_ARCHIVE_FILE (enables file destination when set)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("GANTRY_DATABASE_URL"),
		HTTPAddr:          envOrDefault("GANTRY_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("GANTRY_NATS_URL"),
		AuthToken:         os.Getenv("GANTRY_AUTH_TOKEN"),
		ArchiveS3Bucket:   os.Getenv("GANTRY_ARCHIVE_S3_BUCKET"),
		ArchiveS3Endpoint: os.Getenv("GANTRY_ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Region:   envOrDefault("GANTRY_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Key:      envOrDefault("GANTRY_ARCHIVE_S3_KEY", "gantry/runs.jsonl"),
		ArchiveFile:       os.Getenv("GANTRY_ARCHIVE_FILE"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("GANTRY_DATABASE_URL is required")
	}

	requireFormat := envOrDefault("GANTRY_REQUIRE_FORMAT", "true")
	b, err := strconv.ParseBool(requireFormat)
	if err != nil {
		return nil, fmt.Errorf("GANTRY_REQUIRE_FORMAT: %w", err)
	}
	c.RequireFormat = b

	intervalStr := envOrDefault("GANTRY_ARCHIVE_INTERVAL", "5m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("GANTRY_ARCHIVE_INTERVAL: %w", err)
		}
		c.ArchiveInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
