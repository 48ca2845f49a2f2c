// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rebrag/GTOLite-Helper-Script/internal/remote"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Folder of .rng input files (always absolute)
	OutputDir      string // JSON export destination (always absolute)
	DBPath         string // SQLite build history; empty disables persistence
	LogLevel       string
	Port           int
	DevMode        bool
	RescanSchedule string // cron expression; empty disables scheduled rescans
	Remote         remote.Config
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := ensureDir(getEnv("RANGES_DATA_DIR", "./data/ranges"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	outputDir, err := ensureDir(getEnv("RANGES_OUTPUT_DIR", "./data/export"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	dbPath := getEnv("RANGES_DB_PATH", filepath.Join(dataDir, "..", "ranges.db"))

	cfg := &Config{
		DataDir:        dataDir,
		OutputDir:      outputDir,
		DBPath:         dbPath,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvAsInt("GO_PORT", 8090),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		RescanSchedule: getEnv("RESCAN_SCHEDULE", ""),
		Remote: remote.Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Prefix:    getEnv("S3_PREFIX", ""),
			AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}

	return cfg, nil
}

// ensureDir resolves a directory to an absolute path and creates it.
func ensureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", abs, err)
	}
	return abs, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
