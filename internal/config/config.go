package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token   string
	AppID   string
	GuildID string

	// Storage
	DataDir     string
	StorageType string // "sqlite", "json" or "memory"

	// Mirror
	MirrorType    string // "elasticsearch" or "none"
	MirrorURL     string
	MirrorUser    string
	MirrorPass    string
	MirrorPrefix  string

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Get working directory for resource paths
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := &Config{
		Token:        os.Getenv("DISCORD_TOKEN"),
		AppID:        os.Getenv("APP_ID"),
		GuildID:      os.Getenv("GUILD_ID"),
		Environment:  getEnvWithDefault("ENVIRONMENT", "development"),
		DataDir:      getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		StorageType:  getEnvWithDefault("STORAGE_TYPE", "json"),
		MirrorType:   getEnvWithDefault("MIRROR_TYPE", "none"),
		MirrorURL:    getEnvWithDefault("ELASTICSEARCH_URL", "http://localhost:9200"),
		MirrorUser:   os.Getenv("ELASTICSEARCH_USERNAME"),
		MirrorPass:   os.Getenv("ELASTICSEARCH_PASSWORD"),
		MirrorPrefix: getEnvWithDefault("ELASTICSEARCH_INDEX_PREFIX", "bank-lomita"),
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
