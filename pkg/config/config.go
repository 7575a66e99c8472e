package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Retrieval
	CacheRoot       string        // Root directory where downloaded graphs are stored
	CatalogDir      string        // Directory holding the repository catalog JSON files
	DownloadWorkers int           // Maximum number of concurrent downloads
	HTTPTimeout     time.Duration // Per-request timeout for downloads and scrapes
	UserAgent       string        // User-Agent sent to dataset mirrors
	ContactEmail    string        // Sent in the From header; some mirrors require it

	// Neo4j export (optional)
	Neo4jURI        string
	Neo4jUser       string
	Neo4jPassword   string
	ExportBatchSize int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		CacheRoot:       getEnv("CACHE_ROOT", "graphs"),
		CatalogDir:      getEnv("CATALOG_DIR", "catalogs"),
		DownloadWorkers: getEnvInt("DOWNLOAD_WORKERS", 4),
		HTTPTimeout:     time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 60)) * time.Second,
		UserAgent:       getEnv("USER_AGENT", "graphmine/1.0"),
		ContactEmail:    getEnv("CONTACT_EMAIL", ""),
		Neo4jURI:        getEnv("NEO4J_URI", ""),
		Neo4jUser:       getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:   getEnv("NEO4J_PASSWORD", ""),
		ExportBatchSize: getEnvInt("EXPORT_BATCH_SIZE", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.CacheRoot == "" {
		return fmt.Errorf("CACHE_ROOT is required")
	}
	if c.CatalogDir == "" {
		return fmt.Errorf("CATALOG_DIR is required")
	}
	if c.DownloadWorkers <= 0 {
		return fmt.Errorf("DOWNLOAD_WORKERS must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	// Neo4j settings are only needed when exporting; the URI gates the feature
	if c.Neo4jURI != "" && c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required when NEO4J_URI is set")
	}
	return nil
}

// ExportEnabled returns true when a Neo4j export target is configured
func (c *Config) ExportEnabled() bool {
	return c.Neo4jURI != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
