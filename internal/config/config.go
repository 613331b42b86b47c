package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	RefreshSchedule string // "daily" or "weekly"

	// Database configuration (Supabase exposes a Postgres connection string)
	DatabaseURL string

	// Scraper configuration
	ApifyToken   string
	ApifyActorID string

	// LLM proxy configuration
	LLMProxyURL string
	LLMAPIKey   string
	LLMModel    string

	// Azure Blob snapshot archive (optional)
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	AlertWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Audit cache TTL in hours
	CacheTTLHours int

	// Scoring overrides
	BioKeywords []string // empty means engine defaults
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Debug:           getBoolEnv("DEBUG", false),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "daily"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		ApifyToken:   getEnv("APIFY_TOKEN", ""),
		ApifyActorID: getEnv("APIFY_ACTOR_ID", "apify~instagram-profile-scraper"),

		LLMProxyURL: getEnv("LLM_PROXY_URL", ""),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "snapshots"),

		AlertWebhookURL:   getEnv("ALERT_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		CacheTTLHours: getIntEnv("CACHE_TTL_HOURS", 24),

		BioKeywords: getSliceEnv("BIO_KEYWORDS", nil),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ApifyToken == "" {
		return fmt.Errorf("APIFY_TOKEN is required")
	}

	if c.RefreshSchedule != "daily" && c.RefreshSchedule != "weekly" {
		return fmt.Errorf("REFRESH_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.CacheTTLHours <= 0 {
		return fmt.Errorf("CACHE_TTL_HOURS must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
