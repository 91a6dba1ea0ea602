package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseURL string `yaml:"database_url"`

	// Server
	ServerPort string `yaml:"server_port"`

	// Training provider
	ReplicateAPIToken      string `yaml:"replicate_api_token"`
	ProviderTimeoutSeconds int    `yaml:"provider_timeout_seconds"`

	// Model registry hub
	HuggingFaceToken    string `yaml:"huggingface_token"`
	HuggingFaceUsername string `yaml:"huggingface_username"`

	// Status reconciliation
	ReconcileEnabled bool `yaml:"reconcile_enabled"`

	// Registry housekeeping
	CleanupSchedule   string `yaml:"cleanup_schedule"`
	CleanupGraceHours int    `yaml:"cleanup_grace_hours"`
	CleanupDryRun     bool   `yaml:"cleanup_dry_run"`
}

// Load loads configuration from environment variables, optionally
// overlaid by the YAML file named in CONFIG_FILE
func Load() *Config {
	cfg := &Config{
		DatabaseURL:            getEnv("DATABASE_URL", "postgres://localhost/dreamlens?sslmode=disable"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		ReplicateAPIToken:      getEnv("REPLICATE_API_TOKEN", ""),
		ProviderTimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 5),
		HuggingFaceToken:       getEnv("HUGGINGFACE_API_TOKEN", ""),
		HuggingFaceUsername:    getEnv("HUGGINGFACE_USERNAME", ""),
		ReconcileEnabled:       getEnvBool("RECONCILE_ENABLED", true),
		CleanupSchedule:        getEnv("CLEANUP_SCHEDULE", "@hourly"),
		CleanupGraceHours:      getEnvInt("CLEANUP_GRACE_HOURS", 24),
		CleanupDryRun:          getEnvBool("CLEANUP_DRY_RUN", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Printf("Failed to load config file %s: %v", path, err)
		}
	}

	return cfg
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// ProviderTimeout returns the bound on one live provider status call
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// CleanupGrace returns how long dead registry repos are left alone
func (c *Config) CleanupGrace() time.Duration {
	return time.Duration(c.CleanupGraceHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
