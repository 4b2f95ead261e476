// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string  // Directory holding the CSV record store
	LogDir             string  // Directory for the action log, emails and social posts
	Port               int     // HTTP port for the dashboard API
	LogLevel           string  // debug, info, warn, error
	DevMode            bool    // Relaxed CORS for local dashboard development
	DealerName         string  // Used in reasoning-service prompts
	MinProfitMargin    float64 // Lowest acceptable margin, as a fraction (0.05 = 5%)
	MaxPriceAdjustment float64 // Largest allowed price change, as a fraction
	RunIntervalMinutes int     // Autonomous cycle interval
	DryRun             bool    // Simulate actions instead of executing them
	AWSRegion          string  // Region for the Bedrock runtime client
	BedrockModelID     string  // Empty disables the model; fallback decisions only
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("LOTPILOT_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logDir := getEnv("LOTPILOT_LOG_DIR", "logs")
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log directory path: %w", err)
	}
	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		LogDir:             absLogDir,
		Port:               getEnvAsInt("GO_PORT", 8001),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		DealerName:         getEnv("DEALER_NAME", "Premium Auto Sales"),
		MinProfitMargin:    getEnvAsFloat("MIN_PROFIT_MARGIN", 0.05),
		MaxPriceAdjustment: getEnvAsFloat("MAX_PRICE_ADJUSTMENT", 0.15),
		RunIntervalMinutes: getEnvAsInt("AGENT_RUN_INTERVAL_MINUTES", 60),
		DryRun:             getEnvAsBool("AGENT_DRY_RUN", true),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.RunIntervalMinutes <= 0 {
		return fmt.Errorf("AGENT_RUN_INTERVAL_MINUTES must be positive, got %d", c.RunIntervalMinutes)
	}
	if c.MinProfitMargin < 0 || c.MinProfitMargin >= 1 {
		return fmt.Errorf("MIN_PROFIT_MARGIN must be in [0, 1), got %.2f", c.MinProfitMargin)
	}
	if c.MaxPriceAdjustment <= 0 || c.MaxPriceAdjustment >= 1 {
		return fmt.Errorf("MAX_PRICE_ADJUSTMENT must be in (0, 1), got %.2f", c.MaxPriceAdjustment)
	}
	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
