package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	LogLevel     string
	Port         int
	DevMode      bool

	RiskFreeRate float64

	ScoringParallelism   int
	ScoringTimeout       time.Duration
	ScoringSchedule      string
	ScoringConfigVersion string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/navlens.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.06),

		ScoringParallelism:   getEnvAsInt("SCORING_PARALLELISM", 4),
		ScoringTimeout:       getEnvAsDuration("SCORING_TIMEOUT", 30*time.Second),
		ScoringSchedule:      getEnv("SCORING_SCHEDULE", "0 0 2 * * *"), // 02:00 daily
		ScoringConfigVersion: getEnv("SCORING_CONFIG_VERSION", "v1"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("RISK_FREE_RATE must be a decimal in [0, 1], got %v", c.RiskFreeRate)
	}
	if c.ScoringParallelism < 1 {
		return fmt.Errorf("SCORING_PARALLELISM must be at least 1, got %d", c.ScoringParallelism)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
