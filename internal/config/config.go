// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"chainfolio/pkg/db"
)

// ProviderConfig holds settings for the external token-indexing API.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// ChainMap maps user-facing chain names to provider chain identifiers.
	// It is passed into the provider client at construction; unknown names
	// pass through unchanged.
	ChainMap map[string]string
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	Provider   ProviderConfig
}

// LoadConfig loads configuration from environment variables, after loading an
// optional .env file. It returns an AppConfig instance or an error if any
// required variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	// Load .env if present; a missing file is not an error.
	_ = godotenv.Load()

	serverPort := getEnv("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	timeoutSec, err := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "chainfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Provider: ProviderConfig{
			APIKey:   os.Getenv("PROVIDER_API_KEY"),
			BaseURL:  getEnv("PROVIDER_BASE_URL", "https://deep-index.moralis.io/api/v2.2"),
			Timeout:  time.Duration(timeoutSec) * time.Second,
			ChainMap: DefaultChainMap(),
		},
	}, nil
}

// DefaultChainMap returns the supported chain name -> provider identifier
// mapping. A fresh map is returned so callers cannot mutate shared state.
func DefaultChainMap() map[string]string {
	return map[string]string{
		"eth":       "eth",
		"bsc":       "bsc",
		"polygon":   "polygon",
		"avalanche": "avalanche",
		"fantom":    "fantom",
		"arbitrum":  "arbitrum",
		"optimism":  "optimism",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
