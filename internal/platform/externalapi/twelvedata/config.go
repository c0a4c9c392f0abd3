// Package twelvedata provides a client for the Twelve Data market data API.
package twelvedata

import (
	"os"
	"time"
)

// DefaultBaseURL is used when TWELVE_DATA_BASE_URL is unset.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("TWELVE_DATA_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
	}
}
