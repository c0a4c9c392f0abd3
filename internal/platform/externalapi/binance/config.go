// Package binance provides a market data client for Binance spot klines.
package binance

import (
	"os"
	"time"
)

// Config holds configuration for the Binance client.
type Config struct {
	Enabled   bool          // Route crypto symbols to Binance
	APIKey    string        // Optional; klines are a public endpoint
	SecretKey string        // Optional
	BaseURL   string        // Overrides the library default (e.g. for testnet)
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads Binance configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Enabled:   os.Getenv("BINANCE_ENABLED") == "true",
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		BaseURL:   os.Getenv("BINANCE_BASE_URL"),
		Timeout:   10 * time.Second,
	}
}
