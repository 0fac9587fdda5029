// Package config provides configuration loading and management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// MorphoConfig holds configuration for the Morpho leaderboard utility
type MorphoConfig struct {
	// GraphQL endpoint for the Morpho API
	GraphQLURL string

	// Chain selector: ethereum, base, arbitrum or all
	Chain string

	// Number of leaderboard rows to print, clamped to [1, 100]
	Limit int

	// Vault listing page size
	First int

	// Vault listing offset
	Skip int

	// Positions requested per market adapter in exposure queries
	PositionsFirst int

	// Minimum delay between GraphQL requests
	RequestDelay time.Duration

	// Per-request deadline
	RequestTimeout time.Duration
}

// ZerionConfig holds configuration for the Zerion portfolio utility
type ZerionConfig struct {
	// REST base URL for the Zerion API
	BaseURL string

	// API key, required; transformed into Basic auth by the client
	APIKey string

	// Per-request deadline
	RequestTimeout time.Duration
}

// LoadMorpho creates a MorphoConfig from environment variables
func LoadMorpho() MorphoConfig {
	cfg := MorphoConfig{
		GraphQLURL:     GetEnvOrDefault("MORPHO_GRAPHQL_URL", "https://api.morpho.org/graphql"),
		Chain:          strings.ToLower(GetEnvOrDefault("CHAIN", "all")),
		Limit:          GetEnvAsInt("LIMIT", 10),
		First:          GetEnvAsInt("FIRST", 500),
		Skip:           GetEnvAsInt("SKIP", 0),
		PositionsFirst: GetEnvAsInt("POSITIONS_FIRST", 50),
		RequestDelay:   time.Duration(GetEnvAsInt("REQUEST_DELAY_MS", 0)) * time.Millisecond,
		RequestTimeout: GetEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	cfg.Limit = ClampLimit(cfg.Limit)
	return cfg
}

// LoadZerion creates a ZerionConfig from environment variables
func LoadZerion() ZerionConfig {
	return ZerionConfig{
		BaseURL:        GetEnvOrDefault("ZERION_API_URL", "https://api.zerion.io"),
		APIKey:         GetEnvOrDefault("ZERION_API_KEY", ""),
		RequestTimeout: GetEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// ClampLimit bounds the leaderboard row count to [1, 100]
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
