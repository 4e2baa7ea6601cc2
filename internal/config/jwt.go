package config

import (
	"fmt"
	"strconv"
	"time"
)

// JWTConfig holds configuration for recruiter token signing and verification.
type JWTConfig struct {
	Secret          string
	PreviousSecret  string // still accepted for verification during rotation
	ExpirationHours int
	KeyCacheTTL     time.Duration
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_PREVIOUS_SECRET, JWT_EXPIRATION_HOURS (default: 24)
// and JWT_KEY_CACHE_TTL (default: 5m).
func NewJWTConfig() (*JWTConfig, error) {
	k, err := Env()
	if err != nil {
		return nil, err
	}

	secret := k.String("jwt_secret")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationStr := k.String("jwt_expiration_hours")
	if expirationStr == "" {
		expirationStr = "24"
	}
	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	ttlStr := k.String("jwt_key_cache_ttl")
	if ttlStr == "" {
		ttlStr = "5m"
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_KEY_CACHE_TTL: %v", err)
	}

	config := &JWTConfig{
		Secret:          secret,
		PreviousSecret:  k.String("jwt_previous_secret"),
		ExpirationHours: expirationHours,
		KeyCacheTTL:     ttl,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.KeyCacheTTL <= 0 {
		return fmt.Errorf("JWT_KEY_CACHE_TTL must be positive, got: %s", c.KeyCacheTTL)
	}
	return nil
}
