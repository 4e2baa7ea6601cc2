package ratelimit

import (
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key groups all paths matched by a prefix config into one bucket.
func (e *EndpointConfig) key(path string) string {
	if e.Path != "" {
		return e.Path
	}
	return path
}

// LoadConfig reads RATE_LIMIT_* settings from a koanf instance built from the environment.
func LoadConfig(k *koanf.Koanf) *Config {
	if k.Exists("rate_limit_enabled") && !k.Bool("rate_limit_enabled") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    intOr(k, "rate_limit_default_limit", 1000),
		DefaultWindow:   durationOr(k, "rate_limit_default_window", time.Minute),
		CleanupInterval: durationOr(k, "rate_limit_cleanup_interval", 5*time.Minute),
		Whitelist:       parseIPList(k.String("rate_limit_whitelist")),
		Blacklist:       parseIPList(k.String("rate_limit_blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Document processing and analysis
		{Path: "/api/candidates/upload-resumes", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/api/resume/analyze", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		// Account endpoints
		{Path: "/api/auth/signup", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/api/auth/verify", Method: "POST", Limit: 20, Window: 10 * time.Minute, Burst: 5},
		{Path: "/api/auth/login", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/api/candidates/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/candidates/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func intOr(k *koanf.Koanf, key string, def int) int {
	if !k.Exists(key) {
		return def
	}
	if v := k.Int(key); v > 0 {
		return v
	}
	return def
}

func durationOr(k *koanf.Koanf, key string, def time.Duration) time.Duration {
	if !k.Exists(key) {
		return def
	}
	if v := k.Duration(key); v > 0 {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
