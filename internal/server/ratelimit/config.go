package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" matches by prefix
	Method string        // HTTP method
	Limit  int           // Maximum requests per window; 0 is unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when no environment overrides are set.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Uploads call the extraction
// model and every compile backend, so they get the strictest limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/upload", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/api/render", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/health", Method: "GET"},
		{Path: "/metrics", Method: "GET"},
	}
}

// LoadConfig builds a Config from DefaultConfig and RATE_LIMIT_* variables read through getenv.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	if v, ok := parseBool(getenv("RATE_LIMIT_ENABLED")); ok {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(getenv("RATE_LIMIT_DEFAULT_LIMIT")); err == nil {
		cfg.DefaultLimit = v
	}
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_DEFAULT_WINDOW")); err == nil {
		cfg.DefaultWindow = v
	}
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_CLEANUP_INTERVAL")); err == nil {
		cfg.CleanupInterval = v
	}
	cfg.Whitelist = parseIPList(getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

func parseBool(s string) (bool, bool) {
	if s == "" {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	return v, err == nil
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
