package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/proofdin/proofdin/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, Limit when 0
}

// FromConfig builds a limiter Config from the application settings.
func FromConfig(cfg config.RateLimitConfig) *Config {
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    cfg.DefaultLimit,
		DefaultWindow:   cfg.DefaultWindow,
		CleanupInterval: cfg.CleanupInterval,
		Whitelist:       ipSet(cfg.Whitelist),
		Blacklist:       ipSet(cfg.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed endpoints
		{Path: "/jobs/parse-jd", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/candidates/", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/jobs/analyze", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},

		{Path: "/jobs/match/export", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/auth/", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/candidates", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func ipSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, item := range list {
		for _, ip := range strings.Split(item, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				result[ip] = true
			}
		}
	}
	return result
}
