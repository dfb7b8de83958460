// Package config provides configuration loading and validation for the server, the worker
// and the CLI. Values come from an optional config file and from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLM provider names accepted by llm.provider.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderVertex = "vertex"
)

// Config is the full application configuration.
type Config struct {
	Port        int    `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`
	AMQPURL     string `mapstructure:"amqp_url"`

	LLM       LLMConfig       `mapstructure:"llm"`
	Skills    SkillsConfig    `mapstructure:"skills"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// LLMConfig selects and configures the hosted model provider.
type LLMConfig struct {
	Provider       string `mapstructure:"provider"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	GroqAPIKey     string `mapstructure:"groq_api_key"`
	GroqModel      string `mapstructure:"groq_model"`
	VertexProject  string `mapstructure:"vertex_project"`
	VertexLocation string `mapstructure:"vertex_location"`
}

// SkillsConfig controls the extraction pipeline.
type SkillsConfig struct {
	DictionaryPath string `mapstructure:"dictionary_path"`
	AIInputLimit   int    `mapstructure:"ai_input_limit"`
	FallbackPolicy string `mapstructure:"fallback_policy"` // on-empty | on-error
	ManualMerge    string `mapstructure:"manual_merge"`    // verbatim | case-insensitive
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// RateLimitConfig controls the per-client request limiter.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"port":                       "PORT",
	"database_url":               "DATABASE_URL",
	"amqp_url":                   "RABBITMQ_URL",
	"llm.provider":               "LLM_PROVIDER",
	"llm.gemini_api_key":         "GEMINI_API_KEY",
	"llm.groq_api_key":           "GROQ_API_KEY",
	"llm.groq_model":             "GROQ_MODEL",
	"llm.vertex_project":         "GOOGLE_CLOUD_PROJECT",
	"llm.vertex_location":        "GOOGLE_CLOUD_LOCATION",
	"skills.dictionary_path":     "SKILLS_DICTIONARY_PATH",
	"skills.ai_input_limit":      "SKILLS_AI_INPUT_LIMIT",
	"skills.fallback_policy":     "SKILLS_FALLBACK_POLICY",
	"skills.manual_merge":        "SKILLS_MANUAL_MERGE",
	"auth.jwt_secret":            "JWT_SECRET",
	"auth.jwt_expiration_hours":  "JWT_EXPIRATION_HOURS",
	"auth.bcrypt_cost":           "BCRYPT_COST",
	"auth.password_pepper":       "PASSWORD_PEPPER",
	"log.json":                   "LOG_JSON",
	"log.debug":                  "LOG_DEBUG",
	"ratelimit.enabled":          "RATE_LIMIT_ENABLED",
	"ratelimit.default_limit":    "RATE_LIMIT_DEFAULT_LIMIT",
	"ratelimit.default_window":   "RATE_LIMIT_DEFAULT_WINDOW",
	"ratelimit.cleanup_interval": "RATE_LIMIT_CLEANUP_INTERVAL",
	"ratelimit.whitelist":        "RATE_LIMIT_WHITELIST",
	"ratelimit.blacklist":        "RATE_LIMIT_BLACKLIST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.groq_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.vertex_location", "us-central1")
	v.SetDefault("skills.ai_input_limit", 3000)
	v.SetDefault("skills.fallback_policy", "on-empty")
	v.SetDefault("skills.manual_merge", "verbatim")
	v.SetDefault("auth.jwt_expiration_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.default_limit", 1000)
	v.SetDefault("ratelimit.default_window", time.Minute)
	v.SetDefault("ratelimit.cleanup_interval", 5*time.Minute)
}

// Load reads configuration from the environment and, when path is non-empty, from the
// config file at path. Environment variables win over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return &cfg, nil
}

// Validate checks enumerations and numeric ranges. It does not require any particular
// field to be set; see ValidateForServe.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	switch c.LLM.Provider {
	case ProviderGemini, ProviderGroq, ProviderVertex:
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}

	if c.Skills.AIInputLimit <= 0 {
		return fmt.Errorf("config error: 'skills.ai_input_limit' must be positive")
	}
	switch c.Skills.FallbackPolicy {
	case "on-empty", "on-error":
	default:
		return fmt.Errorf("config error: unknown skills.fallback_policy %q", c.Skills.FallbackPolicy)
	}
	switch c.Skills.ManualMerge {
	case "verbatim", "case-insensitive":
	default:
		return fmt.Errorf("config error: unknown skills.manual_merge %q", c.Skills.ManualMerge)
	}

	if err := c.Auth.normalize(); err != nil {
		return err
	}

	if c.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("config error: 'ratelimit.default_limit' must be non-negative")
	}
	return nil
}

// ValidateForServe additionally requires what the HTTP server cannot run without.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	return nil
}

// AIConfigured reports whether the selected provider has the credentials it needs.
func (c *Config) AIConfigured() bool {
	switch c.LLM.Provider {
	case ProviderGroq:
		return c.LLM.GroqAPIKey != ""
	case ProviderVertex:
		return c.LLM.VertexProject != ""
	default:
		return c.LLM.GeminiAPIKey != ""
	}
}
