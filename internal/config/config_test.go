package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 3000, cfg.Skills.AIInputLimit)
	assert.Equal(t, "on-empty", cfg.Skills.FallbackPolicy)
	assert.Equal(t, "verbatim", cfg.Skills.ManualMerge)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 24, cfg.Auth.JWTExpirationHours)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.DefaultWindow)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "Groq")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("SKILLS_FALLBACK_POLICY", "on-error")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, "gsk-test", cfg.LLM.GroqAPIKey)
	assert.Equal(t, "on-error", cfg.Skills.FallbackPolicy)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.DefaultWindow)
	assert.True(t, cfg.AIConfigured())
}

func TestLoad_File(t *testing.T) {
	content := `
port: 7070
database_url: postgres://localhost/proofdin
skills:
  manual_merge: case-insensitive
  ai_input_limit: 1000
`
	path := filepath.Join(t.TempDir(), "proofdin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://localhost/proofdin", cfg.DatabaseURL)
	assert.Equal(t, "case-insensitive", cfg.Skills.ManualMerge)
	assert.Equal(t, 1000, cfg.Skills.AIInputLimit)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/proofdin.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = 0 }, "port"},
		{"bad provider", func(c *Config) { c.LLM.Provider = "openai" }, "unknown llm provider"},
		{"bad fallback", func(c *Config) { c.Skills.FallbackPolicy = "always" }, "fallback_policy"},
		{"bad merge", func(c *Config) { c.Skills.ManualMerge = "lower" }, "manual_merge"},
		{"bad input limit", func(c *Config) { c.Skills.AIInputLimit = 0 }, "ai_input_limit"},
		{"bcrypt too low", func(c *Config) { c.Auth.BcryptCost = 4 }, "bcrypt cost"},
		{"jwt hours", func(c *Config) { c.Auth.JWTExpirationHours = 0 }, "JWT_EXPIRATION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateForServe(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.ValidateForServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.DatabaseURL = "postgres://localhost/proofdin"
	err = cfg.ValidateForServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.ValidateForServe())
}

func TestAIConfigured(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Provider: ProviderGemini}}
	assert.False(t, cfg.AIConfigured())

	cfg.LLM.GeminiAPIKey = "key"
	assert.True(t, cfg.AIConfigured())

	cfg.LLM.Provider = ProviderVertex
	assert.False(t, cfg.AIConfigured())
	cfg.LLM.VertexProject = "proj"
	assert.True(t, cfg.AIConfigured())
}

func TestAuthConfig_PasswordRoundTrip(t *testing.T) {
	auth := AuthConfig{BcryptCost: 10, JWTExpirationHours: 1, PasswordPepper: "pepper"}

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, auth.CheckPassword(hash, "correct horse"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))

	noPepper := AuthConfig{BcryptCost: 10}
	assert.False(t, noPepper.CheckPassword(hash, "correct horse"))
}
