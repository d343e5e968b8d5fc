package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recycling-locator/internal/llm"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "earth911_results.json", cfg.OutputPath)
	assert.Equal(t, "https://search.earth911.com/", cfg.SearchURL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15, cfg.RequestsPerMinute)
	assert.Equal(t, "lite", cfg.ModelTier)
	assert.True(t, cfg.Headless)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(Defaults(), envMap(map[string]string{
		EnvAPIKey:            " key-123 ",
		EnvDatabaseURL:       "postgres://localhost:5432/recycle",
		EnvOutputPath:        "out/results.json",
		EnvSearchURL:         "http://localhost:8080/",
		EnvRequestsPerMinute: "30",
	}))
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, "postgres://localhost:5432/recycle", cfg.DatabaseURL)
	assert.Equal(t, "out/results.json", cfg.OutputPath)
	assert.Equal(t, "http://localhost:8080/", cfg.SearchURL)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Equal(t, 3, cfg.MaxRetries, "fields without a variable keep the base value")
}

func TestFromEnv_UnsetKeepsBase(t *testing.T) {
	cfg, err := FromEnv(Defaults(), envMap(map[string]string{EnvOutputPath: "   "}))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestFromEnv_ZeroRPMDisablesLimiting(t *testing.T) {
	cfg, err := FromEnv(Defaults(), envMap(map[string]string{EnvRequestsPerMinute: "0"}))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RequestsPerMinute)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_InvalidRPM(t *testing.T) {
	_, err := FromEnv(Defaults(), envMap(map[string]string{EnvRequestsPerMinute: "fast"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRequestsPerMinute)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "with database", mutate: func(c *Config) { c.DatabaseURL = "postgres://user@localhost/db" }},
		{name: "standard tier", mutate: func(c *Config) { c.ModelTier = "standard" }},
		{name: "zero retries", mutate: func(c *Config) { c.MaxRetries = 0 }, wantErr: "MaxRetries"},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 11 }, wantErr: "MaxRetries"},
		{name: "negative rpm", mutate: func(c *Config) { c.RequestsPerMinute = -1 }, wantErr: "RequestsPerMinute"},
		{name: "empty output", mutate: func(c *Config) { c.OutputPath = "" }, wantErr: "OutputPath"},
		{name: "bad search url", mutate: func(c *Config) { c.SearchURL = "not a url" }, wantErr: "SearchURL"},
		{name: "unknown tier", mutate: func(c *Config) { c.ModelTier = "huge" }, wantErr: "ModelTier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUseLLM(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.UseLLM())

	cfg.APIKey = "key"
	assert.True(t, cfg.UseLLM())

	cfg.DisableLLM = true
	assert.False(t, cfg.UseLLM())
}

func TestLLMConfig(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), cfg.LLMConfig().GetModel(llm.TierLite))

	cfg.ModelTier = "standard"
	cfg.Model = "gemini-custom"
	got := cfg.LLMConfig()
	assert.Equal(t, "gemini-custom", got.GetModel(llm.TierStandard))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), got.GetModel(llm.TierLite))
}
