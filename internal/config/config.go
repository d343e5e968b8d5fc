// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/recycling-locator/internal/acquisition"
	"github.com/jonathan/recycling-locator/internal/classification"
	"github.com/jonathan/recycling-locator/internal/llm"
	"github.com/jonathan/recycling-locator/internal/output"
)

// Environment variables read by FromEnv.
const (
	EnvAPIKey            = "GEMINI_API_KEY"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvOutputPath        = "RECYCLE_OUTPUT"
	EnvSearchURL         = "RECYCLE_SEARCH_URL"
	EnvRequestsPerMinute = "RECYCLE_LLM_RPM"
)

// Config holds everything a search run needs beyond the query itself.
// Values come from Defaults, then the environment, then CLI flags; each
// layer only overrides what it sets, so an explicit zero is kept.
type Config struct {
	APIKey            string `validate:"omitempty"`                    // Gemini API key
	DatabaseURL       string `validate:"omitempty,url"`                // PostgreSQL connection URL
	OutputPath        string `validate:"required"`                     // Result JSON file
	SearchURL         string `validate:"required,url"`                 // Directory search page
	MaxRetries        int    `validate:"gte=1,lte=10"`                 // Acquisition attempts
	RequestsPerMinute int    `validate:"gte=0"`                        // Classifier request budget, 0 disables limiting
	ModelTier         string `validate:"required,oneof=lite standard"` // Gemini tier used for classification
	Model             string `validate:"omitempty"`                    // Overrides the model name of ModelTier
	Headless          bool   // Run the browser without a window
	DisableLLM        bool   // Always use the keyword classifier
	Verbose           bool   // Development logging
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputPath:        output.DefaultPath,
		SearchURL:         acquisition.DefaultSearchURL,
		MaxRetries:        acquisition.DefaultMaxRetries,
		RequestsPerMinute: classification.DefaultRequestsPerMinute,
		ModelTier:         string(llm.TierLite),
		Headless:          true,
	}
}

// FromEnv layers the supported environment variables over base. Unset or
// blank variables leave base unchanged. A nil lookup uses os.LookupEnv.
func FromEnv(base Config, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	cfg := base
	if v, ok := get(EnvAPIKey); ok {
		cfg.APIKey = v
	}
	if v, ok := get(EnvDatabaseURL); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get(EnvOutputPath); ok {
		cfg.OutputPath = v
	}
	if v, ok := get(EnvSearchURL); ok {
		cfg.SearchURL = v
	}
	if v, ok := get(EnvRequestsPerMinute); ok {
		rpm, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config error: %s must be an integer: %w", EnvRequestsPerMinute, err)
		}
		cfg.RequestsPerMinute = rpm
	}
	return cfg, nil
}

// UseLLM reports whether the remote classifier should be constructed.
func (c *Config) UseLLM() bool {
	return !c.DisableLLM && c.APIKey != ""
}

// LLMConfig returns the client configuration with any model override applied.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.Model != "" {
		cfg = cfg.WithModel(llm.ModelTier(c.ModelTier), c.Model)
	}
	return cfg
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var sb strings.Builder
		sb.WriteString("config error:")
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				sb.WriteString(fmt.Sprintf(" %s failed %q;", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.TrimSuffix(sb.String(), ";"))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
