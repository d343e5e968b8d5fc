// Package llm provides the remote text-classification capability: a small
// client abstraction over Gemini and helpers for cleaning model output.
package llm

import "time"

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierLite is for short classification prompts
	TierLite ModelTier = "lite"
	// TierStandard is for prompts that need more reasoning
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultRequestTimeout bounds a single generate call.
const DefaultRequestTimeout = 30 * time.Second

// Config holds the model configuration for the client
type Config struct {
	Provider       Provider
	Models         map[ModelTier]string
	Temperature    float32
	RequestTimeout time.Duration
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:    0.1,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// GetModel returns the model name for a tier, falling back to the lite model.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierLite]
}

// WithModel returns a copy of c with model assigned to tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return &next
}
