// Package classifier calls an external AI service to categorize transactions
// that the cache and rule tiers could not resolve.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client defines the interface for AI providers. Complete returns the raw
// model output for a prompt; transport and auth failures surface as errors.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BatchSize   int
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
}

// NewClient creates an AI client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
