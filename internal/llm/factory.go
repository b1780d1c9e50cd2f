package llm

import (
	"fmt"
	"strings"
)

// NewCompleter creates a completion client for the configured provider. A
// blank or "none" provider returns nil: the capability is absent and every
// consumer runs its deterministic path instead.
func NewCompleter(cfg Config) (Completer, error) {
	var client Completer
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "openai":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if cfg.RateLimit > 0 {
		client = &limitedCompleter{client: client, limiter: newRateLimiter(cfg.RateLimit)}
	}

	return client, nil
}
