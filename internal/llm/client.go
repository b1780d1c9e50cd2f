// Package llm provides the structured-completion capability backing the
// natural-language understanding layer. Backends are best-effort: callers
// must tolerate absence and must not assume responses contain valid JSON.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates no language model backend is configured or
// reachable. Callers fall back to deterministic logic.
var ErrUnavailable = errors.New("llm backend unavailable")

// Request is a single structured-completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer sends prompts to a language model and returns the raw text of
// the first completion choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds configuration for completion backends.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	Timeout     time.Duration
}
