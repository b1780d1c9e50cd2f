// Package nlu maps free-form utterances to structured ledger operations.
// Every component has an AI-backed path and a deterministic fallback; the
// fallbacks are total and never fail, so callers always get a usable result.
package nlu

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"

	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/model"
)

// Classifier maps free text to one of the closed set of intents.
type Classifier struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewClassifier creates an intent classifier. A nil completer disables the
// AI path entirely.
func NewClassifier(completer llm.Completer, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{completer: completer, logger: logger}
}

// Deterministic intent patterns. Precedence is fixed: deletion verbs win
// over everything, so "delete the $50 coffee" is a deletion even though it
// also matches the add-expense shape.
var (
	deleteIntentRe   = regexp.MustCompile(`(?:delete|remove|cancel|undo|erase|get rid of)`)
	spendAmountRe    = regexp.MustCompile(`(?:spent|bought|paid|purchased|cost|was|got).*\$?\d+`)
	amountSpendRe    = regexp.MustCompile(`\$?\d+.*(?:spent|bought|paid|for|on)`)
	queryIntentRe    = regexp.MustCompile(`(?:how much|what.*spent|show.*expense|total|sum)`)
	helpIntentRe     = regexp.MustCompile(`(?:help|what can|how do|commands)`)
)

// Classify determines the intent of an utterance. The AI path is
// best-effort; any failure falls through to the deterministic patterns.
func (c *Classifier) Classify(ctx context.Context, input string) model.Intent {
	if c.completer == nil {
		return quickIntent(input)
	}

	text, err := c.completer.Complete(ctx, llm.Request{
		System:      intentSystemMessage,
		User:        intentPrompt(input),
		Temperature: intentTemperature,
		MaxTokens:   intentMaxTokens,
	})
	if err != nil {
		c.logger.Debug("intent classification falling back", "error", err)
		return quickIntent(input)
	}

	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return quickIntent(input)
	}

	var parsed struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || !model.ValidIntent(parsed.Intent) {
		return quickIntent(input)
	}

	return model.Intent(parsed.Intent)
}

// quickIntent is the deterministic classification path. It is pure and
// total; the pattern order must not change.
func quickIntent(input string) model.Intent {
	lower := lowered(input)

	if deleteIntentRe.MatchString(lower) {
		return model.IntentDeleteExpense
	}
	if spendAmountRe.MatchString(lower) || amountSpendRe.MatchString(lower) {
		return model.IntentAddExpense
	}
	if queryIntentRe.MatchString(lower) {
		return model.IntentQuery
	}
	if helpIntentRe.MatchString(lower) {
		return model.IntentHelp
	}

	return model.IntentUnknown
}
