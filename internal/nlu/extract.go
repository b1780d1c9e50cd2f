package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/model"
)

// ExtractedExpense is the structured result of expense extraction. Success
// is false only when no usable amount could be found; extraction itself
// never fails.
type ExtractedExpense struct {
	Merchant string
	Category string
	Message  string
	Amount   float64
	Success  bool
}

// Extractor maps free text to a structured expense.
type Extractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewExtractor creates an expense extractor. A nil completer disables the
// AI path.
func NewExtractor(completer llm.Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract parses an utterance into an expense. The AI path requires
// non-empty amount, category, and message in the response; anything less
// falls through to the deterministic parse. Raw AI errors never reach the
// caller.
func (e *Extractor) Extract(ctx context.Context, input string) ExtractedExpense {
	if e.completer == nil {
		return fallbackExtract(input)
	}

	text, err := e.completer.Complete(ctx, llm.Request{
		System:      extractSystemMessage,
		User:        extractPrompt(input),
		Temperature: extractTemperature,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		e.logger.Debug("expense extraction falling back", "error", err)
		return fallbackExtract(input)
	}

	raw, ok := llm.ExtractJSON(text)
	if !ok {
		e.logger.Debug("no JSON in extraction response")
		return fallbackExtract(input)
	}

	var parsed struct {
		Merchant string  `json:"merchant"`
		Category string  `json:"category"`
		Message  string  `json:"message"`
		Amount   float64 `json:"amount"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		e.logger.Debug("malformed extraction response", "error", err)
		return fallbackExtract(input)
	}

	if parsed.Amount <= 0 || parsed.Category == "" || parsed.Message == "" {
		return fallbackExtract(input)
	}

	merchant := parsed.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}

	return ExtractedExpense{
		Amount:   parsed.Amount,
		Merchant: merchant,
		Category: model.NormalizeCategory(parsed.Category),
		Message:  parsed.Message,
		Success:  true,
	}
}

// fallbackExtract is the deterministic extraction path: first amount token,
// keyword-table category, heuristic merchant, template message.
func fallbackExtract(input string) ExtractedExpense {
	amount, ok := parseAmount(input)
	if !ok || amount == 0 {
		return ExtractedExpense{
			Merchant: "Unknown",
			Category: model.CategoryOther,
			Message:  "I couldn't catch the amount. How much did you spend?",
		}
	}

	category := categoryFor(lowered(input))

	return ExtractedExpense{
		Amount:   amount,
		Merchant: guessMerchant(input),
		Category: category,
		Message:  fmt.Sprintf("Added $%s to %s.", formatAmount(amount), category),
		Success:  true,
	}
}
