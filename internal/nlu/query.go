package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/model"
	"github.com/Veraticus/ledgervox/internal/service"
)

// onboardingMessage greets users who ask questions before logging anything.
const onboardingMessage = "You haven't logged any expenses yet! Start by saying 'I spent $X on something'."

// queryCategoryKeywords maps question keywords to categories for the
// deterministic answer path, evaluated in order.
var queryCategoryKeywords = []struct {
	keyword  string
	category string
}{
	{"food", model.CategoryFood},
	{"coffee", model.CategoryFood},
	{"transport", model.CategoryTransport},
	{"gas", model.CategoryTransport},
	{"shopping", model.CategoryShopping},
	{"entertainment", model.CategoryEntertainment},
	{"bills", model.CategoryBills},
	{"health", model.CategoryHealthcare},
	{"education", model.CategoryEducation},
	{"travel", model.CategoryTravel},
}

// Answerer maps a question plus the full expense set to a natural-language
// answer.
type Answerer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewAnswerer creates a query answerer. A nil completer disables the AI
// path.
func NewAnswerer(completer llm.Completer, logger *slog.Logger) *Answerer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{completer: completer, logger: logger}
}

// Answer responds to a spending question. An empty expense set produces the
// onboarding message without an AI call; AI errors or empty responses fall
// back to aggregate templates.
func (a *Answerer) Answer(ctx context.Context, question string, expenses []model.Expense) string {
	if len(expenses) == 0 {
		return onboardingMessage
	}

	if a.completer == nil {
		return fallbackAnswer(question, expenses)
	}

	text, err := a.completer.Complete(ctx, llm.Request{
		System:      querySystemMessage,
		User:        queryPrompt(question, expenses),
		Temperature: queryTemperature,
		MaxTokens:   queryMaxTokens,
	})
	if err != nil {
		a.logger.Debug("query answering falling back", "error", err)
		return fallbackAnswer(question, expenses)
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return trimmed
	}

	return fallbackAnswer(question, expenses)
}

// fallbackAnswer is the deterministic answer path built on spending
// aggregates.
func fallbackAnswer(question string, expenses []model.Expense) string {
	summary := service.Summarize(expenses)
	lower := lowered(question)

	if strings.Contains(lower, "total") {
		return fmt.Sprintf("Your total spending is $%.2f across %d expenses.", summary.Total, summary.Count)
	}

	for _, entry := range queryCategoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return fmt.Sprintf("You've spent $%.2f on %s.", summary.ByCategory[entry.category], entry.category)
		}
	}

	return fmt.Sprintf("You have %d expenses totaling $%.2f.", summary.Count, summary.Total)
}
