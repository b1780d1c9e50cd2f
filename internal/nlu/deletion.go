package nlu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/model"
)

// recentWindow is how many expenses the AI path presents for selection.
const recentWindow = 10

var (
	bulkDeleteRe = regexp.MustCompile(`(?:all|every)`)
	lastDeleteRe = regexp.MustCompile(`(?:last|recent|latest)`)
)

// Resolver maps a deletion request plus the user's expenses to one or many
// target expense ids.
type Resolver struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewResolver creates a deletion resolver. A nil completer disables the AI
// path.
func NewResolver(completer llm.Completer, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{completer: completer, logger: logger}
}

// Resolve identifies which expense(s) the user wants deleted. The expenses
// slice is ordered oldest first, matching storage order. With no expenses
// the call short-circuits without touching the AI backend.
func (r *Resolver) Resolve(ctx context.Context, input string, expenses []model.Expense) model.DeleteResolution {
	if len(expenses) == 0 {
		return model.DeleteResolution{
			Message: "You don't have any expenses to delete!",
		}
	}

	if r.completer == nil {
		return fallbackResolve(input, expenses)
	}

	recent := expenses
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	text, err := r.completer.Complete(ctx, llm.Request{
		System:      deleteSystemMessage,
		User:        deletePrompt(input, recent),
		Temperature: deleteTemperature,
		MaxTokens:   deleteMaxTokens,
	})
	if err != nil {
		r.logger.Debug("delete resolution falling back", "error", err)
		return fallbackResolve(input, expenses)
	}

	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return fallbackResolve(input, expenses)
	}

	var parsed struct {
		ExpenseIndex *int    `json:"expenseIndex"`
		Message      string  `json:"message"`
		Confidence   float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fallbackResolve(input, expenses)
	}

	if parsed.ExpenseIndex != nil {
		idx := *parsed.ExpenseIndex - 1
		if idx >= 0 && idx < len(recent) {
			target := recent[idx]
			message := parsed.Message
			if message == "" {
				message = fmt.Sprintf("Deleted $%s %s expense.", formatAmount(target.Amount), target.Merchant)
			}
			return model.DeleteResolution{
				ExpenseID: target.ID,
				Message:   message,
				Success:   true,
			}
		}
	}

	message := parsed.Message
	if message == "" {
		message = "Could you be more specific? Which expense?"
	}
	return model.DeleteResolution{Message: message}
}

// fallbackResolve is the deterministic resolution path. Precedence:
// bulk-by-amount, then "last", then merchant substring (newest first), then
// amount (newest first), then a clarification request.
func fallbackResolve(input string, expenses []model.Expense) model.DeleteResolution {
	lower := lowered(input)

	isBulk := bulkDeleteRe.MatchString(lower)
	amount, hasAmount := parseAmount(input)

	if isBulk && hasAmount {
		var ids []string
		for _, e := range expenses {
			if e.Amount == amount {
				ids = append(ids, e.ID)
			}
		}
		if len(ids) > 0 {
			return model.DeleteResolution{
				ExpenseIDs: ids,
				IsBulk:     true,
				Message:    fmt.Sprintf("Deleted all %d expense(s) of $%.2f.", len(ids), amount),
				Success:    true,
			}
		}
		return model.DeleteResolution{
			Message: "I couldn't find that expense. Can you be more specific?",
		}
	}

	if lastDeleteRe.MatchString(lower) && !isBulk {
		target := expenses[len(expenses)-1]
		return model.DeleteResolution{
			ExpenseID: target.ID,
			Message: fmt.Sprintf("Deleted your last expense: $%s for %s.",
				formatAmount(target.Amount), target.Merchant),
			Success: true,
		}
	}

	for i := len(expenses) - 1; i >= 0; i-- {
		merchant := strings.ToLower(expenses[i].Merchant)
		if merchant != "" && strings.Contains(lower, merchant) {
			return model.DeleteResolution{
				ExpenseID: expenses[i].ID,
				Message: fmt.Sprintf("Deleted $%s %s expense.",
					formatAmount(expenses[i].Amount), expenses[i].Merchant),
				Success: true,
			}
		}
	}

	if hasAmount {
		for i := len(expenses) - 1; i >= 0; i-- {
			if expenses[i].Amount == amount {
				return model.DeleteResolution{
					ExpenseID: expenses[i].ID,
					Message:   fmt.Sprintf("Deleted $%s expense.", formatAmount(amount)),
					Success:   true,
				}
			}
		}
	}

	return model.DeleteResolution{
		Message: "I couldn't find that expense. Can you be more specific?",
	}
}
