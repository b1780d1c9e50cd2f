// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/ledgervox/internal/model"
)

// Storage defines the contract for the per-user persistence layer. All
// methods are scoped by user id; there is no cross-user access.
type Storage interface {
	// Expense operations
	SaveExpense(ctx context.Context, userID string, expense *model.Expense) error
	GetExpenses(ctx context.Context, userID string) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) (bool, error)
	ClearExpenses(ctx context.Context, userID string) error

	// Chat history operations. History is capped at model.MaxChatHistory
	// messages per user; appending beyond the cap drops the oldest first.
	AppendChatMessage(ctx context.Context, userID string, message *model.ChatMessage) error
	GetChatMessages(ctx context.Context, userID string) ([]model.ChatMessage, error)
	ClearChatMessages(ctx context.Context, userID string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// SpendingSummary contains the aggregates supplied to query answering.
type SpendingSummary struct {
	ByCategory map[string]float64
	Total      float64
	Count      int
}

// Summarize computes spending aggregates over a set of expenses.
func Summarize(expenses []model.Expense) SpendingSummary {
	summary := SpendingSummary{
		ByCategory: make(map[string]float64),
		Count:      len(expenses),
	}
	for _, e := range expenses {
		summary.Total += e.Amount
		summary.ByCategory[e.Category] += e.Amount
	}
	return summary
}
