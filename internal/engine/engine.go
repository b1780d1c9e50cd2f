// Package engine implements the command pipeline that turns a classified
// utterance into ledger operations and a spoken reply.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/ledgervox/internal/common"
	"github.com/Veraticus/ledgervox/internal/model"
	"github.com/Veraticus/ledgervox/internal/service"
)

// Fixed replies for intents that need no extraction.
const (
	helpMessage = "I can log expenses, answer questions about your spending, and delete expenses. " +
		"Try: 'I spent $50 on coffee', 'How much did I spend on food?', or 'Delete my last expense'."
	unknownMessage = "I'm not sure what you meant. Try telling me about an expense, like 'I spent $20 on lunch', " +
		"or ask 'How much did I spend this week?'"
	storageApology = "Sorry, I had trouble saving that. Mind trying again?"
)

// Reply is the outcome of processing one utterance.
type Reply struct {
	Expense *model.Expense `json:"expense,omitempty"`
	Message string         `json:"message"`
	Intent  model.Intent   `json:"intent"`
	Success bool           `json:"success"`
}

// Engine orchestrates classification, extraction, and persistence for one
// utterance at a time.
type Engine struct {
	storage    service.Storage
	classifier IntentClassifier
	extractor  ExpenseExtractor
	resolver   DeletionResolver
	answerer   QueryAnswerer
	retryOpts  service.RetryOptions
}

// Config holds configuration options for the engine.
type Config struct {
	RetryOpts service.RetryOptions
}

// DefaultConfig returns the default configuration. The retry budget covers
// transient storage failures only; AI failures are absorbed by the nlu
// fallbacks and never retried here.
func DefaultConfig() Config {
	return Config{
		RetryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// New creates an engine with the given dependencies.
func New(storage service.Storage, classifier IntentClassifier, extractor ExpenseExtractor, resolver DeletionResolver, answerer QueryAnswerer) *Engine {
	return NewWithConfig(storage, classifier, extractor, resolver, answerer, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, classifier IntentClassifier, extractor ExpenseExtractor, resolver DeletionResolver, answerer QueryAnswerer, cfg Config) *Engine {
	return &Engine{
		storage:    storage,
		classifier: classifier,
		extractor:  extractor,
		resolver:   resolver,
		answerer:   answerer,
		retryOpts:  cfg.RetryOpts,
	}
}

// Process handles a single utterance end to end: classify, act, persist,
// and record both sides of the exchange in chat history. Storage failures
// surface as a user-visible apology; the conversation continues.
func (e *Engine) Process(ctx context.Context, userID, input string) Reply {
	return e.ProcessAs(ctx, userID, input, e.classifier.Classify(ctx, input))
}

// ProcessAs handles input under a fixed intent, skipping classification. It
// backs surfaces where the caller already knows what the utterance is, like
// the natural-language add endpoint.
func (e *Engine) ProcessAs(ctx context.Context, userID, input string, intent model.Intent) Reply {
	slog.Debug("processing utterance",
		"user_id", userID,
		"intent", intent)

	var reply Reply
	switch intent {
	case model.IntentAddExpense:
		reply = e.handleAdd(ctx, userID, input)
	case model.IntentDeleteExpense:
		reply = e.handleDelete(ctx, userID, input)
	case model.IntentQuery:
		reply = e.handleQuery(ctx, userID, input)
	case model.IntentHelp:
		reply = Reply{Message: helpMessage, Success: true}
	default:
		reply = Reply{Message: unknownMessage}
	}
	reply.Intent = intent

	e.recordExchange(ctx, userID, input, reply)

	return reply
}

func (e *Engine) handleAdd(ctx context.Context, userID, input string) Reply {
	extracted := e.extractor.Extract(ctx, input)
	if !extracted.Success {
		return Reply{Message: extracted.Message}
	}

	now := time.Now()
	expense := &model.Expense{
		ID:          uuid.NewString(),
		Amount:      extracted.Amount,
		Category:    extracted.Category,
		Merchant:    extracted.Merchant,
		Description: input,
		Date:        now.Format("2006-01-02"),
		CreatedAt:   now,
	}

	err := common.WithRetry(ctx, func() error {
		return e.storage.SaveExpense(ctx, userID, expense)
	}, e.retryOpts)
	if err != nil {
		slog.Error("failed to save expense", "user_id", userID, "error", err)
		return Reply{Message: storageApology}
	}

	return Reply{Message: extracted.Message, Expense: expense, Success: true}
}

func (e *Engine) handleDelete(ctx context.Context, userID, input string) Reply {
	expenses, err := e.listExpenses(ctx, userID)
	if err != nil {
		slog.Error("failed to load expenses for deletion", "user_id", userID, "error", err)
		return Reply{Message: storageApology}
	}

	resolution := e.resolver.Resolve(ctx, input, expenses)
	if !resolution.Success {
		return Reply{Message: resolution.Message}
	}

	// Bulk delete is a set of independent single-deletes, each reported on
	// its own.
	deleted := 0
	for _, id := range resolution.TargetIDs() {
		var ok bool
		err := common.WithRetry(ctx, func() error {
			var deleteErr error
			ok, deleteErr = e.storage.DeleteExpense(ctx, userID, id)
			return deleteErr
		}, e.retryOpts)
		switch {
		case err != nil:
			slog.Error("failed to delete expense", "user_id", userID, "expense_id", id, "error", err)
		case !ok:
			slog.Warn("expense already gone", "user_id", userID, "expense_id", id)
		default:
			deleted++
		}
	}

	if deleted == 0 {
		return Reply{Message: storageApology}
	}

	return Reply{Message: resolution.Message, Success: true}
}

func (e *Engine) handleQuery(ctx context.Context, userID, input string) Reply {
	expenses, err := e.listExpenses(ctx, userID)
	if err != nil {
		slog.Error("failed to load expenses for query", "user_id", userID, "error", err)
		return Reply{Message: storageApology}
	}

	return Reply{Message: e.answerer.Answer(ctx, input, expenses), Success: true}
}

func (e *Engine) listExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	var expenses []model.Expense
	err := common.WithRetry(ctx, func() error {
		var listErr error
		expenses, listErr = e.storage.GetExpenses(ctx, userID)
		return listErr
	}, e.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	return expenses, nil
}

// recordExchange appends the user utterance and the assistant reply to chat
// history. History is best-effort: failures are logged, never surfaced.
func (e *Engine) recordExchange(ctx context.Context, userID, input string, reply Reply) {
	now := time.Now()

	userMsg := &model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   input,
		Timestamp: now,
	}
	if err := e.storage.AppendChatMessage(ctx, userID, userMsg); err != nil {
		slog.Warn("failed to record user message", "user_id", userID, "error", err)
	}

	aiMsg := &model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleAI,
		Content:   reply.Message,
		Timestamp: now.Add(time.Millisecond),
	}
	if reply.Expense != nil {
		ref := reply.Expense.Ref()
		aiMsg.Expense = &ref
	}
	if err := e.storage.AppendChatMessage(ctx, userID, aiMsg); err != nil {
		slog.Warn("failed to record assistant message", "user_id", userID, "error", err)
	}
}
