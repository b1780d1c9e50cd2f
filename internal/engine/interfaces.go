package engine

import (
	"context"

	"github.com/Veraticus/ledgervox/internal/model"
	"github.com/Veraticus/ledgervox/internal/nlu"
)

// IntentClassifier maps free text to one of the closed set of intents.
type IntentClassifier interface {
	Classify(ctx context.Context, input string) model.Intent
}

// ExpenseExtractor maps free text to a structured expense.
type ExpenseExtractor interface {
	Extract(ctx context.Context, input string) nlu.ExtractedExpense
}

// DeletionResolver maps free text plus the user's expenses to deletion
// targets.
type DeletionResolver interface {
	Resolve(ctx context.Context, input string, expenses []model.Expense) model.DeleteResolution
}

// QueryAnswerer maps a question plus the full expense set to an answer.
type QueryAnswerer interface {
	Answer(ctx context.Context, question string, expenses []model.Expense) string
}
