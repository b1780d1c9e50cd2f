package nlu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/model"
)

// mockCompleter returns a canned response and records the last request.
type mockCompleter struct {
	err      error
	response string
	lastReq  llm.Request
	calls    int
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.lastReq = req
	m.calls++
	return m.response, m.err
}

func TestQuickIntent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Intent
	}{
		{"spent with amount", "I spent $50 on coffee", model.IntentAddExpense},
		{"bought with amount", "bought lunch for 12 bucks", model.IntentAddExpense},
		{"amount then preposition", "$20 for parking", model.IntentAddExpense},
		{"delete last", "delete my last expense", model.IntentDeleteExpense},
		{"remove", "remove the coffee one", model.IntentDeleteExpense},
		{"undo", "undo that", model.IntentDeleteExpense},
		{"how much", "how much did I spend on food?", model.IntentQuery},
		{"total", "what's my total this week", model.IntentQuery},
		{"help", "help", model.IntentHelp},
		{"what can you do", "what can you do?", model.IntentHelp},
		{"unknown", "nice weather today", model.IntentUnknown},
		{"empty", "", model.IntentUnknown},

		// Deletion verbs outrank the add-expense shape even when an amount
		// is present.
		{"delete beats add", "delete the $50 coffee expense", model.IntentDeleteExpense},
		// The add shape outranks query keywords.
		{"add beats query", "I spent $10, how much is that total?", model.IntentAddExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quickIntent(tt.input))
		})
	}
}

func TestClassifyAIPath(t *testing.T) {
	t.Run("uses AI intent when valid", func(t *testing.T) {
		completer := &mockCompleter{response: `{"intent": "QUERY", "confidence": 0.9}`}
		c := NewClassifier(completer, nil)

		got := c.Classify(context.Background(), "I spent $50 on coffee")
		assert.Equal(t, model.IntentQuery, got)
		assert.Equal(t, 1, completer.calls)
	})

	t.Run("markdown wrapped response", func(t *testing.T) {
		completer := &mockCompleter{response: "```json\n{\"intent\": \"DELETE_EXPENSE\"}\n```"}
		c := NewClassifier(completer, nil)

		got := c.Classify(context.Background(), "get rid of it")
		assert.Equal(t, model.IntentDeleteExpense, got)
	})

	t.Run("falls back on error", func(t *testing.T) {
		completer := &mockCompleter{err: errors.New("rate limited")}
		c := NewClassifier(completer, nil)

		got := c.Classify(context.Background(), "how much did I spend?")
		assert.Equal(t, model.IntentQuery, got)
	})

	t.Run("falls back on unknown intent name", func(t *testing.T) {
		completer := &mockCompleter{response: `{"intent": "MAKE_COFFEE"}`}
		c := NewClassifier(completer, nil)

		got := c.Classify(context.Background(), "delete my last expense")
		assert.Equal(t, model.IntentDeleteExpense, got)
	})

	t.Run("falls back on non-JSON response", func(t *testing.T) {
		completer := &mockCompleter{response: "this is definitely a query"}
		c := NewClassifier(completer, nil)

		got := c.Classify(context.Background(), "I spent $5 on gum")
		assert.Equal(t, model.IntentAddExpense, got)
	})

	t.Run("nil completer skips AI entirely", func(t *testing.T) {
		c := NewClassifier(nil, nil)
		assert.Equal(t, model.IntentHelp, c.Classify(context.Background(), "help me out"))
	})
}
