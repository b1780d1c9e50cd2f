package model

import (
	"fmt"
	"math"
	"time"
)

// Expense represents a single logged expense. Expenses are immutable once
// stored; they are created by add handling and destroyed only by delete.
type Expense struct {
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Merchant    string    `json:"merchant"`
	Description string    `json:"description"`
	Date        string    `json:"date"` // calendar date, YYYY-MM-DD
}

// Validate checks the invariants an expense must satisfy before it is
// persisted.
func (e *Expense) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("expense id is required")
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return fmt.Errorf("amount must be a finite number")
	}
	if e.Amount < 0 {
		return fmt.Errorf("amount must be non-negative")
	}
	if !ValidCategory(e.Category) {
		return fmt.Errorf("unknown category: %s", e.Category)
	}
	return nil
}

// ExpenseRef is the summary of an expense embedded in chat messages.
type ExpenseRef struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
}

// Ref returns the chat-embeddable summary of the expense.
func (e *Expense) Ref() ExpenseRef {
	return ExpenseRef{
		ID:       e.ID,
		Amount:   e.Amount,
		Category: e.Category,
		Merchant: e.Merchant,
	}
}
