// Package storage provides the data persistence layer for ledgervox.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ledgervox/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidMessage = errors.New("invalid chat message")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates an expense before persistence.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	return nil
}

// validateChatMessage validates a chat message before persistence.
func validateChatMessage(message *model.ChatMessage) error {
	if message == nil {
		return fmt.Errorf("%w: message", ErrNilParameter)
	}
	if message.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMessage)
	}
	if message.Role != model.RoleUser && message.Role != model.RoleAI {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, message.Role)
	}
	return nil
}
