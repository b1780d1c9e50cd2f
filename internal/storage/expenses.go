package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/ledgervox/internal/model"
)

// SaveExpense persists a new expense for a user. Expenses are immutable;
// saving an existing id is an error.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, userID string, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, amount, category, merchant, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, userID, expense.Amount, expense.Category,
		expense.Merchant, expense.Description, expense.Date, expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}

	return nil
}

// GetExpenses returns all of a user's expenses ordered oldest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, category, merchant, description, date, created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Category, &e.Merchant, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes a single expense by id, reporting whether a row was
// actually deleted.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, userID, expenseID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return false, err
	}
	if err := validateString(expenseID, "expenseID"); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ? AND id = ?`, userID, expenseID)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

// ClearExpenses removes all of a user's expenses.
func (s *SQLiteStorage) ClearExpenses(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear expenses: %w", err)
	}

	return nil
}
