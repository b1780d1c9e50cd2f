package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/ledgervox/internal/model"
)

// AppendChatMessage stores a chat message and trims the user's history to
// the retention cap, oldest messages dropped first.
func (s *SQLiteStorage) AppendChatMessage(ctx context.Context, userID string, message *model.ChatMessage) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateChatMessage(message); err != nil {
		return err
	}

	var expenseJSON sql.NullString
	if message.Expense != nil {
		data, err := json.Marshal(message.Expense)
		if err != nil {
			return fmt.Errorf("failed to marshal expense ref: %w", err)
		}
		expenseJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, user_id, role, content, expense_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID, userID, string(message.Role), message.Content, expenseJSON, message.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM chat_messages
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM chat_messages
			WHERE user_id = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)`, userID, userID, model.MaxChatHistory)
	if err != nil {
		return fmt.Errorf("failed to trim chat history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat append: %w", err)
	}

	return nil
}

// GetChatMessages returns a user's retained chat history, oldest first.
func (s *SQLiteStorage) GetChatMessages(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, expense_json, created_at
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var role string
		var expenseJSON sql.NullString
		if err := rows.Scan(&m.ID, &role, &m.Content, &expenseJSON, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Role = model.ChatRole(role)
		if expenseJSON.Valid {
			var ref model.ExpenseRef
			if err := json.Unmarshal([]byte(expenseJSON.String), &ref); err != nil {
				return nil, fmt.Errorf("failed to unmarshal expense ref: %w", err)
			}
			m.Expense = &ref
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return messages, nil
}

// ClearChatMessages removes a user's entire chat history.
func (s *SQLiteStorage) ClearChatMessages(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}

	return nil
}
