package model

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat message roles.
const (
	RoleUser ChatRole = "user"
	RoleAI   ChatRole = "ai"
)

// MaxChatHistory is the number of chat messages retained per user. Older
// messages are dropped first.
const MaxChatHistory = 100

// ChatMessage is one entry in a user's conversation history.
type ChatMessage struct {
	Timestamp time.Time   `json:"timestamp"`
	Expense   *ExpenseRef `json:"expense,omitempty"`
	ID        string      `json:"id"`
	Role      ChatRole    `json:"role"`
	Content   string      `json:"content"`
}
