package state

import (
	"context"
	"encoding/json"
	"time"
)

// TelegramSession links a telegram user to the triage session they are answering
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	ChatID    int64           `json:"chat_id"`
	SessionID string          `json:"session_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"` // Telegram-specific UI state
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StateData contains telegram-specific UI state (stored in StateData JSONB)
type StateData struct {
	Version int `json:"version,omitempty"`

	// Message carrying the inline keyboard of the current question
	LastMessageID int `json:"last_message_id,omitempty"`

	// Highest emergency priority already announced in this chat
	AnnouncedPriority int `json:"announced_priority,omitempty"`

	// Confirmation for destructive actions: "cancel", "reset"
	PendingConfirmation string `json:"pending_confirmation,omitempty"`
}

const (
	// StateDataCurrentVersion is the current version of StateData
	StateDataCurrentVersion = 1
)

// Storage defines the interface for telegram session persistence
type Storage interface {
	Get(ctx context.Context, userID int64) (*TelegramSession, error)
	Set(ctx context.Context, session *TelegramSession) error
	Delete(ctx context.Context, userID int64) error
	GetBySessionID(ctx context.Context, sessionID string) (*TelegramSession, error)
}
