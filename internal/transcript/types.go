// Package transcript keeps a best-effort record of chat turns per conversation.
package transcript

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TurnRecord stores a single user or assistant message of a conversation.
type TurnRecord struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	TurnID         string    `json:"turn_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	SceneTag       string    `json:"scene_tag,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists and retrieves conversation transcripts.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	// Recent returns up to limit records in chronological order.
	Recent(ctx context.Context, conversationID string, limit int) ([]TurnRecord, error)
	Close() error
}

const DefaultRecentLimit = 50
