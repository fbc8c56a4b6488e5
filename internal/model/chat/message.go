package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender roles. The widget renders one bubble per message, styled by role.
const (
	RoleUser   = "user"
	RoleAI     = "ai"
	RoleSystem = "system"
)

// TimestampLayout is the wall-clock format shown next to each bubble.
const TimestampLayout = "2006-01-02 15:04"

// Message is one turn of the conversation. Append-only, never mutated.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// New stamps a message with a fresh ID and the local wall-clock time.
func New(role, text string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: at.Format(TimestampLayout),
	}
}
