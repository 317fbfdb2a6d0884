package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who sent a message.
// ID is the only field the router relies on; the rest is informational.
type Sender struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Message is an inbound text message handed over by a transport.
type Message struct {
	ID         string    `json:"id,omitempty"`
	Text       string    `json:"text"`
	Sender     Sender    `json:"sender"`
	Channel    string    `json:"channel,omitempty"` // e.g. "cli", "http", "mcp"
	ReceivedAt time.Time `json:"received_at,omitempty"`
}

// NewMessage creates a message from a sender ID and text.
func NewMessage(senderID, text string) Message {
	return Message{
		ID:         uuid.NewString(),
		Text:       text,
		Sender:     Sender{ID: senderID},
		ReceivedAt: time.Now(),
	}
}
