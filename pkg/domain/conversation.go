package domain

import "time"

// Conversation is the per-sender conversation state.
// An empty Current means the sender is at the root of the tree.
type Conversation struct {
	Sender    string    `json:"sender"`
	Current   string    `json:"current,omitempty"`
	Previous  string    `json:"previous,omitempty"`
	Stash     any       `json:"stash,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates a clean conversation rooted at the top of the tree.
func NewConversation(sender string) *Conversation {
	return &Conversation{
		Sender:    sender,
		UpdatedAt: time.Now(),
	}
}

// Active reports whether the sender is inside an intent node.
func (c *Conversation) Active() bool {
	return c.Current != ""
}
