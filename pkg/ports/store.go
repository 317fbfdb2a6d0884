package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// ContextStore holds the conversation state of every sender.
// Conversations are created lazily by the first write (Touch, SetContext or Stash);
// reads never create them. An empty address means "no context".
// Implementations must be safe for concurrent use across senders; read-modify-write
// sequences for the same sender are serialized by the caller.
type ContextStore interface {
	// Touch records an interaction, creating the sender's conversation if needed.
	Touch(ctx context.Context, sender string) error

	// GetContext returns the sender's current address ("" when at the root).
	GetContext(ctx context.Context, sender string) (string, error)

	// SetContext sets the current address and records the old one as previous.
	SetContext(ctx context.Context, sender, address string) error

	// Stash stores opaque data for the sender.
	Stash(ctx context.Context, sender string, data any) error

	// GetStash returns the data stored with Stash, or nil.
	GetStash(ctx context.Context, sender string) (any, error)

	// Snapshot returns a copy of the sender's conversation.
	Snapshot(ctx context.Context, sender string) (domain.Conversation, error)

	// Delete forgets the sender.
	Delete(ctx context.Context, sender string) error

	// List returns the senders currently tracked.
	List(ctx context.Context) ([]string, error)
}

// Conversation exposes the context accessors of a single sender to actions.
type Conversation interface {
	Sender() string
	Context() (string, error)
	// SetContext moves the sender to address ("" clears it).
	// Returns domain.ErrUnknownAddress for addresses that are not registered.
	SetContext(address string) error
	Previous() (string, error)
	Stash(data any) error
	Stashed() (any, error)
	// Classifications returns the ranking used to resolve the current message.
	Classifications() domain.Classifications
	// Sentiment returns the tone of the current message (zero outside a dispatch).
	Sentiment() domain.Sentiment
}
