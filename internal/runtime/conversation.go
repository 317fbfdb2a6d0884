package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/intent"
	"github.com/aretw0/switchboard/pkg/ports"
)

// conversation binds the context store to one sender for the duration of an action.
type conversation struct {
	ctx             context.Context
	sender          string
	store           ports.ContextStore
	intents         *intent.Registry
	classifications domain.Classifications
	sentiment       domain.Sentiment
}

// NewConversation returns the accessors of sender outside of a dispatch.
func (e *Engine) NewConversation(ctx context.Context, sender string) ports.Conversation {
	return &conversation{ctx: ctx, sender: sender, store: e.store, intents: e.intents}
}

func (c *conversation) Sender() string {
	return c.sender
}

func (c *conversation) Context() (string, error) {
	return c.store.GetContext(c.ctx, c.sender)
}

func (c *conversation) SetContext(address string) error {
	if address != "" {
		if _, ok := c.intents.Lookup(address); !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownAddress, address)
		}
	}
	return c.store.SetContext(c.ctx, c.sender, address)
}

func (c *conversation) Previous() (string, error) {
	snap, err := c.store.Snapshot(c.ctx, c.sender)
	if err != nil {
		return "", err
	}
	return snap.Previous, nil
}

func (c *conversation) Stash(data any) error {
	return c.store.Stash(c.ctx, c.sender, data)
}

func (c *conversation) Stashed() (any, error) {
	return c.store.GetStash(c.ctx, c.sender)
}

func (c *conversation) Classifications() domain.Classifications {
	return c.classifications
}

func (c *conversation) Sentiment() domain.Sentiment {
	return c.sentiment
}
