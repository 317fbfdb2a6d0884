package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResolve      EventType = "resolve"
	EventActionCall   EventType = "action_call"
	EventActionReturn EventType = "action_return"
	EventDrop         EventType = "drop"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	DispatchID string    `json:"dispatch_id"`
	Sender     string    `json:"sender"`
}

// ResolveEvent is emitted once the message has an address.
type ResolveEvent struct {
	EventBase
	Address    string  `json:"address"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// ActionEvent represents an action execution.
type ActionEvent struct {
	EventBase
	Address  string        `json:"address"`
	Action   string        `json:"action"`
	Bound    bool          `json:"bound"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// DropEvent is emitted when a runtime error drops a message.
type DropEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for router observability.
type LifecycleHooks struct {
	OnResolve      func(context.Context, *ResolveEvent)
	OnActionCall   func(context.Context, *ActionEvent)
	OnActionReturn func(context.Context, *ActionEvent)
	OnDrop         func(context.Context, *DropEvent)
}
