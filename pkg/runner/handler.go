package runner

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads the next inbound message. io.EOF ends the session.
	Input(ctx context.Context) (domain.Message, error)

	// Output presents the outcome of a dispatch.
	Output(ctx context.Context, res *domain.Result) error

	// SystemOutput presents a meta-message (rejected input, status updates).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms reply text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Dispatcher routes a message. *switchboard.Router satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) *domain.Result
}
