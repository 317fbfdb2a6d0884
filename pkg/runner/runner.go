package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/switchboard/internal/logging"
)

// Runner handles the chat loop using the provided IOHandler.
type Runner struct {
	router    Dispatcher
	handler   IOHandler
	sanitizer Sanitizer
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures the IOHandler (default: TextHandler on stdin/stdout).
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.handler = handler
	}
}

// WithMaxInputSize overrides the sanitizer byte limit.
func WithMaxInputSize(size int) Option {
	return func(r *Runner) {
		r.sanitizer.MaxSize = size
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner dispatching into router.
func New(router Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		router: router,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run loops until the input ends (nil error) or ctx is canceled (ctx.Err()).
func (r *Runner) Run(ctx context.Context) error {
	for {
		msg, err := r.handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("input closed, stopping runner")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		clean, err := r.sanitizer.Clean(msg.Text)
		if err != nil {
			r.logger.Warn("input rejected", "sender", msg.Sender.ID, "err", err, "size", len(msg.Text))
			if err := r.handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return err
			}
			continue
		}
		if clean == "" {
			continue
		}
		msg.Text = clean

		res := r.router.Dispatch(ctx, msg)
		if err := r.handler.Output(ctx, res); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}
