package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/switchboard/pkg/domain"
)

// LoggingHooks writes an audit line per lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			logger.InfoContext(ctx, "intent_resolved",
				"dispatch_id", e.DispatchID,
				"sender", e.Sender,
				"address", e.Address,
				"source", e.Source,
				"confidence", e.Confidence,
			)
		},
		OnActionReturn: func(ctx context.Context, e *domain.ActionEvent) {
			logger.InfoContext(ctx, "action_return",
				"dispatch_id", e.DispatchID,
				"action", e.Action,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnDrop: func(ctx context.Context, e *domain.DropEvent) {
			logger.WarnContext(ctx, "message_dropped",
				"dispatch_id", e.DispatchID,
				"sender", e.Sender,
				"err", e.Err,
			)
		},
	}
}

// Chain merges hook sets; every non-nil callback runs in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, s := range sets {
		s := s
		if s.OnResolve != nil {
			prev := out.OnResolve
			out.OnResolve = func(ctx context.Context, e *domain.ResolveEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				s.OnResolve(ctx, e)
			}
		}
		if s.OnActionCall != nil {
			prev := out.OnActionCall
			out.OnActionCall = func(ctx context.Context, e *domain.ActionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				s.OnActionCall(ctx, e)
			}
		}
		if s.OnActionReturn != nil {
			prev := out.OnActionReturn
			out.OnActionReturn = func(ctx context.Context, e *domain.ActionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				s.OnActionReturn(ctx, e)
			}
		}
		if s.OnDrop != nil {
			prev := out.OnDrop
			out.OnDrop = func(ctx context.Context, e *domain.DropEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				s.OnDrop(ctx, e)
			}
		}
	}
	return out
}
