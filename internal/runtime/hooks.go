package runtime

import (
	"context"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
)

func (e *Engine) base(t domain.EventType, res *domain.Result) domain.EventBase {
	return domain.EventBase{
		Timestamp:  time.Now(),
		Type:       t,
		DispatchID: res.DispatchID,
		Sender:     res.Sender,
	}
}

func (e *Engine) emitResolve(ctx context.Context, res *domain.Result) {
	if e.hooks.OnResolve == nil {
		return
	}
	e.hooks.OnResolve(ctx, &domain.ResolveEvent{
		EventBase:  e.base(domain.EventResolve, res),
		Address:    res.Address,
		Source:     res.Source,
		Confidence: res.Confidence,
	})
}

func (e *Engine) emitAction(ctx context.Context, t domain.EventType, res *domain.Result, bound bool, d time.Duration, isError bool) {
	hook := e.hooks.OnActionCall
	if t == domain.EventActionReturn {
		hook = e.hooks.OnActionReturn
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.ActionEvent{
		EventBase: e.base(t, res),
		Address:   res.Address,
		Action:    res.Action,
		Bound:     bound,
		Duration:  d,
		IsError:   isError,
	})
}
