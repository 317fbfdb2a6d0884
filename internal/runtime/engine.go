package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/intent"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
)

// DefaultThreshold is the minimum confidence a classification needs to be trusted.
const DefaultThreshold = 0.7

// Engine resolves inbound messages to intent nodes and runs their actions.
// It holds no per-sender state of its own; conversations live in the ContextStore.
// Callers must serialize dispatches of the same sender.
type Engine struct {
	intents    *intent.Registry
	classifier ports.TextClassifier
	sentiment  ports.SentimentAnalyzer
	store      ports.ContextStore
	actions    *registry.Registry
	threshold  float64
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		if threshold > 0 && threshold <= 1 {
			e.threshold = threshold
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSentiment scores every message with analyzer.
func WithSentiment(analyzer ports.SentimentAnalyzer) EngineOption {
	return func(e *Engine) {
		e.sentiment = analyzer
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over a frozen intent registry.
func NewEngine(intents *intent.Registry, classifier ports.TextClassifier, store ports.ContextStore, actions *registry.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		intents:    intents,
		classifier: classifier,
		store:      store,
		actions:    actions,
		threshold:  DefaultThreshold,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the active confidence threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Dispatch resolves msg and executes the bound action.
// The returned error is a runtime error that prevented resolution (unknown address,
// alias cycle, untrained classifier, store failure). Action failures do not surface
// here; they are recorded on the Result.
func (e *Engine) Dispatch(ctx context.Context, msg domain.Message) (*domain.Result, error) {
	res := &domain.Result{
		DispatchID: uuid.NewString(),
		Sender:     msg.Sender.ID,
	}
	logger := e.logger.With("dispatch_id", res.DispatchID, "sender", res.Sender)

	if err := e.store.Touch(ctx, msg.Sender.ID); err != nil {
		return res, fmt.Errorf("touch conversation: %w", err)
	}
	if e.sentiment != nil {
		tone := e.sentiment.Analyze(msg.Text)
		res.Sentiment = &tone
	}

	if address, ok := e.intents.Literal(msg.Text); ok {
		res.Address = address
		res.Source = domain.SourceLiteral
		res.Confidence = 1
		return res, e.execute(ctx, logger, msg, res, false)
	}

	if err := e.route(ctx, logger, msg, res); err != nil {
		return res, err
	}
	return res, e.execute(ctx, logger, msg, res, true)
}

// route picks the address for a message that did not hit the literal table.
func (e *Engine) route(ctx context.Context, logger *slog.Logger, msg domain.Message, res *domain.Result) error {
	ranked, err := e.classifier.Classify(msg.Text)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	for {
		current, err := e.store.GetContext(ctx, msg.Sender.ID)
		if err != nil {
			return fmt.Errorf("read context: %w", err)
		}

		candidates := ranked.Filter(InNamespace(current))
		res.Classifications = candidates
		res.Source = domain.SourceClassifier

		var scope domain.IntentNode
		if current != "" {
			var ok bool
			scope, ok = e.intents.Lookup(current)
			if !ok {
				return fmt.Errorf("%w: context %q", domain.ErrUnknownAddress, current)
			}
			if len(candidates) == 0 && len(scope.Children) == 1 {
				candidates = domain.Classifications{{Label: scope.Children[0], Confidence: 1}}
				res.Source = domain.SourceAutoDescend
				if err := e.store.SetContext(ctx, msg.Sender.ID, ""); err != nil {
					return fmt.Errorf("clear context: %w", err)
				}
				logger.Debug("auto-descending into sole child", "context", current, "child", scope.Children[0])
			}
		}

		best, ok := candidates.Best()
		if ok && best.Confidence >= e.threshold {
			res.Address = best.Label
			res.Confidence = best.Confidence
			return nil
		}

		if current != "" && res.Source != domain.SourceAutoDescend {
			policy := policy(scope)
			if policy != domain.PolicyRetry {
				if err := e.store.SetContext(ctx, msg.Sender.ID, ""); err != nil {
					return fmt.Errorf("clear context: %w", err)
				}
			}
			logger.Debug("low confidence inside context", "context", current, "policy", policy, "confidence", best.Confidence)
			if policy == domain.PolicyRoot {
				continue
			}
		}

		res.Address = domain.UnknownAddress
		res.Source = domain.SourceFallback
		res.Confidence = best.Confidence
		return nil
	}
}

// policy returns the fallback policy of the context node. Policies are not
// inherited: an unset policy is system even under a parent that declares one.
func policy(node domain.IntentNode) domain.DefaultPolicy {
	return node.Default.OrDefault()
}

// execute resolves the node, follows aliases, runs the action and updates the context.
func (e *Engine) execute(ctx context.Context, logger *slog.Logger, msg domain.Message, res *domain.Result, updateContext bool) error {
	sender := msg.Sender.ID

	node, ok := e.intents.Lookup(res.Address)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAddress, res.Address)
	}
	e.emitResolve(ctx, res)

	target, _, err := e.intents.Follow(node.Address)
	if err != nil {
		return err
	}
	res.Target = target.Address
	res.Action = target.Action
	logger = logger.With("address", res.Address, "action", res.Action)

	conv := &conversation{
		ctx:             ctx,
		sender:          sender,
		store:           e.store,
		intents:         e.intents,
		classifications: res.Classifications,
	}
	if res.Sentiment != nil {
		conv.sentiment = *res.Sentiment
	}

	fn, err := e.actions.Lookup(target.Action)
	if err != nil {
		logger.Debug("no action bound, skipping", "err", err)
		e.emitAction(ctx, domain.EventActionCall, res, false, 0, false)
	} else {
		e.emitAction(ctx, domain.EventActionCall, res, true, 0, false)
		start := time.Now()
		out, err := invoke(ctx, fn, msg, conv)
		elapsed := time.Since(start)

		res.Executed = true
		res.Output = out
		if err != nil {
			res.SetErr(err)
			logger.Error("action failed", "err", err, "duration", elapsed)
		} else {
			logger.Debug("action executed", "duration", elapsed)
		}
		e.emitAction(ctx, domain.EventActionReturn, res, true, elapsed, err != nil)
	}

	if updateContext && len(node.Children) > 0 {
		if err := e.store.SetContext(ctx, sender, node.Address); err != nil {
			return fmt.Errorf("enter context: %w", err)
		}
	}

	current, err := e.store.GetContext(ctx, sender)
	if err != nil {
		return fmt.Errorf("read context: %w", err)
	}
	res.Context = current
	return nil
}

// invoke runs an action, turning panics into errors.
func invoke(ctx context.Context, fn registry.ActionFunc, msg domain.Message, conv ports.Conversation) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActionPanicError{Value: r}
		}
	}()
	return fn(ctx, msg, conv)
}

// ActionPanicError wraps a value recovered from a panicking action.
type ActionPanicError struct {
	Value any
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Value)
}
