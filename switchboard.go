package switchboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/classifier"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/intent"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/aretw0/switchboard/pkg/scheduler"
	"github.com/aretw0/switchboard/pkg/sentiment"
	"github.com/aretw0/switchboard/pkg/session"
)

// DefaultThreshold is the confidence below which classifications fall back.
const DefaultThreshold = runtime.DefaultThreshold

// Router is the high-level entry point of the library.
// Intents are defined and actions registered first; FinalizeTraining then freezes the
// tree and trains the classifier, after which Dispatch is safe for concurrent use.
type Router struct {
	intents    *intent.Registry
	classifier ports.TextClassifier
	sentiment  ports.SentimentAnalyzer
	store      ports.ContextStore
	actions    *registry.Registry
	sessions   *session.Manager
	schedules  *scheduler.Scheduler
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	threshold  float64

	mu     sync.RWMutex
	engine *runtime.Engine
}

// Option defines a functional option for configuring the Router.
type Option func(*Router)

// WithClassifier replaces the built-in logistic regression classifier.
func WithClassifier(c ports.TextClassifier) Option {
	return func(r *Router) {
		r.classifier = c
	}
}

// WithSentimentAnalyzer replaces the built-in lexicon analyzer.
func WithSentimentAnalyzer(a ports.SentimentAnalyzer) Option {
	return func(r *Router) {
		r.sentiment = a
	}
}

// WithContextStore replaces the in-memory conversation store.
func WithContextStore(s ports.ContextStore) Option {
	return func(r *Router) {
		r.store = s
	}
}

// WithLogger sets a custom structured logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Router) {
		r.hooks = hooks
	}
}

// WithThreshold sets the minimum classifier confidence (default 0.7).
func WithThreshold(threshold float64) Option {
	return func(r *Router) {
		r.threshold = threshold
	}
}

// New initializes a Router.
func New(opts ...Option) *Router {
	r := &Router{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.classifier == nil {
		r.classifier = classifier.New(classifier.WithLogger(r.logger))
	}
	if r.sentiment == nil {
		r.sentiment = sentiment.New()
	}
	if r.store == nil {
		r.store = memory.NewStore()
	}

	r.intents = intent.NewRegistry(r.classifier, intent.WithLogger(r.logger))
	r.actions = registry.NewRegistry()
	r.sessions = session.NewManager(session.WithLogger(r.logger))
	r.schedules = scheduler.New(r.actions, r.scheduledConversation,
		scheduler.WithLock(r.sessions.WithLock),
		scheduler.WithLogger(logging.Component(r.logger, "scheduler")),
	)
	return r
}

// DefineIntent registers definition trees. Every error is a build error.
func (r *Router) DefineIntent(defs ...domain.Definition) error {
	return r.intents.Define(defs...)
}

// Load defines every intent provided by src. Sources that implement
// ports.ScheduleSource also register their schedules.
func (r *Router) Load(src ports.IntentSource) error {
	defs, err := src.Definitions()
	if err != nil {
		return fmt.Errorf("failed to load intents: %w", err)
	}
	if err := r.DefineIntent(defs...); err != nil {
		return err
	}

	if ss, ok := src.(ports.ScheduleSource); ok {
		schedules, err := ss.Schedules()
		if err != nil {
			return fmt.Errorf("failed to load schedules: %w", err)
		}
		return r.Schedule(schedules...)
	}
	return nil
}

// RegisterAction binds an action name. Re-registering a name replaces the handler.
func (r *Router) RegisterAction(name string, fn registry.ActionFunc) {
	r.actions.Register(name, fn)
}

// FinalizeTraining freezes the intent tree and trains the classifier.
// It must be called exactly once, before any dispatch.
func (r *Router) FinalizeTraining(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		return domain.ErrAlreadyTrained
	}
	if err := r.intents.Freeze(); err != nil {
		return err
	}
	for _, problem := range r.intents.Lint() {
		r.logger.Warn("intent tree problem", "err", problem)
	}

	start := time.Now()
	if err := r.classifier.Train(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	r.engine = runtime.NewEngine(r.intents, r.classifier, r.store, r.actions,
		runtime.WithThreshold(r.threshold),
		runtime.WithSentiment(r.sentiment),
		runtime.WithLifecycleHooks(r.hooks),
		runtime.WithLogger(r.logger),
	)
	r.logger.Info("router ready", "intents", r.intents.Len(), "actions", len(r.actions.Names()), "took", time.Since(start))
	return nil
}

// Ready reports whether FinalizeTraining succeeded.
func (r *Router) Ready() bool {
	return r.current() != nil
}

func (r *Router) current() *runtime.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine
}

// Dispatch routes one message. Messages of the same sender are processed one at a time.
// Runtime errors never escape: the message is dropped and the error recorded on the Result.
func (r *Router) Dispatch(ctx context.Context, msg domain.Message) *domain.Result {
	engine := r.current()
	if engine == nil {
		return r.drop(ctx, nil, msg, domain.ErrNotTrained)
	}

	var res *domain.Result
	err := r.sessions.WithLock(ctx, msg.Sender.ID, func(ctx context.Context) error {
		var err error
		res, err = engine.Dispatch(ctx, msg)
		return err
	})
	if err != nil {
		return r.drop(ctx, res, msg, err)
	}
	return res
}

func (r *Router) drop(ctx context.Context, res *domain.Result, msg domain.Message, err error) *domain.Result {
	if res == nil {
		res = &domain.Result{DispatchID: uuid.NewString(), Sender: msg.Sender.ID}
	}
	res.Dropped = true
	res.SetErr(err)

	r.logger.Warn("message dropped", "dispatch_id", res.DispatchID, "sender", res.Sender, "err", err)
	if r.hooks.OnDrop != nil {
		r.hooks.OnDrop(ctx, &domain.DropEvent{
			EventBase: domain.EventBase{
				Timestamp:  time.Now(),
				Type:       domain.EventDrop,
				DispatchID: res.DispatchID,
				Sender:     res.Sender,
			},
			Err: err,
		})
	}
	return res
}

// Inspect returns every registered intent node ordered by address.
func (r *Router) Inspect() []domain.IntentNode {
	return r.intents.Nodes()
}

// Lint reports alias problems of the intent tree.
func (r *Router) Lint() []error {
	return r.intents.Lint()
}

// Actions returns the registered action names.
func (r *Router) Actions() []string {
	return r.actions.Names()
}

// Threshold returns the configured confidence threshold.
func (r *Router) Threshold() float64 {
	if engine := r.current(); engine != nil {
		return engine.Threshold()
	}
	return r.threshold
}

// Conversation returns a snapshot of the sender's conversation.
func (r *Router) Conversation(ctx context.Context, sender string) (domain.Conversation, error) {
	return r.store.Snapshot(ctx, sender)
}

// Conversations returns the senders the router has seen.
func (r *Router) Conversations(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// SetContext moves a sender to address outside of a dispatch ("" resets to the root).
// It takes the sender's lock, so it never interleaves with a dispatch of the same sender.
func (r *Router) SetContext(ctx context.Context, sender, address string) error {
	return r.sessions.WithLock(ctx, sender, func(ctx context.Context) error {
		if address != "" {
			if _, ok := r.intents.Lookup(address); !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownAddress, address)
			}
		}
		return r.store.SetContext(ctx, sender, address)
	})
}

// Forget deletes the sender's conversation.
func (r *Router) Forget(ctx context.Context, sender string) error {
	return r.sessions.WithLock(ctx, sender, func(ctx context.Context) error {
		return r.store.Delete(ctx, sender)
	})
}

// Schedule registers actions that run on timers. They start with RunSchedules.
func (r *Router) Schedule(schedules ...domain.Schedule) error {
	return r.schedules.Add(schedules...)
}

// Schedules returns the registered schedules ordered by name.
func (r *Router) Schedules() []domain.Schedule {
	return r.schedules.Schedules()
}

// RunSchedules runs the registered schedules until ctx is canceled.
// Each run holds the lock of its "scheduler:<name>" sender.
func (r *Router) RunSchedules(ctx context.Context) error {
	if !r.Ready() {
		return domain.ErrNotTrained
	}
	for _, sched := range r.Schedules() {
		if _, err := r.actions.Lookup(sched.Action); err != nil {
			r.logger.Warn("schedule has no bound action", "schedule", sched.Name, "err", err)
		}
	}
	return r.schedules.Run(ctx)
}

func (r *Router) scheduledConversation(ctx context.Context, sender string) ports.Conversation {
	return r.current().NewConversation(ctx, sender)
}
