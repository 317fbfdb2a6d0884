package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/loader"
	"github.com/aretw0/switchboard/pkg/observability"
	"github.com/aretw0/switchboard/pkg/persistence/middleware"
	"github.com/aretw0/switchboard/pkg/ports"
)

// RouterOptions describes how the CLI builds a router from intent files.
type RouterOptions struct {
	Intents   []string
	Strict    bool
	Threshold float64
	Logger    *slog.Logger

	// Debug adds a LoggingHooks audit trail.
	Debug   bool
	Metrics *observability.Metrics

	// MaskKeys are regexps of stash keys hidden from conversation snapshots.
	MaskKeys []string
}

// NewRouter loads the intent files and their schedules, binds the echo action to
// every action name and finishes training.
func NewRouter(ctx context.Context, opts RouterOptions) (*switchboard.Router, error) {
	if len(opts.Intents) == 0 {
		return nil, fmt.Errorf("no intent files given (use --intents or SWITCHBOARD_INTENTS)")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	if opts.Metrics != nil {
		hooks = append(hooks, opts.Metrics.Hooks())
	}

	routerOpts := []switchboard.Option{
		switchboard.WithLogger(logger),
		switchboard.WithLifecycleHooks(observability.Chain(hooks...)),
	}
	if opts.Threshold > 0 {
		routerOpts = append(routerOpts, switchboard.WithThreshold(opts.Threshold))
	}
	if len(opts.MaskKeys) > 0 {
		mask, err := middleware.NewPIIMiddleware(opts.MaskKeys)
		if err != nil {
			return nil, fmt.Errorf("invalid mask key pattern: %w", err)
		}
		routerOpts = append(routerOpts, switchboard.WithContextStore(middleware.Chain(memory.NewStore(), mask)))
	}
	router := switchboard.New(routerOpts...)

	src := loader.New(opts.Intents, loader.WithStrict(opts.Strict), loader.WithLogger(logger))
	if err := router.Load(src); err != nil {
		return nil, err
	}

	for _, name := range actionNames(router.Inspect(), router.Schedules()) {
		router.RegisterAction(name, EchoAction(name))
	}

	if err := router.FinalizeTraining(ctx); err != nil {
		return nil, err
	}
	return router, nil
}

func actionNames(nodes []domain.IntentNode, schedules []domain.Schedule) []string {
	seen := make(map[string]struct{}, len(nodes)+len(schedules))
	for _, n := range nodes {
		if n.Action != "" {
			seen[n.Action] = struct{}{}
		}
	}
	for _, s := range schedules {
		seen[s.Action] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EchoAction replies with a markdown summary of how the message was routed.
// The CLI has no user code, so every action name is bound to it.
func EchoAction(name string) func(context.Context, domain.Message, ports.Conversation) (any, error) {
	return func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		reply := fmt.Sprintf("**%s**", name)
		if ranking := conv.Classifications(); len(ranking) > 0 {
			best, _ := ranking.Best()
			reply += fmt.Sprintf(" _(%s %.2f)_", best.Label, best.Confidence)
		}
		return reply, nil
	}
}
