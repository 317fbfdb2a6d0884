package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/intent"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
)

// scriptedClassifier returns canned rankings per text.
type scriptedClassifier struct {
	trained bool
	scores  map[string]domain.Classifications
}

func (s *scriptedClassifier) Add(string, string) {}

func (s *scriptedClassifier) Train(context.Context) error {
	s.trained = true
	return nil
}

func (s *scriptedClassifier) Classify(text string) (domain.Classifications, error) {
	if !s.trained {
		return nil, domain.ErrNotTrained
	}
	out := append(domain.Classifications(nil), s.scores[text]...)
	out.Sort()
	return out, nil
}

func tree() []domain.Definition {
	return []domain.Definition{
		{Address: "greet", Classifiers: []string{"hello", "hi"}, Action: "greetFn"},
		{Address: "menu", Text: "menu", Action: "menuFn"},
		{Address: "order", Default: domain.PolicyRoot, Children: []domain.Definition{
			{Address: "order.item"},
			{Address: "size"},
		}},
		{Address: "confirm", Children: []domain.Definition{{Address: "yes"}}},
		{Address: "quiz", Default: domain.PolicyRetry, Children: []domain.Definition{
			{Address: "a", Children: []domain.Definition{{Address: "easy"}, {Address: "hard"}}},
			{Address: "b"},
		}},
		{Address: "trivia", Default: domain.PolicyUnknown, Children: []domain.Definition{{Address: "c"}, {Address: "d"}}},
		{Address: "survey", Children: []domain.Definition{{Address: "x"}, {Address: "y"}}},
		{Address: "cancel", Action: "cancelFn"},
		{Address: "quit", Call: "cancel"},
		{Address: "shop", Call: "cancel", Children: []domain.Definition{{Address: "hours"}}},
		{Address: "loop1", Call: "loop2"},
		{Address: "loop2", Call: "loop1"},
		{Address: domain.UnknownAddress, Action: "unknownFn"},
	}
}

type fixture struct {
	engine  *runtime.Engine
	store   *memory.Store
	actions *registry.Registry
	cls     *scriptedClassifier

	mu    sync.Mutex
	calls []string
}

func newFixture(t *testing.T, scores map[string]domain.Classifications, opts ...runtime.EngineOption) *fixture {
	t.Helper()

	f := &fixture{
		store:   memory.NewStore(),
		actions: registry.NewRegistry(),
		cls:     &scriptedClassifier{scores: scores},
	}
	intents := intent.NewRegistry(f.cls)
	require.NoError(t, intents.Define(tree()...))
	require.NoError(t, intents.Freeze())
	require.NoError(t, f.cls.Train(context.Background()))

	for _, name := range []string{"greetFn", "menuFn", "order", "item", "yes", "cancelFn", "unknownFn", "a", "b", "x", "quit"} {
		name := name
		f.actions.Register(name, func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls = append(f.calls, name)
			return name + " done", nil
		})
	}

	f.engine = runtime.NewEngine(intents, f.cls, f.store, f.actions, opts...)
	return f
}

func (f *fixture) dispatch(t *testing.T, sender, text string) *domain.Result {
	t.Helper()
	res, err := f.engine.Dispatch(context.Background(), domain.NewMessage(sender, text))
	require.NoError(t, err)
	return res
}

func (f *fixture) context(t *testing.T, sender string) string {
	t.Helper()
	current, err := f.store.GetContext(context.Background(), sender)
	require.NoError(t, err)
	return current
}

func (f *fixture) enter(t *testing.T, sender, address string) {
	t.Helper()
	require.NoError(t, f.store.SetContext(context.Background(), sender, address))
}

func TestEngine_ClassifierResolvesTopLevel(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"hello": {{Label: "greet", Confidence: 0.93}, {Label: "order.item", Confidence: 0.99}},
	})

	res := f.dispatch(t, "u1", "hello")

	assert.Equal(t, []string{"greetFn"}, f.calls)
	assert.Equal(t, "greet", res.Address)
	assert.Equal(t, domain.SourceClassifier, res.Source)
	assert.InDelta(t, 0.93, res.Confidence, 1e-9)
	assert.True(t, res.Executed)
	assert.Equal(t, "greetFn done", res.Output)
	assert.Empty(t, f.context(t, "u1"), "leaf nodes leave the context unset")
	assert.NotEmpty(t, res.DispatchID)
	for _, c := range res.Classifications {
		assert.NotEqual(t, "order.item", c.Label, "nested labels are filtered at the root")
	}
}

func TestEngine_LowConfidenceResolvesUnknown(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"blah": {{Label: "greet", Confidence: 0.42}},
	})

	res := f.dispatch(t, "u1", "blah")

	assert.Equal(t, []string{"unknownFn"}, f.calls)
	assert.Equal(t, domain.UnknownAddress, res.Address)
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.InDelta(t, 0.42, res.Confidence, 1e-9)
}

func TestEngine_ThresholdOption(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"blah": {{Label: "greet", Confidence: 0.42}},
	}, runtime.WithThreshold(0.4))

	res := f.dispatch(t, "u1", "blah")
	assert.Equal(t, "greet", res.Address)
	assert.InDelta(t, 0.4, f.engine.Threshold(), 1e-9)
}

func TestEngine_LiteralShortcut(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"menu": {{Label: "menu", Confidence: 0.05}},
	})
	f.enter(t, "u1", "order")

	res := f.dispatch(t, "u1", "menu")

	assert.Equal(t, []string{"menuFn"}, f.calls)
	assert.Equal(t, domain.SourceLiteral, res.Source)
	assert.Equal(t, "order", f.context(t, "u1"), "literal matches never touch the context")
	assert.Equal(t, "order", res.Context)
}

func TestEngine_EntersAndScopesContext(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"i want to order": {{Label: "order", Confidence: 0.9}},
		"a pizza":         {{Label: "greet", Confidence: 0.99}, {Label: "order.item", Confidence: 0.8}},
	})

	res := f.dispatch(t, "u1", "i want to order")
	assert.Equal(t, "order", res.Context)

	res = f.dispatch(t, "u1", "a pizza")
	assert.Equal(t, "order.item", res.Address)
	assert.Equal(t, []string{"order", "item"}, f.calls)
	assert.Equal(t, "order", f.context(t, "u1"), "leaf child keeps the parent context")
}

func TestEngine_AutoDescend(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"whatever": {{Label: "greet", Confidence: 0.2}},
	})
	f.enter(t, "u1", "confirm")

	res := f.dispatch(t, "u1", "whatever")

	assert.Equal(t, []string{"yes"}, f.calls)
	assert.Equal(t, "confirm.yes", res.Address)
	assert.Equal(t, domain.SourceAutoDescend, res.Source)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.Empty(t, f.context(t, "u1"))
}

func TestEngine_DefaultPolicies(t *testing.T) {
	scores := map[string]domain.Classifications{
		"zzz":   {{Label: "greet", Confidence: 0.1}, {Label: "order.item", Confidence: 0.3}, {Label: "quiz.a", Confidence: 0.3}, {Label: "survey.x", Confidence: 0.3}},
		"hello": {{Label: "greet", Confidence: 0.95}, {Label: "order.size", Confidence: 0.3}},
	}

	t.Run("root clears and re-dispatches", func(t *testing.T) {
		f := newFixture(t, scores)
		f.enter(t, "u1", "order")

		res := f.dispatch(t, "u1", "hello")

		assert.Equal(t, []string{"greetFn"}, f.calls)
		assert.Equal(t, "greet", res.Address)
		assert.Empty(t, f.context(t, "u1"))
	})

	t.Run("policies are not inherited", func(t *testing.T) {
		f := newFixture(t, scores)
		f.enter(t, "u1", "quiz.a")

		res := f.dispatch(t, "u1", "zzz")

		assert.Equal(t, []string{"unknownFn"}, f.calls)
		assert.Equal(t, domain.UnknownAddress, res.Address)
		assert.Empty(t, f.context(t, "u1"), "quiz.a has no policy of its own, so it falls back to system")
	})

	t.Run("unknown clears without re-dispatching", func(t *testing.T) {
		f := newFixture(t, scores)
		f.enter(t, "u1", "trivia")

		res := f.dispatch(t, "u1", "hello")

		assert.Equal(t, []string{"unknownFn"}, f.calls)
		assert.Equal(t, domain.UnknownAddress, res.Address)
		assert.Equal(t, domain.SourceFallback, res.Source)
		assert.Empty(t, f.context(t, "u1"))
	})

	t.Run("retry keeps the context", func(t *testing.T) {
		f := newFixture(t, scores)
		f.enter(t, "u1", "quiz")

		res := f.dispatch(t, "u1", "zzz")

		assert.Equal(t, []string{"unknownFn"}, f.calls)
		assert.Equal(t, domain.UnknownAddress, res.Address)
		assert.Equal(t, "quiz", f.context(t, "u1"))
	})

	t.Run("unset policy behaves as system", func(t *testing.T) {
		f := newFixture(t, scores)
		f.enter(t, "u1", "survey")

		res := f.dispatch(t, "u1", "hello")

		assert.Equal(t, domain.UnknownAddress, res.Address, "system does not re-dispatch")
		assert.Empty(t, f.context(t, "u1"))
	})
}

func TestEngine_AliasExecutesTarget(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"bye":  {{Label: "quit", Confidence: 0.9}},
		"shop": {{Label: "shop", Confidence: 0.9}},
	})

	res := f.dispatch(t, "u1", "bye")
	assert.Equal(t, []string{"cancelFn"}, f.calls, "the alias node's own action is not run")
	assert.Equal(t, "quit", res.Address)
	assert.Equal(t, "cancel", res.Target)
	assert.Equal(t, "cancelFn", res.Action)

	res = f.dispatch(t, "u1", "shop")
	assert.Equal(t, "shop", res.Context, "context follows the node before alias resolution")
}

func TestEngine_RuntimeErrors(t *testing.T) {
	t.Run("alias cycle", func(t *testing.T) {
		f := newFixture(t, map[string]domain.Classifications{
			"spin": {{Label: "loop1", Confidence: 0.9}},
		})
		_, err := f.engine.Dispatch(context.Background(), domain.NewMessage("u1", "spin"))
		assert.ErrorIs(t, err, domain.ErrAliasCycle)
		assert.Empty(t, f.calls)
	})

	t.Run("context outside the tree", func(t *testing.T) {
		f := newFixture(t, nil)
		f.enter(t, "u1", "ghost")
		_, err := f.engine.Dispatch(context.Background(), domain.NewMessage("u1", "anything"))
		assert.ErrorIs(t, err, domain.ErrUnknownAddress)
	})

	t.Run("not trained", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cls.trained = false
		_, err := f.engine.Dispatch(context.Background(), domain.NewMessage("u1", "anything"))
		assert.ErrorIs(t, err, domain.ErrNotTrained)
	})
}

func TestEngine_UnboundActionIsNoop(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"large": {{Label: "order.size", Confidence: 0.9}},
	})
	f.enter(t, "u1", "order")

	res := f.dispatch(t, "u1", "large")

	assert.Equal(t, "size", res.Action)
	assert.False(t, res.Executed)
	assert.NoError(t, res.Err)
	assert.Equal(t, "order", res.Context)
}

func TestEngine_ActionFailuresAreRecorded(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"fail":  {{Label: "order", Confidence: 0.9}},
		"panic": {{Label: "greet", Confidence: 0.9}},
	})
	boom := errors.New("boom")
	f.actions.Register("order", func(context.Context, domain.Message, ports.Conversation) (any, error) {
		return nil, boom
	})
	f.actions.Register("greetFn", func(context.Context, domain.Message, ports.Conversation) (any, error) {
		panic("kaboom")
	})

	res := f.dispatch(t, "u1", "fail")
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "boom", res.Error)
	assert.Equal(t, "order", res.Context, "context is updated after a failing action")

	res = f.dispatch(t, "u2", "panic")
	var panicErr *runtime.ActionPanicError
	require.ErrorAs(t, res.Err, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Value)
}

func TestEngine_ConversationAccessors(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"hello": {{Label: "greet", Confidence: 0.9}},
	})

	var (
		setErr  error
		ranking domain.Classifications
		stashed any
	)
	f.actions.Register("greetFn", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		setErr = conv.SetContext("nowhere")
		ranking = conv.Classifications()
		require.NoError(t, conv.Stash(map[string]int{"visits": 1}))
		stashed, _ = conv.Stashed()
		return nil, conv.SetContext("survey")
	})

	res := f.dispatch(t, "u1", "hello")

	assert.ErrorIs(t, setErr, domain.ErrUnknownAddress)
	require.NotEmpty(t, ranking)
	assert.Equal(t, "greet", ranking[0].Label)
	assert.Equal(t, map[string]int{"visits": 1}, stashed)
	assert.Equal(t, "survey", res.Context, "actions may move the conversation")

	conv := f.engine.NewConversation(context.Background(), "u1")
	require.NoError(t, conv.SetContext(""))
	prev, err := conv.Previous()
	require.NoError(t, err)
	assert.Equal(t, "survey", prev)
}

type lengthAnalyzer struct{}

func (lengthAnalyzer) Analyze(text string) domain.Sentiment {
	return domain.Sentiment{Score: len(text)}
}

func TestEngine_Sentiment(t *testing.T) {
	scores := map[string]domain.Classifications{
		"hello": {{Label: "greet", Confidence: 0.9}},
	}

	f := newFixture(t, scores, runtime.WithSentiment(lengthAnalyzer{}))
	var seen domain.Sentiment
	f.actions.Register("greetFn", func(ctx context.Context, msg domain.Message, conv ports.Conversation) (any, error) {
		seen = conv.Sentiment()
		return nil, nil
	})

	res := f.dispatch(t, "u1", "hello")
	require.NotNil(t, res.Sentiment)
	assert.Equal(t, 5, res.Sentiment.Score)
	assert.Equal(t, 5, seen.Score)

	res = f.dispatch(t, "u1", "menu")
	require.NotNil(t, res.Sentiment, "literal matches are scored too")
	assert.Equal(t, 4, res.Sentiment.Score)

	plain := newFixture(t, scores)
	assert.Nil(t, plain.dispatch(t, "u1", "hello").Sentiment)
}

func TestEngine_DispatchCreatesConversation(t *testing.T) {
	f := newFixture(t, map[string]domain.Classifications{
		"hello": {{Label: "greet", Confidence: 0.9}},
	})

	res := f.dispatch(t, "u1", "hello")
	assert.Empty(t, res.Context)
	f.dispatch(t, "u2", "menu")

	senders, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, senders)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var events []domain.EventType
	hooks := domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			events = append(events, e.Type)
		},
		OnActionCall: func(_ context.Context, e *domain.ActionEvent) {
			events = append(events, e.Type)
		},
		OnActionReturn: func(_ context.Context, e *domain.ActionEvent) {
			assert.True(t, e.Bound)
			events = append(events, e.Type)
		},
	}
	f := newFixture(t, map[string]domain.Classifications{
		"hello": {{Label: "greet", Confidence: 0.9}},
	}, runtime.WithLifecycleHooks(hooks))

	f.dispatch(t, "u1", "hello")

	assert.Equal(t, []domain.EventType{domain.EventResolve, domain.EventActionCall, domain.EventActionReturn}, events)
}

func TestInNamespace(t *testing.T) {
	root := runtime.InNamespace("")
	assert.True(t, root("greet"))
	assert.False(t, root("order.item"))

	order := runtime.InNamespace("order")
	assert.True(t, order("order.item"))
	assert.False(t, order("order"))
	assert.False(t, order("order.item.extra"))
	assert.False(t, order("orders.item"))
}
