package intent_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/intent"
)

type sample struct {
	text  string
	label string
}

type recordingClassifier struct {
	samples []sample
}

func (c *recordingClassifier) Add(text, label string) {
	c.samples = append(c.samples, sample{text: text, label: label})
}

func (c *recordingClassifier) Train(context.Context) error { return nil }

func (c *recordingClassifier) Classify(string) (domain.Classifications, error) {
	return nil, nil
}

func orderTree() domain.Definition {
	return domain.Definition{
		Address:     "order",
		Classifiers: []string{"i want to order", "buy something"},
		Default:     domain.PolicyRetry,
		Children: []domain.Definition{
			{Address: "item", Classifiers: []string{"a pizza"}},
			{Address: "order.size", Classifiers: []string{"large"}},
			{Call: "cancel"},
		},
	}
}

func TestRegistry_RegisterTree(t *testing.T) {
	cls := &recordingClassifier{}
	reg := intent.NewRegistry(cls)

	def := orderTree()
	addr, err := reg.Register(def, "")
	require.NoError(t, err)
	assert.Equal(t, "order", addr)
	assert.Equal(t, def.Count(), reg.Len())

	order, ok := reg.Lookup("order")
	require.True(t, ok)
	want := domain.IntentNode{
		Address:  "order",
		Samples:  []string{"i want to order", "buy something"},
		Action:   "order",
		Default:  domain.PolicyRetry,
		Version:  domain.SchemaVersion,
		Children: []string{"order.item", "order.size", "order.cancel"},
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order node mismatch (-want +got):\n%s", diff)
	}

	alias, ok := reg.Lookup("order.cancel")
	require.True(t, ok)
	assert.True(t, alias.IsAlias())
	assert.Equal(t, "cancel", alias.Action)

	wantSamples := []sample{
		{"i want to order", "order"},
		{"buy something", "order"},
		{"a pizza", "order.item"},
		{"large", "order.size"},
	}
	if diff := cmp.Diff(wantSamples, cls.samples, cmp.AllowUnexported(sample{})); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_CountMatchesDefinitions(t *testing.T) {
	reg := intent.NewRegistry(nil)
	defs := []domain.Definition{
		{Address: "greet", Classifiers: []string{"hello"}},
		orderTree(),
		{Address: "unknown"},
	}
	require.NoError(t, reg.Define(defs...))

	total := 0
	for _, d := range defs {
		total += d.Count()
	}
	assert.Equal(t, total, reg.Len())

	var addresses []string
	for _, n := range reg.Nodes() {
		addresses = append(addresses, n.Address)
	}
	want := []string{"greet", "order", "order.cancel", "order.item", "order.size", "unknown"}
	if diff := cmp.Diff(want, addresses); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_DuplicateAddress(t *testing.T) {
	cls := &recordingClassifier{}
	reg := intent.NewRegistry(cls)
	require.NoError(t, reg.Define(domain.Definition{Address: "greet", Classifiers: []string{"hello"}}))

	err := reg.Define(domain.Definition{Address: "greet", Classifiers: []string{"hi"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateAddress)
	assert.Len(t, cls.samples, 1, "rejected definitions must not reach the classifier")

	err = reg.Define(domain.Definition{
		Address:  "menu",
		Children: []domain.Definition{{Address: "a"}, {Address: "menu.a"}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateAddress)
	_, ok := reg.Lookup("menu")
	assert.False(t, ok, "failed registration is atomic")
}

func TestRegistry_DuplicateLiteral(t *testing.T) {
	reg := intent.NewRegistry(nil)
	require.NoError(t, reg.Define(domain.Definition{Address: "help", Text: "/help"}))

	err := reg.Define(domain.Definition{Address: "info", Text: "/help"})
	assert.ErrorIs(t, err, domain.ErrDuplicateLiteral)

	addr, ok := reg.Literal("/help")
	assert.True(t, ok)
	assert.Equal(t, "help", addr)
}

func TestRegistry_MissingParent(t *testing.T) {
	reg := intent.NewRegistry(nil)

	err := reg.Define(domain.Definition{Address: "order.item"})
	assert.ErrorIs(t, err, domain.ErrMissingParent)

	_, err = reg.Register(domain.Definition{Address: "item"}, "order")
	assert.ErrorIs(t, err, domain.ErrMissingParent)

	require.NoError(t, reg.Define(domain.Definition{Address: "order"}))
	require.NoError(t, reg.Define(domain.Definition{Address: "order.item"}))

	order, _ := reg.Lookup("order")
	assert.Equal(t, []string{"order.item"}, order.Children)
}

func TestRegistry_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  domain.Definition
		want error
	}{
		{"legacy version", domain.Definition{Address: "greet", Version: 1}, domain.ErrInvalidVersion},
		{"child legacy version", domain.Definition{Address: "a", Children: []domain.Definition{{Address: "b", Version: 3}}}, domain.ErrInvalidVersion},
		{"empty address", domain.Definition{Classifiers: []string{"x"}}, domain.ErrInvalidDefinition},
		{"dotted child segment", domain.Definition{Address: "a", Children: []domain.Definition{{Address: "b.c"}}}, domain.ErrInvalidDefinition},
		{"bad policy", domain.Definition{Address: "a", Default: "later"}, domain.ErrInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := intent.NewRegistry(nil)
			err := reg.Define(tt.def)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, reg.Len())
		})
	}
}

func TestRegistry_Freeze(t *testing.T) {
	reg := intent.NewRegistry(nil)
	require.NoError(t, reg.Define(domain.Definition{Address: "greet"}))

	assert.ErrorIs(t, reg.Freeze(), domain.ErrMissingUnknown)
	assert.False(t, reg.Frozen())

	require.NoError(t, reg.Define(domain.Definition{Address: domain.UnknownAddress}))
	require.NoError(t, reg.Freeze())
	assert.True(t, reg.Frozen())

	err := reg.Define(domain.Definition{Address: "late"})
	assert.ErrorIs(t, err, domain.ErrRegistryFrozen)
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	reg := intent.NewRegistry(nil)
	require.NoError(t, reg.Define(orderTree()))

	node, _ := reg.Lookup("order")
	node.Children[0] = "tampered"

	again, _ := reg.Lookup("order")
	assert.Equal(t, "order.item", again.Children[0])
}
