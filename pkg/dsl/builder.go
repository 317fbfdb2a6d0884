package dsl

import (
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
)

// Builder manages the construction of an intent tree.
type Builder struct {
	order []string
	roots map[string]*IntentBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		roots: make(map[string]*IntentBuilder),
	}
}

// Add creates a top-level intent.
// If the intent already exists, it returns the existing builder.
func (b *Builder) Add(address string) *IntentBuilder {
	if ib, ok := b.roots[address]; ok {
		return ib
	}
	ib := &IntentBuilder{def: domain.Definition{Address: address}}
	b.roots[address] = ib
	b.order = append(b.order, address)
	return ib
}

// Unknown adds the fallback intent bound to action.
func (b *Builder) Unknown(action string) *IntentBuilder {
	return b.Add(domain.UnknownAddress).Action(action)
}

// Build returns the definitions in declaration order.
func (b *Builder) Build() []domain.Definition {
	defs := make([]domain.Definition, 0, len(b.order))
	for _, address := range b.order {
		defs = append(defs, b.roots[address].Build())
	}
	return defs
}

// Source compiles the tree into an in-memory intent source.
func (b *Builder) Source() *memory.Source {
	return memory.NewSource(b.Build()...)
}
