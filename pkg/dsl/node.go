package dsl

import "github.com/aretw0/switchboard/pkg/domain"

// IntentBuilder provides a fluent API for configuring an intent.
type IntentBuilder struct {
	def      domain.Definition
	children []*IntentBuilder
	parent   *IntentBuilder
}

// Samples appends classifier training phrases.
func (n *IntentBuilder) Samples(phrases ...string) *IntentBuilder {
	n.def.Classifiers = append(n.def.Classifiers, phrases...)
	return n
}

// Text sets the exact literal that routes to this intent without classification.
func (n *IntentBuilder) Text(literal string) *IntentBuilder {
	n.def.Text = literal
	return n
}

// Action overrides the action name (the local segment by default).
func (n *IntentBuilder) Action(name string) *IntentBuilder {
	n.def.Action = name
	return n
}

// Call turns the intent into an alias of target.
func (n *IntentBuilder) Call(target string) *IntentBuilder {
	n.def.Call = target
	return n
}

// Default sets the low-confidence policy applied while a sender is inside this intent.
func (n *IntentBuilder) Default(policy domain.DefaultPolicy) *IntentBuilder {
	n.def.Default = policy
	return n
}

// Child adds a nested intent and returns its builder.
func (n *IntentBuilder) Child(segment string) *IntentBuilder {
	child := &IntentBuilder{def: domain.Definition{Address: segment}, parent: n}
	n.children = append(n.children, child)
	return child
}

// Alias adds a child that forwards to target, named after target's last segment.
func (n *IntentBuilder) Alias(target string) *IntentBuilder {
	child := &IntentBuilder{def: domain.Definition{Call: target}, parent: n}
	n.children = append(n.children, child)
	return n
}

// Up returns the parent builder, or n itself at the top level.
func (n *IntentBuilder) Up() *IntentBuilder {
	if n.parent == nil {
		return n
	}
	return n.parent
}

// Build returns the definition with its children.
func (n *IntentBuilder) Build() domain.Definition {
	def := n.def
	def.Classifiers = append([]string(nil), n.def.Classifiers...)
	if len(def.Classifiers) == 0 {
		def.Classifiers = nil
	}
	def.Children = nil
	for _, c := range n.children {
		def.Children = append(def.Children, c.Build())
	}
	return def
}
