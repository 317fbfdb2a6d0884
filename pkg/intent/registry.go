package intent

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Registry is the intent address tree plus the literal-text table.
type Registry struct {
	mu         sync.RWMutex
	nodes      map[string]*domain.IntentNode
	literals   map[string]string
	classifier ports.TextClassifier
	frozen     bool
	logger     *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry feeding samples into classifier.
// A nil classifier is allowed for trees that only use literal texts.
func NewRegistry(classifier ports.TextClassifier, opts ...Option) *Registry {
	r := &Registry{
		nodes:      make(map[string]*domain.IntentNode),
		literals:   make(map[string]string),
		classifier: classifier,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// planned is a node validated but not yet inserted.
type planned struct {
	node   *domain.IntentNode
	parent string
}

// Define registers top-level definition trees in order.
// A top-level definition with a dotted address ("order.item") is attached to its
// parent address, which must already be registered.
func (r *Registry) Define(defs ...domain.Definition) error {
	for _, def := range defs {
		if _, err := r.Register(def, ""); err != nil {
			return err
		}
	}
	return nil
}

// Register validates def (and its children) and inserts it under parent.
// It returns the address of the registered node. Registration is atomic: on error
// nothing is inserted and no sample reaches the classifier.
func (r *Registry) Register(def domain.Definition, parent string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return "", domain.ErrRegistryFrozen
	}

	if parent == "" && !domain.IsTopLevel(def.Address) {
		parent = domain.Parent(def.Address)
	}
	if parent != "" {
		if _, ok := r.nodes[parent]; !ok {
			return "", fmt.Errorf("%w: %q (declared by %q)", domain.ErrMissingParent, parent, def.Address)
		}
	}

	var plan []planned
	addresses := make(map[string]bool)
	literals := make(map[string]string)
	root, err := r.plan(def, parent, domain.SchemaVersion, &plan, addresses, literals)
	if err != nil {
		return "", err
	}

	for _, p := range plan {
		r.commit(p)
	}

	r.logger.Debug("intent registered", "address", root, "nodes", len(plan))
	return root, nil
}

// plan walks def depth-first, computing addresses and checking every build invariant.
// The caller must hold the lock.
func (r *Registry) plan(def domain.Definition, parent string, inherited int, out *[]planned, addresses map[string]bool, literals map[string]string) (string, error) {
	version := def.Version
	if version == 0 {
		version = inherited
	}
	if version != domain.SchemaVersion {
		return "", fmt.Errorf("%w: %d (address %q, want %d)", domain.ErrInvalidVersion, version, def.Address, domain.SchemaVersion)
	}

	segment, err := localSegment(def, parent)
	if err != nil {
		return "", err
	}
	address := domain.Join(parent, segment)

	if !def.Default.Valid() {
		return "", fmt.Errorf("%w: unknown default policy %q at %q", domain.ErrInvalidDefinition, def.Default, address)
	}
	if _, exists := r.nodes[address]; exists || addresses[address] {
		return "", fmt.Errorf("%w: %q", domain.ErrDuplicateAddress, address)
	}
	addresses[address] = true

	if def.Text != "" {
		if owner, exists := r.literals[def.Text]; exists {
			return "", fmt.Errorf("%w: %q already routes to %q", domain.ErrDuplicateLiteral, def.Text, owner)
		}
		if owner, exists := literals[def.Text]; exists {
			return "", fmt.Errorf("%w: %q already routes to %q", domain.ErrDuplicateLiteral, def.Text, owner)
		}
		literals[def.Text] = address
	}

	action := def.Action
	if action == "" {
		action = segment
	}

	node := &domain.IntentNode{
		Address: address,
		Samples: append([]string(nil), def.Classifiers...),
		Literal: def.Text,
		Action:  action,
		Call:    def.Call,
		Default: def.Default,
		Version: version,
	}
	*out = append(*out, planned{node: node, parent: parent})

	for _, child := range def.Children {
		if _, err := r.plan(child, address, version, out, addresses, literals); err != nil {
			return "", err
		}
	}
	return address, nil
}

// commit inserts a planned node. Parents are always committed before their children.
func (r *Registry) commit(p planned) {
	node := p.node
	r.nodes[node.Address] = node
	if node.Literal != "" {
		r.literals[node.Literal] = node.Address
	}
	if r.classifier != nil {
		for _, sample := range node.Samples {
			r.classifier.Add(sample, node.Address)
		}
	}
	if p.parent != "" {
		parent := r.nodes[p.parent]
		parent.Children = append(parent.Children, node.Address)
	}
}

// localSegment derives the node's own segment from its definition.
// Children that only carry a call target are named after the target's last segment.
func localSegment(def domain.Definition, parent string) (string, error) {
	segment := def.Address
	if segment == "" && def.Call != "" {
		segment = domain.LocalSegment(def.Call)
	}
	if parent != "" {
		segment = strings.TrimPrefix(segment, parent+domain.Separator)
	}
	if segment == "" {
		return "", fmt.Errorf("%w: node under %q has no address", domain.ErrInvalidDefinition, parent)
	}
	if strings.Contains(segment, domain.Separator) {
		return "", fmt.Errorf("%w: segment %q under %q contains %q", domain.ErrInvalidDefinition, segment, parent, domain.Separator)
	}
	return segment, nil
}

// Freeze makes the registry read-only. The unknown node must be registered.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodes[domain.UnknownAddress]; !ok {
		return domain.ErrMissingUnknown
	}
	r.frozen = true
	return nil
}

// Frozen reports whether Freeze succeeded.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns a copy of the node at address.
func (r *Registry) Lookup(address string) (domain.IntentNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.nodes[address]
	if !ok {
		return domain.IntentNode{}, false
	}
	return node.Clone(), true
}

// Literal returns the address bound to an exact text.
func (r *Registry) Literal(text string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.literals[text]
	return address, ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Nodes returns copies of every node ordered by address.
func (r *Registry) Nodes() []domain.IntentNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]domain.IntentNode, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Address < nodes[j].Address })
	return nodes
}

// Literals returns a copy of the literal table.
func (r *Registry) Literals() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.literals))
	for text, address := range r.literals {
		out[text] = address
	}
	return out
}
