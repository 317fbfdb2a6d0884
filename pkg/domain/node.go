package domain

import "strings"

// SchemaVersion is the only intent schema version understood by the router.
// Version 2 is the classifier-capable format; earlier formats were pattern based.
const SchemaVersion = 2

// UnknownAddress is the sentinel node every tree must register.
// Low-confidence messages without an active context resolve to it.
const UnknownAddress = "unknown"

// Separator joins the segments of an address.
const Separator = "."

// DefaultPolicy governs what happens when classification inside an active
// context is not confident enough.
type DefaultPolicy string

const (
	// PolicySystem clears the context and resolves to the unknown node.
	PolicySystem DefaultPolicy = "system"
	// PolicyRoot clears the context and re-dispatches the message from the root.
	PolicyRoot DefaultPolicy = "root"
	// PolicyUnknown clears the context and resolves to the unknown node.
	PolicyUnknown DefaultPolicy = "unknown"
	// PolicyRetry keeps the context and resolves to the unknown node.
	PolicyRetry DefaultPolicy = "retry"
)

// Valid reports whether p is one of the known policies (or empty).
func (p DefaultPolicy) Valid() bool {
	switch p {
	case "", PolicySystem, PolicyRoot, PolicyUnknown, PolicyRetry:
		return true
	}
	return false
}

// OrDefault returns PolicySystem for an unset policy.
func (p DefaultPolicy) OrDefault() DefaultPolicy {
	if p == "" {
		return PolicySystem
	}
	return p
}

// IntentNode represents a registered node of the address tree.
type IntentNode struct {
	Address string        `json:"address" yaml:"address"`
	Samples []string      `json:"classifiers,omitempty" yaml:"classifiers,omitempty"`
	Literal string        `json:"text,omitempty" yaml:"text,omitempty"`
	Action  string        `json:"action" yaml:"action"`
	Call    string        `json:"call,omitempty" yaml:"call,omitempty"`
	Default DefaultPolicy `json:"default,omitempty" yaml:"default,omitempty"`
	Version int           `json:"version" yaml:"version"`

	// Children holds the child addresses in declaration order.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// Segment returns the last segment of the node address.
func (n *IntentNode) Segment() string {
	return LocalSegment(n.Address)
}

// IsAlias reports whether the node forwards execution to another address.
func (n *IntentNode) IsAlias() bool {
	return n.Call != ""
}

// Clone returns a copy that does not share slices with n.
func (n *IntentNode) Clone() IntentNode {
	c := *n
	c.Samples = append([]string(nil), n.Samples...)
	c.Children = append([]string(nil), n.Children...)
	return c
}

// Definition is the declarative, recursively nested input of DefineIntent.
// Address may be a bare local segment ("item") or carry the parent prefix ("order.item").
type Definition struct {
	Version     int           `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	Address     string        `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`
	Classifiers []string      `json:"classifiers,omitempty" yaml:"classifiers,omitempty" mapstructure:"classifiers"`
	Text        string        `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	Call        string        `json:"call,omitempty" yaml:"call,omitempty" mapstructure:"call"`
	Default     DefaultPolicy `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
	Action      string        `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`
	Children    []Definition  `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// Count returns the number of nodes in the definition tree, d included.
func (d Definition) Count() int {
	n := 1
	for _, c := range d.Children {
		n += c.Count()
	}
	return n
}

// Join builds a child address. An empty parent yields the segment itself.
func Join(parent, segment string) string {
	if parent == "" {
		return segment
	}
	return parent + Separator + segment
}

// LocalSegment returns the last segment of an address.
func LocalSegment(address string) string {
	if i := strings.LastIndex(address, Separator); i >= 0 {
		return address[i+1:]
	}
	return address
}

// Parent returns the parent address, or "" for top-level addresses.
func Parent(address string) string {
	if i := strings.LastIndex(address, Separator); i >= 0 {
		return address[:i]
	}
	return ""
}

// IsTopLevel reports whether the address has no separator.
func IsTopLevel(address string) bool {
	return !strings.Contains(address, Separator)
}

// IsDirectChild reports whether child sits exactly one level below parent.
func IsDirectChild(parent, child string) bool {
	prefix := parent + Separator
	if !strings.HasPrefix(child, prefix) {
		return false
	}
	return !strings.Contains(child[len(prefix):], Separator)
}
