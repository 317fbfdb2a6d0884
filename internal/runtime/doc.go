// Package runtime implements the dispatch algorithm: literal shortcut, namespace-scoped
// classification, single-child auto-descend, confidence fallback driven by the context
// node's default policy, alias following and context update.
package runtime
