// Package middleware wraps a ports.ContextStore with cross-cutting behavior.
package middleware
