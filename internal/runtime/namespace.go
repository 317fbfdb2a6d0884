package runtime

import "github.com/aretw0/switchboard/pkg/domain"

// InNamespace returns the label filter for a sender whose context is current.
// At the root only top-level labels qualify; inside a context only its direct children do.
func InNamespace(current string) func(label string) bool {
	if current == "" {
		return domain.IsTopLevel
	}
	return func(label string) bool {
		return domain.IsDirectChild(current, label)
	}
}
