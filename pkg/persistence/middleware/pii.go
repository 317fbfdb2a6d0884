package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Mask replaces the values of matching keys.
const Mask = "***"

type piiMiddleware struct {
	ports.ContextStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks stash values whose keys match one of the patterns.
// Only Snapshot is masked: actions keep reading the real stash through GetStash,
// while snapshots served to transports (HTTP, MCP) never carry the values.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.ContextStore) ports.ContextStore {
		return &piiMiddleware{ContextStore: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Snapshot(ctx context.Context, sender string) (domain.Conversation, error) {
	conv, err := m.ContextStore.Snapshot(ctx, sender)
	if err != nil {
		return conv, err
	}
	if stash, ok := conv.Stash.(map[string]any); ok {
		// Deep clone to avoid side effects on the stored stash.
		masked := deepCopyMap(stash)
		maskMap(masked, m.patterns)
		conv.Stash = masked
	}
	return conv, nil
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}
