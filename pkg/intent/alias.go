package intent

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Follow resolves the alias chain starting at address.
// It returns the final node and the visited chain (address first).
// A revisited address fails with domain.ErrAliasCycle; a missing node with domain.ErrUnknownAddress.
func (r *Registry) Follow(address string) (domain.IntentNode, []string, error) {
	visited := make(map[string]bool)
	chain := make([]string, 0, 2)

	current := address
	for {
		if visited[current] {
			chain = append(chain, current)
			return domain.IntentNode{}, chain, fmt.Errorf("%w: %s", domain.ErrAliasCycle, strings.Join(chain, " -> "))
		}
		visited[current] = true
		chain = append(chain, current)

		node, ok := r.Lookup(current)
		if !ok {
			return domain.IntentNode{}, chain, fmt.Errorf("%w: %q", domain.ErrUnknownAddress, current)
		}
		if !node.IsAlias() {
			return node, chain, nil
		}
		current = node.Call
	}
}

// Lint reports alias problems that would only surface at dispatch time.
func (r *Registry) Lint() []error {
	var problems []error
	for _, node := range r.Nodes() {
		if !node.IsAlias() {
			continue
		}
		if _, _, err := r.Follow(node.Address); err != nil {
			problems = append(problems, fmt.Errorf("alias %q: %w", node.Address, err))
		}
	}
	return problems
}
