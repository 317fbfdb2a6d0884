package memory

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Source implements ports.IntentSource over definitions held in memory.
type Source struct {
	defs []domain.Definition
}

// NewSource creates a source from domain definitions.
func NewSource(defs ...domain.Definition) *Source {
	return &Source{defs: defs}
}

// NewSourceFromJSON creates a source from raw JSON documents, one definition tree each.
// This improves DX for tests.
func NewSourceFromJSON(docs ...string) (*Source, error) {
	defs := make([]domain.Definition, 0, len(docs))
	for i, doc := range docs {
		var def domain.Definition
		if err := json.Unmarshal([]byte(doc), &def); err != nil {
			return nil, fmt.Errorf("failed to unmarshal definition %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return &Source{defs: defs}, nil
}

// Definitions returns the held definitions.
func (s *Source) Definitions() ([]domain.Definition, error) {
	return s.defs, nil
}
