package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// TextClassifier is the capability the router uses to rank labels for a text.
// Labels are intent addresses.
type TextClassifier interface {
	// Add registers a training sample for a label.
	Add(sample, label string)

	// Train runs a training pass over every sample added so far.
	// It blocks until the model is ready or ctx is canceled.
	Train(ctx context.Context) error

	// Classify returns every known label with its confidence, highest first.
	// Returns domain.ErrNotTrained if Train has not completed.
	Classify(text string) (domain.Classifications, error)
}
