package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
)

const (
	DefaultEpochs       = 200
	DefaultLearningRate = 0.5
	DefaultL2           = 0.01
)

type sample struct {
	features []string
	label    string
}

// model is immutable once built; Train swaps it as a whole.
type model struct {
	labels  []string
	vocab   map[string]int
	weights map[string][]float64 // label -> weight per vocab index
}

// Classifier is a trainable one-vs-rest logistic regression.
// Safe for concurrent use; Classify never blocks on a running Train.
type Classifier struct {
	mu      sync.RWMutex
	samples []sample
	labels  []string // first-seen order
	known   map[string]bool
	model   *model
	stale   bool

	epochs int
	rate   float64
	l2     float64
	logger *slog.Logger
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithEpochs sets the number of passes over the samples.
func WithEpochs(n int) Option {
	return func(c *Classifier) {
		c.epochs = n
	}
}

// WithLearningRate sets the SGD step size.
func WithLearningRate(rate float64) Option {
	return func(c *Classifier) {
		c.rate = rate
	}
}

// WithL2 sets the weight decay factor.
func WithL2(l2 float64) Option {
	return func(c *Classifier) {
		c.l2 = l2
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates an untrained classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		known:  make(map[string]bool),
		epochs: DefaultEpochs,
		rate:   DefaultLearningRate,
		l2:     DefaultL2,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers a training sample for label.
// Samples without any token are kept as labels but contribute no features.
// Adding after Train marks the model stale until the next Train.
func (c *Classifier) Add(text, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.known[label] {
		c.known[label] = true
		c.labels = append(c.labels, label)
	}
	c.samples = append(c.samples, sample{features: Features(text), label: label})
	if c.model != nil {
		c.stale = true
	}
}

// Labels returns the known labels in first-seen order.
func (c *Classifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.labels...)
}

// Trained reports whether a model is available.
func (c *Classifier) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}

// Stale reports whether samples were added after the last Train.
func (c *Classifier) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// Train fits one binary model per label over every sample added so far.
func (c *Classifier) Train(ctx context.Context) error {
	c.mu.RLock()
	samples := append([]sample(nil), c.samples...)
	labels := append([]string(nil), c.labels...)
	c.mu.RUnlock()

	start := time.Now()

	vocab := make(map[string]int)
	encoded := make([][]int, len(samples))
	for i, s := range samples {
		idx := make([]int, 0, len(s.features))
		for _, f := range s.features {
			j, ok := vocab[f]
			if !ok {
				j = len(vocab)
				vocab[f] = j
			}
			idx = append(idx, j)
		}
		encoded[i] = idx
	}

	m := &model{
		labels:  labels,
		vocab:   vocab,
		weights: make(map[string][]float64, len(labels)),
	}

	for _, label := range labels {
		w := make([]float64, len(vocab))
		for epoch := 0; epoch < c.epochs; epoch++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("training interrupted: %w", err)
			}
			for i, s := range samples {
				y := 0.0
				if s.label == label {
					y = 1.0
				}
				g := y - sigmoid(dot(w, encoded[i]))
				for _, j := range encoded[i] {
					w[j] += c.rate*g - c.rate*c.l2*w[j]
				}
			}
		}
		m.weights[label] = w
	}

	c.mu.Lock()
	c.model = m
	// Samples added while training are not part of m.
	c.stale = len(c.samples) != len(samples)
	c.mu.Unlock()

	c.logger.Info("classifier trained",
		"labels", len(labels),
		"samples", len(samples),
		"features", len(vocab),
		"duration", time.Since(start),
	)
	return nil
}

// Classify ranks every known label for text.
func (c *Classifier) Classify(text string) (domain.Classifications, error) {
	c.mu.RLock()
	m := c.model
	c.mu.RUnlock()

	if m == nil {
		return nil, domain.ErrNotTrained
	}

	var idx []int
	for _, f := range Features(text) {
		if j, ok := m.vocab[f]; ok {
			idx = append(idx, j)
		}
	}

	out := make(domain.Classifications, 0, len(m.labels))
	for _, label := range m.labels {
		confidence := 0.0
		if len(idx) > 0 {
			confidence = sigmoid(dot(m.weights[label], idx))
		}
		out = append(out, domain.Classification{Label: label, Confidence: confidence})
	}
	out.Sort()
	return out, nil
}

func dot(w []float64, idx []int) float64 {
	var z float64
	for _, j := range idx {
		z += w[j]
	}
	return z
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
