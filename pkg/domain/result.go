package domain

// Source tells how a dispatch arrived at its address.
type Source string

const (
	SourceLiteral     Source = "literal"
	SourceClassifier  Source = "classifier"
	SourceAutoDescend Source = "auto_descend"
	SourceFallback    Source = "fallback"
)

// Result describes the outcome of one dispatch.
type Result struct {
	DispatchID string `json:"dispatch_id"`
	Sender     string `json:"sender"`

	// Address is the node the message resolved to, before alias following.
	Address string `json:"address,omitempty"`
	// Target is the last node of the alias chain (equal to Address without aliases).
	Target     string  `json:"target,omitempty"`
	Action     string  `json:"action,omitempty"`
	Source     Source  `json:"source,omitempty"`
	Confidence float64 `json:"confidence"`

	// Classifications holds the namespace-filtered ranking used for the decision.
	Classifications Classifications `json:"classifications,omitempty"`
	// Sentiment is the tone of the message, when an analyzer is configured.
	Sentiment *Sentiment `json:"sentiment,omitempty"`

	// Executed is false when the action name had no binding.
	Executed bool `json:"executed"`
	Output   any  `json:"output,omitempty"`

	// Context is the sender's current address after the dispatch.
	Context string `json:"context,omitempty"`

	// Dropped is true when a runtime error prevented resolution.
	Dropped bool   `json:"dropped,omitempty"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// SetErr records err on the result, keeping the JSON view in sync.
func (r *Result) SetErr(err error) {
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}
