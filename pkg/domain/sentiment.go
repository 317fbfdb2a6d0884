package domain

// Sentiment is the lexicon score of a message.
// Score sums the word valences; Comparative divides it by the number of tokens.
type Sentiment struct {
	Score       int      `json:"score"`
	Comparative float64  `json:"comparative"`
	Positive    []string `json:"positive,omitempty"`
	Negative    []string `json:"negative,omitempty"`
}
