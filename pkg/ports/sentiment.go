package ports

import "github.com/aretw0/switchboard/pkg/domain"

// SentimentAnalyzer scores the tone of a message. It must be safe for concurrent use.
type SentimentAnalyzer interface {
	Analyze(text string) domain.Sentiment
}
