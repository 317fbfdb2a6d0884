package sentiment_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/sentiment"
)

func TestAnalyze(t *testing.T) {
	a := sentiment.New()

	tests := []struct {
		name string
		text string
		want domain.Sentiment
	}{
		{"empty", "", domain.Sentiment{}},
		{"neutral", "one large pizza", domain.Sentiment{}},
		{
			name: "positive",
			text: "This pizza is AMAZING, thanks!",
			want: domain.Sentiment{Score: 6, Comparative: 1.2, Positive: []string{"amazing", "thanks"}},
		},
		{
			name: "negative",
			text: "worst service, I hate it",
			want: domain.Sentiment{Score: -6, Comparative: -1.2, Negative: []string{"worst", "hate"}},
		},
		{
			name: "negated",
			text: "I don't like it",
			want: domain.Sentiment{Score: -2, Comparative: -0.5, Negative: []string{"like"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Analyze(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestWithLexicon(t *testing.T) {
	a := sentiment.New(sentiment.WithLexicon(map[string]int{"Margherita": 2, "bad": 0}))

	got := a.Analyze("margherita is not bad")
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, []string{"margherita"}, got.Positive)
	assert.Empty(t, got.Negative)

	assert.Equal(t, -3, sentiment.New().Analyze("bad").Score, "options do not leak into other analyzers")
}

func TestAnalyze_Concurrent(t *testing.T) {
	a := sentiment.New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 3, a.Analyze("good").Score)
		}()
	}
	wg.Wait()
}
