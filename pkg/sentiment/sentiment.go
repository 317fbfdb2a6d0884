// Package sentiment scores the tone of a message with a word lexicon.
//
// Every token found in the lexicon adds its valence (-5 to 5) to the score. A token
// right after a negator ("not", "never", "dont", ...) counts with the opposite sign.
// The embedded lexicon covers common English words; WithLexicon adds or overrides
// entries.
package sentiment

import (
	"bufio"
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/classifier"
	"github.com/aretw0/switchboard/pkg/domain"
)

//go:embed lexicon.tsv
var lexiconFile string

var builtin = sync.OnceValue(func() map[string]int {
	return parseLexicon(lexiconFile)
})

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nobody": {}, "nothing": {},
	"neither": {}, "nor": {}, "without": {}, "cannot": {}, "aint": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "wasnt": {}, "arent": {},
	"werent": {}, "cant": {}, "wont": {}, "wouldnt": {}, "shouldnt": {}, "couldnt": {},
}

var apostrophes = strings.NewReplacer("'", "", "’", "")

// Analyzer implements ports.SentimentAnalyzer. It is read-only after New.
type Analyzer struct {
	lexicon map[string]int
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithLexicon adds words to the lexicon, replacing built-in scores.
// Words are normalized like message text.
func WithLexicon(words map[string]int) Option {
	return func(a *Analyzer) {
		for word, score := range words {
			for _, tok := range tokens(word) {
				a.lexicon[tok] = score
			}
		}
	}
}

// New creates an analyzer over the embedded lexicon.
func New(opts ...Option) *Analyzer {
	base := builtin()
	a := &Analyzer{lexicon: make(map[string]int, len(base))}
	for word, score := range base {
		a.lexicon[word] = score
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores text. Empty text scores zero.
func (a *Analyzer) Analyze(text string) domain.Sentiment {
	var out domain.Sentiment
	toks := tokens(text)
	for i, tok := range toks {
		score, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if _, negated := negators[toks[i-1]]; negated {
				score = -score
			}
		}
		out.Score += score
		switch {
		case score > 0:
			out.Positive = append(out.Positive, tok)
		case score < 0:
			out.Negative = append(out.Negative, tok)
		}
	}
	if len(toks) > 0 {
		out.Comparative = float64(out.Score) / float64(len(toks))
	}
	return out
}

func tokens(text string) []string {
	return classifier.Tokenize(apostrophes.Replace(text))
}

func parseLexicon(data string) map[string]int {
	lexicon := make(map[string]int)
	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		word, value, ok := strings.Cut(sc.Text(), "\t")
		if !ok {
			continue
		}
		score, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		lexicon[strings.TrimSpace(word)] = score
	}
	return lexicon
}
