package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize normalizes text (decomposes, drops combining marks, folds case) and
// splits it into letter/number runs.
func Tokenize(text string) []string {
	// Transformers and casers are stateful, so they are built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	folded = cases.Fold().String(folded)

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Features returns the distinct unigram and bigram features of text, in order of appearance.
func Features(text string) []string {
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens)*2)
	features := make([]string, 0, len(tokens)*2)

	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		features = append(features, f)
	}

	for i, tok := range tokens {
		add(tok)
		if i > 0 {
			add(tokens[i-1] + " " + tok)
		}
	}
	return features
}
