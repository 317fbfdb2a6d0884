package domain

import "sort"

// Classification is a single classifier verdict.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifications is ordered by descending confidence.
type Classifications []Classification

// Best returns the first classification, if any.
func (c Classifications) Best() (Classification, bool) {
	if len(c) == 0 {
		return Classification{}, false
	}
	return c[0], true
}

// Filter returns the classifications whose label satisfies keep, preserving order.
func (c Classifications) Filter(keep func(label string) bool) Classifications {
	out := make(Classifications, 0, len(c))
	for _, cl := range c {
		if keep(cl.Label) {
			out = append(out, cl)
		}
	}
	return out
}

// Sort orders by descending confidence, then by label.
func (c Classifications) Sort() {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Confidence != c[j].Confidence {
			return c[i].Confidence > c[j].Confidence
		}
		return c[i].Label < c[j].Label
	})
}
