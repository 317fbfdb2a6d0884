package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"Simple", "Hello World", []string{"hello", "world"}},
		{"Punctuation", "hi! how's it going?", []string{"hi", "how", "s", "it", "going"}},
		{"Diacritics", "Olá, Ação", []string{"ola", "acao"}},
		{"Numbers", "order 2 pizzas", []string{"order", "2", "pizzas"}},
		{"Empty", "  ...  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeatures(t *testing.T) {
	assert.Equal(t,
		[]string{"order", "a", "order a", "pizza", "a pizza"},
		Features("Order a pizza"),
	)
	assert.Equal(t, []string{"hi", "hi hi"}, Features("hi hi hi"), "duplicate features are collapsed")
}
