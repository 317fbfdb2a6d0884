package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressHelpers(t *testing.T) {
	assert.Equal(t, "order", Join("", "order"))
	assert.Equal(t, "order.item", Join("order", "item"))

	assert.Equal(t, "item", LocalSegment("order.item"))
	assert.Equal(t, "order", LocalSegment("order"))

	assert.Equal(t, "order", Parent("order.item"))
	assert.Equal(t, "", Parent("order"))

	assert.True(t, IsTopLevel("greet"))
	assert.False(t, IsTopLevel("order.item"))
}

func TestIsDirectChild(t *testing.T) {
	tests := []struct {
		parent, child string
		want          bool
	}{
		{"order", "order.item", true},
		{"order", "order.item.size", false},
		{"order", "orders.item", false},
		{"order", "order", false},
		{"order.item", "order.item.size", true},
	}
	for _, tt := range tests {
		t.Run(tt.parent+"->"+tt.child, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDirectChild(tt.parent, tt.child))
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	assert.True(t, DefaultPolicy("").Valid())
	assert.True(t, PolicyRetry.Valid())
	assert.False(t, DefaultPolicy("later").Valid())
	assert.Equal(t, PolicySystem, DefaultPolicy("").OrDefault())
	assert.Equal(t, PolicyRoot, PolicyRoot.OrDefault())
}

func TestDefinitionCount(t *testing.T) {
	def := Definition{
		Address: "order",
		Children: []Definition{
			{Address: "item", Children: []Definition{{Address: "size"}}},
			{Address: "drink"},
		},
	}
	assert.Equal(t, 4, def.Count())
}

func TestClassificationsSortAndFilter(t *testing.T) {
	cs := Classifications{
		{Label: "b", Confidence: 0.5},
		{Label: "order.item", Confidence: 0.9},
		{Label: "a", Confidence: 0.5},
	}
	cs.Sort()
	assert.Equal(t, []string{"order.item", "a", "b"}, []string{cs[0].Label, cs[1].Label, cs[2].Label})

	top := cs.Filter(IsTopLevel)
	best, ok := top.Best()
	assert.True(t, ok)
	assert.Equal(t, "a", best.Label)

	_, ok = Classifications{}.Best()
	assert.False(t, ok)
}
