package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/aretw0/switchboard/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []domain.IntentNode
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Unknown Node Shape",
			nodes: []domain.IntentNode{
				{Address: "unknown"},
			},
			contains: []string{`unknown(("unknown"))`},
		},
		{
			name: "Literal Node Shape",
			nodes: []domain.IntentNode{
				{Address: "menu", Literal: `/menu "all"`},
			},
			contains: []string{`menu[/"menu <br/> /menu 'all'"/]`},
		},
		{
			name: "Alias Edge",
			nodes: []domain.IntentNode{
				{Address: "order.cancel", Call: "cancel"},
				{Address: "cancel"},
			},
			contains: []string{
				`order_cancel[["order.cancel"]]`,
				"order_cancel -. call .-> cancel",
			},
		},
		{
			name: "Children And Policy",
			nodes: []domain.IntentNode{
				{Address: "order", Default: domain.PolicyRoot, Children: []string{"order.item", "order.size"}},
				{Address: "order.item"},
				{Address: "order.size"},
			},
			contains: []string{
				`order["order <br/> default: root"]`,
				"order --> order_item",
				"order --> order_size",
			},
		},
		{
			name: "Overlay",
			nodes: []domain.IntentNode{
				{Address: "order", Children: []string{"order.item"}},
				{Address: "order.item"},
			},
			overlay: &graph.GraphOverlay{Previous: "order", Current: "order.item"},
			contains: []string{
				"class order previous;",
				"class order_item current;",
			},
		},
		{
			name:     "No Overlay",
			nodes:    []domain.IntentNode{{Address: "greet"}},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}
