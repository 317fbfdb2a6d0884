package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/aretw0/switchboard/pkg/runner"
)

// DefaultWordWrap is the column at which replies are wrapped.
const DefaultWordWrap = 80

// NewRenderer returns a markdown renderer for action replies.
// The style follows the terminal background reported by termenv.
func NewRenderer() runner.ContentRenderer {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}
	return NewRendererWithStyle(style)
}

// NewRendererWithStyle uses a named glamour style ("dark", "light", "notty", ...).
// If glamour cannot build the style, replies are passed through unchanged.
func NewRendererWithStyle(style string) runner.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
