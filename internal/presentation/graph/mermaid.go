package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// GraphOverlay contains conversation state to highlight on the graph.
type GraphOverlay struct {
	Previous string
	Current  string
}

// GenerateMermaid produces a Mermaid flowchart of the intent tree.
// Shapes:
// - unknown: ((Circle))
// - Alias (call): [[Subroutine]]
// - Literal (text): [/Parallelogram/]
// - Default: [Rectangle]
// Parent/child edges are solid, alias edges dotted. A node that declares a
// default policy gets it appended to its label.
func GenerateMermaid(nodes []domain.IntentNode, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.Address)

		opener, closer := "[", "]"
		switch {
		case node.Address == domain.UnknownAddress:
			opener, closer = "((", "))"
		case node.IsAlias():
			opener, closer = "[[", "]]"
		case node.Literal != "":
			opener, closer = "[/", "/]"
		}

		label := node.Address
		if node.Literal != "" {
			label += " <br/> " + escapeLabel(node.Literal)
		}
		if node.Default != "" {
			label += fmt.Sprintf(" <br/> default: %s", node.Default)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, child := range node.Children {
			fmt.Fprintf(&sb, "    %s --> %s\n", safeID, sanitizeMermaidID(child))
		}
		if node.IsAlias() {
			fmt.Fprintf(&sb, "    %s -. call .-> %s\n", safeID, sanitizeMermaidID(node.Call))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef previous fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if overlay.Previous != "" && overlay.Previous != overlay.Current {
			fmt.Fprintf(&sb, "    class %s previous;\n", sanitizeMermaidID(overlay.Previous))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
