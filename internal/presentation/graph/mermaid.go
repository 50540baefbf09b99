package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	Visited []domain.State
	Current *domain.State
}

// TraceOverlay highlights the states of a DFA run, the last one as current.
func TraceOverlay(trace automaton.Trace) *GraphOverlay {
	last := trace.Last()
	return &GraphOverlay{Visited: trace.States, Current: &last}
}

// GenerateMermaid produces a Mermaid flowchart for m.
// It applies semantic styling:
// - Initial: entry arrow from a hidden start point
// - Accepting: (((Double Circle)))
// - Dead: ((Circle)) styled grey
// - Default: ((Circle))
// Parallel edges are merged into one arrow labelled with every symbol.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(m automaton.Machine, overlay *GraphOverlay) string {
	states := m.States()
	ids := make(map[domain.State]string, len(states))
	for i, s := range states {
		ids[s] = fmt.Sprintf("q%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    start_point[ ]:::hidden\n")
	fmt.Fprintf(&sb, "    start_point --> %s\n", ids[m.Initial()])

	for _, s := range states {
		opener, closer := "((", "))"
		if m.IsAccepting(s) {
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", ids[s], opener, escapeLabel(s.Encode()), closer)
	}

	for _, e := range mergeEdges(m.Transitions()) {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", ids[e.from], escapeLabel(e.label()), ids[e.to])
	}

	sb.WriteString("\n    classDef hidden fill:none,stroke:none;\n")
	if _, ok := ids[domain.Dead]; ok {
		sb.WriteString("    classDef dead fill:#eeeeee,stroke:#9e9e9e,color:#757575;\n")
		fmt.Fprintf(&sb, "    class %s dead;\n", ids[domain.Dead])
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, s := range overlay.Visited {
			id, ok := ids[s]
			if ok && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != nil {
			if id, ok := ids[*overlay.Current]; ok {
				fmt.Fprintf(&sb, "    class %s current;\n", id)
			}
		}
	}

	return sb.String()
}

type edge struct {
	from, to domain.State
	symbols  []domain.Symbol
}

func (e edge) label() string {
	parts := make([]string, len(e.symbols))
	for i, s := range e.symbols {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// mergeEdges groups sorted transitions by endpoint pair, keeping first-seen order.
func mergeEdges(transitions []domain.Transition) []edge {
	type key struct{ from, to domain.State }
	index := make(map[key]int)
	var edges []edge
	for _, t := range transitions {
		k := key{t.From, t.To}
		i, ok := index[k]
		if !ok {
			i = len(edges)
			index[k] = i
			edges = append(edges, edge{from: t.From, to: t.To})
		}
		edges[i].symbols = append(edges[i].symbols, t.Symbol)
	}
	return edges
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
