package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// Describe renders the machine as a markdown document listing its five
// components in set notation: K (states), Σ (alphabet), δ (transitions),
// s (initial state) and A (accepting states).
func Describe(m automaton.Machine) string {
	kind := "NFA"
	if _, ok := m.(*automaton.DFA); ok {
		kind = "DFA"
	}

	transitions := m.Transitions()
	edges := make([]string, len(transitions))
	for i, t := range transitions {
		edges[i] = fmt.Sprintf("(%s, %s, %s)", t.From, t.Symbol, t.To)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", kind)
	fmt.Fprintf(&sb, "- K = %s\n", code(stateSet(m.States())))
	fmt.Fprintf(&sb, "- Σ = %s\n", code(m.Alphabet().String()))
	fmt.Fprintf(&sb, "- δ = %s\n", code("{"+strings.Join(edges, ", ")+"}"))
	fmt.Fprintf(&sb, "- s = %s\n", code(m.Initial().Encode()))
	fmt.Fprintf(&sb, "- A = %s\n", code(stateSet(m.Accepting())))
	return sb.String()
}

// WriteTable writes the transition relation as a From/Symbol/To table.
func WriteTable(w io.Writer, m automaton.Machine) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"From", "Symbol", "To"})
	for _, t := range m.Transitions() {
		from := t.From.Encode()
		if t.From == m.Initial() {
			from = "→ " + from
		}
		to := t.To.Encode()
		if m.IsAccepting(t.To) {
			to += " *"
		}
		if err := table.Append([]string{from, t.Symbol.String(), to}); err != nil {
			return err
		}
	}
	return table.Render()
}

func stateSet(states []domain.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = s.Encode()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// code wraps s in an inline code span so symbols such as * or _ are not
// read as markdown.
func code(s string) string {
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}
