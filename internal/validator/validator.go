// Package validator lints automata for structural problems.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// Kind classifies a Finding.
type Kind string

const (
	// Unreachable states cannot be reached from the initial state.
	Unreachable Kind = "unreachable"
	// Trap states are non-accepting states with no path to an accepting state.
	Trap Kind = "trap"
	// Nondeterministic pairs have more than one destination.
	Nondeterministic Kind = "nondeterministic"
	// Epsilon marks a state with epsilon transitions.
	Epsilon Kind = "epsilon"
	// Partial pairs have no destination at all.
	Partial Kind = "partial"
)

// Finding is one lint result.
type Finding struct {
	Kind   Kind
	State  domain.State
	Symbol domain.Symbol // Zero for state level findings
}

func (f Finding) String() string {
	switch f.Kind {
	case Unreachable:
		return fmt.Sprintf("state %s is unreachable from the initial state", f.State)
	case Trap:
		return fmt.Sprintf("state %s cannot reach an accepting state", f.State)
	case Epsilon:
		return fmt.Sprintf("state %s has epsilon transitions", f.State)
	case Nondeterministic:
		return fmt.Sprintf("state %s has several transitions on %q", f.State, string(f.Symbol))
	case Partial:
		return fmt.Sprintf("state %s has no transition on %q", f.State, string(f.Symbol))
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.State)
}

// Report collects the findings of Lint in a stable order.
type Report struct {
	Findings []Finding
}

// Count returns the number of findings of the given kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// IsDFA reports whether the machine is total, deterministic and epsilon free.
func (r Report) IsDFA() bool {
	return r.Count(Nondeterministic) == 0 && r.Count(Epsilon) == 0 && r.Count(Partial) == 0
}

func (r Report) String() string {
	if len(r.Findings) == 0 {
		return "no findings"
	}
	lines := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		lines[i] = "- " + f.String()
	}
	return fmt.Sprintf("found %d findings:\n%s", len(r.Findings), strings.Join(lines, "\n"))
}

// Lint crawls m from its initial state and reports unreachable and trap
// states, then checks every (state, symbol) pair against the DFA rules.
func Lint(m automaton.Machine) Report {
	var report Report
	states := m.States()
	symbols := m.Alphabet().WithEpsilon()

	visited := map[domain.State]bool{m.Initial(): true}
	queue := []domain.State{m.Initial()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, sym := range symbols {
			for _, next := range m.At(current, sym) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	for _, s := range states {
		if !visited[s] {
			report.Findings = append(report.Findings, Finding{Kind: Unreachable, State: s})
		}
	}

	live := coReachable(m)
	for _, s := range states {
		if !live[s] {
			report.Findings = append(report.Findings, Finding{Kind: Trap, State: s})
		}
	}

	for _, s := range states {
		if len(m.At(s, domain.Epsilon)) > 0 {
			report.Findings = append(report.Findings, Finding{Kind: Epsilon, State: s})
		}
		for _, sym := range m.Alphabet().Symbols() {
			switch n := len(m.At(s, sym)); {
			case n == 0:
				report.Findings = append(report.Findings, Finding{Kind: Partial, State: s, Symbol: sym})
			case n > 1:
				report.Findings = append(report.Findings, Finding{Kind: Nondeterministic, State: s, Symbol: sym})
			}
		}
	}
	return report
}

// coReachable returns the states with a path to an accepting state,
// found by walking the transitions backwards from the accepting set.
func coReachable(m automaton.Machine) map[domain.State]bool {
	reverse := make(map[domain.State][]domain.State)
	for _, t := range m.Transitions() {
		reverse[t.To] = append(reverse[t.To], t.From)
	}

	live := make(map[domain.State]bool)
	var queue []domain.State
	for _, s := range m.Accepting() {
		live[s] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[current] {
			if !live[prev] {
				live[prev] = true
				queue = append(queue, prev)
			}
		}
	}
	return live
}
