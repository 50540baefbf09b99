package automaton

import (
	"github.com/aretw0/powerset/pkg/domain"
)

// NFA is a non-deterministic finite automaton with optional epsilon transitions.
// It is immutable and safe for concurrent use.
type NFA struct {
	*machine
}

var _ Machine = (*NFA)(nil)

// New validates the parts and returns an NFA owning copies of them.
//
// It fails with domain.ErrUndefinedReference when the initial state or an
// accepting state is not declared, or when a transition uses an undeclared
// state or a symbol outside alphabet (Epsilon is always allowed).
// Every violation is reported, joined with errors.Join.
func New(states []domain.State, alphabet domain.Alphabet, transitions []domain.Transition, initial domain.State, accepting []domain.State) (*NFA, error) {
	m, err := newMachine(states, alphabet, transitions, initial, accepting)
	if err != nil {
		return nil, err
	}
	return &NFA{machine: m}, nil
}

// ToDFA converts the automaton with the subset construction.
// The result accepts the same language, is total over the alphabet and
// contains domain.Dead even when it is unreachable.
func (n *NFA) ToDFA() *DFA {
	return &DFA{machine: n.toDFA()}
}

// RemoveUnreachable returns an equivalent NFA without unreachable states.
func (n *NFA) RemoveUnreachable() *NFA {
	return &NFA{machine: n.prune()}
}

// Canonical returns a copy renumbered 0, 1, 2, ... in depth-first discovery order.
func (n *NFA) Canonical() *NFA {
	return &NFA{machine: n.canonical()}
}

// SameShape reports whether both automata have the same canonical form.
func (n *NFA) SameShape(other *NFA) bool {
	return sameShape(n.machine, other.machine)
}

// Accepts reports whether some path from the initial state, with free
// epsilon moves, consumes input and ends in an accepting state.
// A rune outside the alphabet fails with domain.ErrInvalidAlphabetSymbol.
func (n *NFA) Accepts(input string) (bool, error) {
	current := n.closure(n.set(n.initial))
	for _, r := range input {
		sym := domain.Symbol(r)
		if !n.alphabet.Contains(sym) {
			return false, &domain.SymbolError{Symbol: sym, Reason: "not in alphabet"}
		}
		current = n.move(current, sym)
	}
	return current.IntersectionCardinality(n.accepting) > 0, nil
}
