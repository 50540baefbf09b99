package automaton

import (
	"errors"

	"github.com/aretw0/powerset/pkg/domain"
)

// DFA is a deterministic finite automaton: every (state, symbol) pair has
// exactly one destination and there are no epsilon transitions.
// It is immutable and safe for concurrent use.
type DFA struct {
	*machine
}

var _ Machine = (*DFA)(nil)

// Trace is the path followed by a DFA over an input.
type Trace struct {
	States   []domain.State // Initial state followed by one state per consumed symbol
	Accepted bool
}

// Last returns the state the run ended in.
func (t Trace) Last() domain.State {
	return t.States[len(t.States)-1]
}

// NewDFA validates the parts like New and additionally requires a total,
// deterministic transition function without epsilon moves.
func NewDFA(states []domain.State, alphabet domain.Alphabet, transitions []domain.Transition, initial domain.State, accepting []domain.State) (*DFA, error) {
	m, err := newMachine(states, alphabet, transitions, initial, accepting)
	if err != nil {
		return nil, err
	}
	if err := checkDeterministic(m); err != nil {
		return nil, err
	}
	return &DFA{machine: m}, nil
}

// AsDFA returns n viewed as a DFA when it satisfies the DFA invariants.
func AsDFA(n *NFA) (*DFA, error) {
	if err := checkDeterministic(n.machine); err != nil {
		return nil, err
	}
	return &DFA{machine: n.machine}, nil
}

func checkDeterministic(m *machine) error {
	var errs []error
	for _, s := range m.states {
		if m.delta.HasEdges(s, domain.Epsilon) {
			errs = append(errs, &domain.DeterminismError{State: s, Symbol: domain.Epsilon})
		}
		for _, sym := range m.alphabet.Symbols() {
			if n := len(m.delta.At(s, sym)); n != 1 {
				errs = append(errs, &domain.DeterminismError{State: s, Symbol: sym, Count: n})
			}
		}
	}
	return errors.Join(errs...)
}

// NFA returns the automaton viewed as an NFA.
func (d *DFA) NFA() *NFA {
	return &NFA{machine: d.machine}
}

// Next returns the unique destination of s on sym.
func (d *DFA) Next(s domain.State, sym domain.Symbol) (domain.State, error) {
	if !d.alphabet.Contains(sym) {
		return domain.State{}, &domain.SymbolError{Symbol: sym, Reason: "not in alphabet"}
	}
	dests := d.delta.At(s, sym)
	if len(dests) != 1 {
		return domain.State{}, &domain.DeterminismError{State: s, Symbol: sym, Count: len(dests)}
	}
	return dests[0], nil
}

// Run feeds input one rune at a time and records every state visited.
// A rune outside the alphabet fails with domain.ErrInvalidAlphabetSymbol.
func (d *DFA) Run(input string) (Trace, error) {
	current := d.initial
	trace := Trace{States: []domain.State{current}}
	for _, r := range input {
		next, err := d.Next(current, domain.Symbol(r))
		if err != nil {
			return Trace{}, err
		}
		current = next
		trace.States = append(trace.States, current)
	}
	trace.Accepted = d.IsAccepting(current)
	return trace, nil
}

// Accepts reports whether input ends in an accepting state.
func (d *DFA) Accepts(input string) (bool, error) {
	trace, err := d.Run(input)
	if err != nil {
		return false, err
	}
	return trace.Accepted, nil
}

// ToDFA on a DFA runs the subset construction again; the result names each
// state by the singleton set containing it.
func (d *DFA) ToDFA() *DFA {
	return &DFA{machine: d.toDFA()}
}

// RemoveUnreachable returns an equivalent DFA without unreachable states.
// The reachable part of a total function is total, so the result is a DFA.
func (d *DFA) RemoveUnreachable() *DFA {
	return &DFA{machine: d.prune()}
}

// Canonical returns a copy renumbered 0, 1, 2, ... in depth-first discovery order.
func (d *DFA) Canonical() *DFA {
	return &DFA{machine: d.canonical()}
}

// SameShape reports whether both automata have the same canonical form.
func (d *DFA) SameShape(other *DFA) bool {
	return sameShape(d.machine, other.machine)
}
