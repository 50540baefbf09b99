package automaton

import (
	"errors"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/aretw0/powerset/pkg/domain"
)

// Machine is the read-only view shared by NFA and DFA.
type Machine interface {
	States() []domain.State
	Alphabet() domain.Alphabet
	Transitions() []domain.Transition
	Initial() domain.State
	Accepting() []domain.State
	IsAccepting(s domain.State) bool
	At(s domain.State, sym domain.Symbol) []domain.State
}

// machine holds the parts common to both automaton kinds.
// States are kept sorted with domain.Compare so that bit i of a state set
// always denotes states[i]; iterating a set therefore yields sorted members.
type machine struct {
	states    []domain.State
	index     map[domain.State]uint
	alphabet  domain.Alphabet
	delta     *domain.Relation
	initial   domain.State
	accepting *bitset.BitSet
}

// newMachine validates the parts and builds a machine that owns copies of them.
func newMachine(states []domain.State, alphabet domain.Alphabet, transitions []domain.Transition, initial domain.State, accepting []domain.State) (*machine, error) {
	m := assemble(states, alphabet, transitions, initial, nil)

	var errs []error
	if _, ok := m.index[initial]; !ok {
		errs = append(errs, &domain.ReferenceError{Where: "initial", Kind: "state", Ref: initial.Encode()})
	}
	for _, s := range accepting {
		i, ok := m.index[s]
		if !ok {
			errs = append(errs, &domain.ReferenceError{Where: "accepting", Kind: "state", Ref: s.Encode()})
			continue
		}
		m.accepting.Set(i)
	}
	declared := make(map[domain.State]struct{}, len(m.states))
	for _, s := range m.states {
		declared[s] = struct{}{}
	}
	if err := m.delta.Verify(declared, alphabet); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// assemble builds a machine without validation. Callers must guarantee the
// invariants, which holds for every automaton derived from a valid one.
func assemble(states []domain.State, alphabet domain.Alphabet, transitions []domain.Transition, initial domain.State, accepting []domain.State) *machine {
	sorted := slices.Clone(states)
	domain.SortStates(sorted)
	sorted = slices.Compact(sorted)

	m := &machine{
		states:    sorted,
		index:     make(map[domain.State]uint, len(sorted)),
		alphabet:  alphabet,
		delta:     domain.NewRelation(transitions),
		initial:   initial,
		accepting: bitset.New(uint(len(sorted))),
	}
	for i, s := range sorted {
		m.index[s] = uint(i)
	}
	for _, s := range accepting {
		if i, ok := m.index[s]; ok {
			m.accepting.Set(i)
		}
	}
	return m
}

// States returns the declared states in sorted order.
func (m *machine) States() []domain.State {
	return slices.Clone(m.states)
}

// NumStates returns the number of declared states.
func (m *machine) NumStates() int {
	return len(m.states)
}

// Alphabet returns the input alphabet. Epsilon is never part of it.
func (m *machine) Alphabet() domain.Alphabet {
	return m.alphabet
}

// Transitions returns every transition in sorted order.
func (m *machine) Transitions() []domain.Transition {
	return m.delta.Transitions()
}

// Initial returns the initial state.
func (m *machine) Initial() domain.State {
	return m.initial
}

// Accepting returns the accepting states in sorted order.
func (m *machine) Accepting() []domain.State {
	return m.members(m.accepting)
}

// IsAccepting reports whether s is an accepting state.
func (m *machine) IsAccepting(s domain.State) bool {
	i, ok := m.index[s]
	return ok && m.accepting.Test(i)
}

// At returns the sorted destinations of s on sym (which may be domain.Epsilon).
func (m *machine) At(s domain.State, sym domain.Symbol) []domain.State {
	return m.delta.At(s, sym)
}

// Has reports whether s is a declared state.
func (m *machine) Has(s domain.State) bool {
	_, ok := m.index[s]
	return ok
}

// set converts states to a bitset, ignoring undeclared ones.
func (m *machine) set(states ...domain.State) *bitset.BitSet {
	b := bitset.New(uint(len(m.states)))
	for _, s := range states {
		if i, ok := m.index[s]; ok {
			b.Set(i)
		}
	}
	return b
}

// members lists the states of a bitset in sorted order.
func (m *machine) members(b *bitset.BitSet) []domain.State {
	out := make([]domain.State, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, m.states[i])
	}
	return out
}
