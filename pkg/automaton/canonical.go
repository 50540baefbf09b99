package automaton

import (
	"github.com/aretw0/powerset/pkg/domain"
)

// canonical renumbers states in depth-first discovery order from the
// initial state. Symbols are explored epsilon first, then in alphabet order,
// and destinations in sorted order. Each state gets the next integer the
// first time it is seen; undiscovered states (and their accepting marks)
// are dropped.
func (m *machine) canonical() *machine {
	symbols := m.alphabet.WithEpsilon()

	labels := map[domain.State]domain.State{m.initial: domain.Atomic(0)}
	states := []domain.State{domain.Atomic(0)}
	stack := []domain.State{m.initial}

	var transitions []domain.Transition
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, sym := range symbols {
			for _, next := range m.delta.At(top, sym) {
				label, ok := labels[next]
				if !ok {
					label = domain.Atomic(len(labels))
					labels[next] = label
					states = append(states, label)
					stack = append(stack, next)
				}
				transitions = append(transitions, domain.Transition{From: labels[top], Symbol: sym, To: label})
			}
		}
	}

	var accepting []domain.State
	for _, s := range m.Accepting() {
		if label, ok := labels[s]; ok {
			accepting = append(accepting, label)
		}
	}

	return assemble(states, m.alphabet, transitions, domain.Atomic(0), accepting)
}

// sameShape reports whether two machines have identical canonical forms.
func sameShape(a, b *machine) bool {
	ca, cb := a.canonical(), b.canonical()
	if ca.alphabet.Encode() != cb.alphabet.Encode() {
		return false
	}
	if ca.delta.Encode() != cb.delta.Encode() {
		return false
	}
	return domain.EncodeStates(ca.Accepting()) == domain.EncodeStates(cb.Accepting()) &&
		len(ca.states) == len(cb.states)
}
