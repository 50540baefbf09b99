package automaton

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/aretw0/powerset/pkg/domain"
)

// reachable returns the states reachable from the initial state through any
// sequence of symbol or epsilon transitions, found breadth-first.
func (m *machine) reachable() *bitset.BitSet {
	symbols := m.alphabet.WithEpsilon()
	start := m.index[m.initial]

	seen := bitset.New(uint(len(m.states)))
	seen.Set(start)
	frontier := []uint{start}

	for len(frontier) > 0 {
		var next []uint
		for _, i := range frontier {
			for _, sym := range symbols {
				for _, dest := range m.delta.At(m.states[i], sym) {
					j := m.index[dest]
					if !seen.Test(j) {
						seen.Set(j)
						next = append(next, j)
					}
				}
			}
		}
		frontier = next
	}
	return seen
}

// prune keeps only reachable states, the transitions between them and the
// reachable accepting states. The initial state is always kept.
func (m *machine) prune() *machine {
	keep := m.reachable()

	var transitions []domain.Transition
	for _, t := range m.delta.Transitions() {
		if keep.Test(m.index[t.From]) && keep.Test(m.index[t.To]) {
			transitions = append(transitions, t)
		}
	}

	return assemble(m.members(keep), m.alphabet, transitions, m.initial, m.members(keep.Intersection(m.accepting)))
}

// Reachable returns the states reachable from the initial state, sorted.
func (m *machine) Reachable() []domain.State {
	return m.members(m.reachable())
}
