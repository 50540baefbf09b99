package automaton

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/aretw0/powerset/pkg/domain"
)

// closure returns the smallest superset of seed closed under epsilon moves.
// A state is expanded at most once, so epsilon cycles terminate.
func (m *machine) closure(seed *bitset.BitSet) *bitset.BitSet {
	result := seed.Clone()
	todo := make([]uint, 0, seed.Count())
	for i, ok := seed.NextSet(0); ok; i, ok = seed.NextSet(i + 1) {
		todo = append(todo, i)
	}

	for len(todo) > 0 {
		i := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		for _, next := range m.delta.At(m.states[i], domain.Epsilon) {
			j := m.index[next]
			if !result.Test(j) {
				result.Set(j)
				todo = append(todo, j)
			}
		}
	}
	return result
}

// move returns the closure of every state reachable from set on sym.
func (m *machine) move(set *bitset.BitSet, sym domain.Symbol) *bitset.BitSet {
	target := bitset.New(uint(len(m.states)))
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		for _, next := range m.delta.At(m.states[i], sym) {
			target.Set(m.index[next])
		}
	}
	return m.closure(target)
}

// EpsilonClosure returns, in sorted order, every state reachable from the
// given states through zero or more epsilon transitions.
// Undeclared states are ignored.
func (m *machine) EpsilonClosure(states ...domain.State) []domain.State {
	return m.members(m.closure(m.set(states...)))
}
