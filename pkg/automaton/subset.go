package automaton

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/aretw0/powerset/pkg/domain"
)

// toDFA runs the subset construction.
//
// Composite states are discovered breadth-first from the closure of the
// initial state. Their labels come from member bits, which are ordered like
// the sorted state list, so two equal sets always share one label and one
// DFA state. Moves to the empty set go to domain.Dead, which is always
// present, self-loops on every symbol and never accepts.
func (m *machine) toDFA() *machine {
	symbols := m.alphabet.Symbols()

	start := m.closure(m.set(m.initial))
	initial := m.composite(start)

	var (
		states      []domain.State
		transitions []domain.Transition
		accepting   []domain.State
	)

	seen := map[domain.State]bool{initial: true}
	processed := make(map[domain.State]bool)
	queue := []*bitset.BitSet{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		from := m.composite(current)
		if processed[from] {
			continue
		}
		processed[from] = true
		states = append(states, from)

		if current.IntersectionCardinality(m.accepting) > 0 {
			accepting = append(accepting, from)
		}

		for _, sym := range symbols {
			target := m.move(current, sym)
			to := domain.Dead
			if target.Any() {
				to = m.composite(target)
				if !seen[to] {
					seen[to] = true
					queue = append(queue, target)
				}
			}
			transitions = append(transitions, domain.Transition{From: from, Symbol: sym, To: to})
		}
	}

	for _, sym := range symbols {
		transitions = append(transitions, domain.Transition{From: domain.Dead, Symbol: sym, To: domain.Dead})
	}
	states = append(states, domain.Dead)

	return assemble(states, m.alphabet, transitions, initial, accepting)
}

// composite names a non-empty state set.
func (m *machine) composite(set *bitset.BitSet) domain.State {
	if !set.Any() {
		return domain.Dead
	}
	return domain.Composite(domain.Label(m.members(set)))
}
