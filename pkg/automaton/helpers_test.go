package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

const eps = domain.Epsilon

func ids(xs ...int) []domain.State {
	out := make([]domain.State, len(xs))
	for i, x := range xs {
		out[i] = domain.Atomic(x)
	}
	return out
}

func edge(from int, sym domain.Symbol, to int) domain.Transition {
	return domain.Transition{From: domain.Atomic(from), Symbol: sym, To: domain.Atomic(to)}
}

func mustNFA(t *testing.T, states []int, alphabet string, edges []domain.Transition, initial int, accepting ...int) *automaton.NFA {
	t.Helper()
	a, err := domain.AlphabetOf(alphabet)
	require.NoError(t, err)
	n, err := automaton.New(ids(states...), a, edges, domain.Atomic(initial), ids(accepting...))
	require.NoError(t, err)
	return n
}

// twoState is already deterministic and accepts strings ending in b.
func twoState(t *testing.T) *automaton.NFA {
	return mustNFA(t, []int{0, 1}, "ab", []domain.Transition{
		edge(0, 'a', 0), edge(0, 'b', 1), edge(1, 'a', 0), edge(1, 'b', 1),
	}, 0, 1)
}

// epsilonStep accepts exactly "a" through an epsilon move.
func epsilonStep(t *testing.T) *automaton.NFA {
	return mustNFA(t, []int{0, 1, 2}, "ab", []domain.Transition{
		edge(0, eps, 1), edge(1, 'a', 2),
	}, 0, 2)
}

// epsilonCycle has an epsilon loop between 0 and 1 and accepts a+.
func epsilonCycle(t *testing.T) *automaton.NFA {
	return mustNFA(t, []int{0, 1, 2}, "a", []domain.Transition{
		edge(0, eps, 1), edge(1, eps, 0), edge(1, 'a', 2), edge(2, eps, 0),
	}, 0, 2)
}

// endsWithABB is the textbook NFA for (a|b)*abb.
func endsWithABB(t *testing.T) *automaton.NFA {
	return mustNFA(t, []int{0, 1, 2, 3}, "ab", []domain.Transition{
		edge(0, 'a', 0), edge(0, 'b', 0), edge(0, 'a', 1), edge(1, 'b', 2), edge(2, 'b', 3),
	}, 0, 3)
}

// withUnreachable has an island {2,3} that cannot be reached from 0.
func withUnreachable(t *testing.T) *automaton.NFA {
	return mustNFA(t, []int{0, 1, 2, 3}, "a", []domain.Transition{
		edge(0, 'a', 1), edge(2, 'a', 3), edge(3, eps, 1),
	}, 0, 1, 3)
}

func fixtures(t *testing.T) map[string]*automaton.NFA {
	return map[string]*automaton.NFA{
		"two state":     twoState(t),
		"epsilon step":  epsilonStep(t),
		"epsilon loop":  epsilonCycle(t),
		"ends with abb": endsWithABB(t),
		"unreachable":   withUnreachable(t),
	}
}

// words enumerates every string over symbols up to maxLen runes.
func words(symbols []domain.Symbol, maxLen int) []string {
	out := []string{""}
	frontier := []string{""}
	for l := 0; l < maxLen; l++ {
		var next []string
		for _, w := range frontier {
			for _, s := range symbols {
				next = append(next, w+string(s))
			}
		}
		out = append(out, next...)
		frontier = next
	}
	return out
}

// pathAccepts searches the NFA for an accepting path over input, taking
// epsilon moves freely. It is a reference for the conversion under test.
func pathAccepts(n *automaton.NFA, input string) bool {
	runes := []rune(input)
	type config struct {
		state domain.State
		pos   int
	}
	seen := make(map[config]bool)
	var walk func(c config) bool
	walk = func(c config) bool {
		if seen[c] {
			return false
		}
		seen[c] = true
		if c.pos == len(runes) && n.IsAccepting(c.state) {
			return true
		}
		for _, next := range n.At(c.state, domain.Epsilon) {
			if walk(config{next, c.pos}) {
				return true
			}
		}
		if c.pos < len(runes) {
			for _, next := range n.At(c.state, domain.Symbol(runes[c.pos])) {
				if walk(config{next, c.pos + 1}) {
					return true
				}
			}
		}
		return false
	}
	return walk(config{n.Initial(), 0})
}
