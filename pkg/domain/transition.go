package domain

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// Transition is a single (From, Symbol, To) edge.
// Symbol may be Epsilon.
type Transition struct {
	From   State
	Symbol Symbol
	To     State
}

// Encode renders the transition as "from,symbol,to".
func (t Transition) Encode() string {
	return t.From.Encode() + "," + t.Symbol.String() + "," + t.To.Encode()
}

// CompareTransitions orders transitions by source, symbol and destination.
func CompareTransitions(a, b Transition) int {
	if c := Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	return Compare(a.To, b.To)
}

// Relation maps (state, symbol) pairs to sets of destination states.
// It is immutable once built; lookups return copies.
type Relation struct {
	edges map[State]map[Symbol][]State
	size  int
}

// NewRelation indexes the given transitions. Duplicates are collapsed.
func NewRelation(transitions []Transition) *Relation {
	r := &Relation{edges: make(map[State]map[Symbol][]State)}
	for _, t := range transitions {
		bySymbol, ok := r.edges[t.From]
		if !ok {
			bySymbol = make(map[Symbol][]State)
			r.edges[t.From] = bySymbol
		}
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t.To)
	}
	for _, bySymbol := range r.edges {
		for sym, dests := range bySymbol {
			SortStates(dests)
			dests = slices.Compact(dests)
			bySymbol[sym] = dests
			r.size += len(dests)
		}
	}
	return r
}

// At returns the sorted destinations reachable from s on sym.
func (r *Relation) At(s State, sym Symbol) []State {
	return slices.Clone(r.edges[s][sym])
}

// HasEdges reports whether s has any outgoing transition on sym.
func (r *Relation) HasEdges(s State, sym Symbol) bool {
	return len(r.edges[s][sym]) > 0
}

// Len returns the number of distinct transitions.
func (r *Relation) Len() int {
	return r.size
}

// Transitions returns every transition sorted with CompareTransitions.
func (r *Relation) Transitions() []Transition {
	out := make([]Transition, 0, r.size)
	for from, bySymbol := range r.edges {
		for sym, dests := range bySymbol {
			for _, to := range dests {
				out = append(out, Transition{From: from, Symbol: sym, To: to})
			}
		}
	}
	slices.SortFunc(out, CompareTransitions)
	return out
}

// Verify checks that every endpoint is a declared state and every symbol is
// either Epsilon or part of the alphabet. All violations are reported.
func (r *Relation) Verify(states map[State]struct{}, alphabet Alphabet) error {
	var errs []error
	for _, t := range r.Transitions() {
		where := "transition " + t.Encode()
		if _, ok := states[t.From]; !ok {
			errs = append(errs, &ReferenceError{Where: where, Kind: "state", Ref: t.From.Encode()})
		}
		if _, ok := states[t.To]; !ok {
			errs = append(errs, &ReferenceError{Where: where, Kind: "state", Ref: t.To.Encode()})
		}
		if t.Symbol != Epsilon && !alphabet.Contains(t.Symbol) {
			errs = append(errs, &ReferenceError{Where: where, Kind: "symbol", Ref: t.Symbol.String()})
		}
	}
	return errors.Join(errs...)
}

// Encode renders all transitions as "from,symbol,to;..." in sorted order.
func (r *Relation) Encode() string {
	transitions := r.Transitions()
	parts := make([]string, len(transitions))
	for i, t := range transitions {
		parts[i] = t.Encode()
	}
	return strings.Join(parts, ";")
}
