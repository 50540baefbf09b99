package dsl

import (
	"fmt"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// Builder accumulates states and transitions of an automaton.
type Builder struct {
	alphabet domain.Alphabet
	err      error
	order    []int
	states   map[int]*StateBuilder
	initial  *int
}

// New creates a builder over the runes of alphabet. Whitespace is ignored.
func New(alphabet string) *Builder {
	a, err := domain.AlphabetOf(alphabet)
	return &Builder{
		alphabet: a,
		err:      err,
		states:   make(map[int]*StateBuilder),
	}
}

// Add declares a state. If the state already exists, it returns the existing builder.
func (b *Builder) Add(id int) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

func (b *Builder) parts() ([]domain.State, []domain.Transition, domain.State, []domain.State, error) {
	if b.err != nil {
		return nil, nil, domain.State{}, nil, fmt.Errorf("invalid alphabet: %w", b.err)
	}
	if len(b.order) == 0 {
		return nil, nil, domain.State{}, nil, fmt.Errorf("%w: no states declared", domain.ErrUndefinedReference)
	}

	var (
		states      []domain.State
		transitions []domain.Transition
		accepting   []domain.State
	)
	for _, id := range b.order {
		sb := b.states[id]
		states = append(states, domain.Atomic(id))
		transitions = append(transitions, sb.transitions...)
		if sb.accepting {
			accepting = append(accepting, domain.Atomic(id))
		}
	}

	initial := domain.Atomic(b.order[0])
	if b.initial != nil {
		initial = domain.Atomic(*b.initial)
	}
	return states, transitions, initial, accepting, nil
}

// Build validates the accumulated definition as an NFA.
func (b *Builder) Build() (*automaton.NFA, error) {
	states, transitions, initial, accepting, err := b.parts()
	if err != nil {
		return nil, err
	}
	n, err := automaton.New(states, b.alphabet, transitions, initial, accepting)
	if err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return n, nil
}

// BuildDFA validates the accumulated definition as a total DFA.
func (b *Builder) BuildDFA() (*automaton.DFA, error) {
	states, transitions, initial, accepting, err := b.parts()
	if err != nil {
		return nil, err
	}
	d, err := automaton.NewDFA(states, b.alphabet, transitions, initial, accepting)
	if err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return d, nil
}
