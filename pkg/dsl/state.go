package dsl

import "github.com/aretw0/powerset/pkg/domain"

// StateBuilder provides a fluent API for configuring one state.
type StateBuilder struct {
	id          int
	builder     *Builder
	accepting   bool
	transitions []domain.Transition
}

// On adds transitions on sym to every target.
func (s *StateBuilder) On(sym rune, targets ...int) *StateBuilder {
	for _, to := range targets {
		s.transitions = append(s.transitions, domain.Transition{
			From:   domain.Atomic(s.id),
			Symbol: domain.Symbol(sym),
			To:     domain.Atomic(to),
		})
	}
	return s
}

// Epsilon adds epsilon transitions to every target.
func (s *StateBuilder) Epsilon(targets ...int) *StateBuilder {
	return s.On(rune(domain.Epsilon), targets...)
}

// Accepting marks the state as accepting.
func (s *StateBuilder) Accepting() *StateBuilder {
	s.accepting = true
	return s
}

// Start makes the state the initial state.
func (s *StateBuilder) Start() *StateBuilder {
	id := s.id
	s.builder.initial = &id
	return s
}
