package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset/pkg/domain"
)

func TestBuilder_EndsWithABB(t *testing.T) {
	b := New("ab")

	b.Add(0).On('a', 0, 1).On('b', 0)
	b.Add(1).On('b', 2)
	b.Add(2).On('b', 3)
	b.Add(3).Accepting()

	nfa, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.Atomic(0), nfa.Initial())
	assert.Len(t, nfa.States(), 4)
	assert.Len(t, nfa.Transitions(), 5)

	dfa := nfa.ToDFA()
	for input, want := range map[string]bool{"abb": true, "babb": true, "ab": false, "abba": false} {
		got, err := dfa.Accepts(input)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestBuilder_Epsilon(t *testing.T) {
	b := New("a")
	b.Add(0).Epsilon(1)
	b.Add(1).On('a', 2)
	b.Add(2).Accepting()

	nfa, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []domain.State{domain.Atomic(0), domain.Atomic(1)}, nfa.EpsilonClosure(domain.Atomic(0)))
}

func TestBuilder_Start(t *testing.T) {
	b := New("a")
	b.Add(0).On('a', 1)
	b.Add(1).On('a', 0).Start().Accepting()

	nfa, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, domain.Atomic(1), nfa.Initial())
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New("a")
	first := b.Add(0)
	assert.Same(t, first, b.Add(0))
}

func TestBuilder_BuildDFA(t *testing.T) {
	t.Run("Total Machine", func(t *testing.T) {
		b := New("ab")
		b.Add(0).On('a', 0).On('b', 1)
		b.Add(1).On('a', 0).On('b', 1).Accepting()

		dfa, err := b.BuildDFA()
		require.NoError(t, err)
		ok, err := dfa.Accepts("ab")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Partial Machine", func(t *testing.T) {
		b := New("ab")
		b.Add(0).On('a', 0)

		_, err := b.BuildDFA()
		assert.ErrorIs(t, err, domain.ErrNotDeterministic)
	})
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("Undeclared Target", func(t *testing.T) {
		b := New("a")
		b.Add(0).On('a', 9)

		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrUndefinedReference)
	})

	t.Run("Symbol Outside Alphabet", func(t *testing.T) {
		b := New("a")
		b.Add(0).On('z', 0)

		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrUndefinedReference)
	})

	t.Run("Reserved Alphabet Symbol", func(t *testing.T) {
		b := New("a;")
		b.Add(0)

		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrInvalidAlphabetSymbol)
	})

	t.Run("Empty Builder", func(t *testing.T) {
		_, err := New("a").Build()
		assert.Error(t, err)
	})
}
