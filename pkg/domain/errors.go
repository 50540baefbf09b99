package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedEncoding is returned when a textual or structured encoding cannot be parsed.
var ErrMalformedEncoding = errors.New("malformed encoding")

// ErrUndefinedReference is returned when a transition, the initial state or an accepting
// state refers to a state or symbol that was not declared.
var ErrUndefinedReference = errors.New("undefined reference")

// ErrInvalidAlphabetSymbol is returned when a symbol is reserved or outside the alphabet.
var ErrInvalidAlphabetSymbol = errors.New("invalid alphabet symbol")

// ErrNotDeterministic is returned when parts handed to a DFA constructor are not a total function.
var ErrNotDeterministic = errors.New("not deterministic")

// ErrMachineNotFound is returned when a machine name cannot be found in a store.
var ErrMachineNotFound = errors.New("machine not found")

// ReferenceError describes a single undefined reference found during validation.
type ReferenceError struct {
	Where string // e.g. "initial", "accepting", "transition 0,a,3"
	Kind  string // "state" or "symbol"
	Ref   string // The encoded reference that could not be resolved
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: undefined %s %q", e.Where, e.Kind, e.Ref)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUndefinedReference
}

// SymbolError reports a symbol rejected by an alphabet.
type SymbolError struct {
	Symbol Symbol
	Reason string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %q: %s", string(e.Symbol), e.Reason)
}

func (e *SymbolError) Unwrap() error {
	return ErrInvalidAlphabetSymbol
}

// DeterminismError reports a (state, symbol) pair that violates the DFA invariants.
type DeterminismError struct {
	State  State
	Symbol Symbol
	Count  int // Number of destinations found (0 means missing)
}

func (e *DeterminismError) Error() string {
	if e.Symbol == Epsilon {
		return fmt.Sprintf("state %s: epsilon transitions are not allowed", e.State)
	}
	return fmt.Sprintf("state %s on %q: expected exactly 1 destination, got %d", e.State, string(e.Symbol), e.Count)
}

func (e *DeterminismError) Unwrap() error {
	return ErrNotDeterministic
}
