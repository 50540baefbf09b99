package domain

import (
	"slices"
	"strings"
	"unicode"
)

// Symbol is a single input character.
type Symbol rune

// Epsilon labels transitions that consume no input.
// It is a legal lookup key into a Relation but never a member of an Alphabet.
const Epsilon Symbol = 'ε'

func (s Symbol) String() string {
	return string(s)
}

// Reserved reports whether s can never be declared as an alphabet symbol.
// Whitespace and the text format delimiters are reserved alongside Epsilon.
func Reserved(s Symbol) bool {
	switch s {
	case Epsilon, ',', ';', '/':
		return true
	}
	return unicode.IsSpace(rune(s)) || !unicode.IsPrint(rune(s))
}

// Alphabet is an ordered, duplicate-free collection of symbols.
// The zero value is the empty alphabet.
type Alphabet struct {
	symbols []Symbol
}

// NewAlphabet builds an alphabet preserving the first occurrence order of symbols.
// Reserved symbols are rejected with a *SymbolError.
func NewAlphabet(symbols ...Symbol) (Alphabet, error) {
	out := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if Reserved(s) {
			return Alphabet{}, &SymbolError{Symbol: s, Reason: "reserved symbol"}
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return Alphabet{symbols: out}, nil
}

// AlphabetOf builds an alphabet from the runes of a string, ignoring whitespace.
func AlphabetOf(symbols string) (Alphabet, error) {
	var list []Symbol
	for _, r := range symbols {
		if unicode.IsSpace(r) {
			continue
		}
		list = append(list, Symbol(r))
	}
	return NewAlphabet(list...)
}

// Symbols returns a copy of the symbols in declaration order.
func (a Alphabet) Symbols() []Symbol {
	return slices.Clone(a.symbols)
}

// Contains reports whether s is a declared symbol. Epsilon is never contained.
func (a Alphabet) Contains(s Symbol) bool {
	return slices.Contains(a.symbols, s)
}

// Len returns the number of declared symbols.
func (a Alphabet) Len() int {
	return len(a.symbols)
}

// WithEpsilon returns Epsilon followed by the declared symbols.
func (a Alphabet) WithEpsilon() []Symbol {
	out := make([]Symbol, 0, len(a.symbols)+1)
	out = append(out, Epsilon)
	return append(out, a.symbols...)
}

// Encode renders the alphabet as space separated symbols.
func (a Alphabet) Encode() string {
	parts := make([]string, len(a.symbols))
	for i, s := range a.symbols {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// String renders the alphabet in set notation, e.g. "{a, b}".
func (a Alphabet) String() string {
	parts := make([]string, len(a.symbols))
	for i, s := range a.symbols {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
