package codec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// SyntaxError reports a structural failure in a text encoding.
type SyntaxError struct {
	Section string // "encoding", "states", "alphabet", "transitions", "initial" or "accepting"
	Input   string // The offending fragment
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Section, e.Input, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return domain.ErrMalformedEncoding
}

type parts struct {
	states      []domain.State
	alphabet    domain.Alphabet
	transitions []domain.Transition
	initial     domain.State
	accepting   []domain.State
}

// Parse decodes the text format and validates the result as an NFA.
// Structural problems fail with domain.ErrMalformedEncoding; undeclared
// states or symbols fail with domain.ErrUndefinedReference.
func Parse(text string) (*automaton.NFA, error) {
	p, err := parseParts(text)
	if err != nil {
		return nil, err
	}
	n, err := automaton.New(p.states, p.alphabet, p.transitions, p.initial, p.accepting)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton: %w", err)
	}
	return n, nil
}

// ParseDFA decodes the text format and validates the result as a DFA.
func ParseDFA(text string) (*automaton.DFA, error) {
	p, err := parseParts(text)
	if err != nil {
		return nil, err
	}
	d, err := automaton.NewDFA(p.states, p.alphabet, p.transitions, p.initial, p.accepting)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton: %w", err)
	}
	return d, nil
}

func parseParts(text string) (*parts, error) {
	sections := strings.Split(strings.TrimSpace(text), "/")
	if len(sections) != 4 && len(sections) != 5 {
		return nil, &SyntaxError{
			Section: "encoding",
			Input:   text,
			Reason:  fmt.Sprintf("expected 5 sections separated by '/', got %d", len(sections)),
		}
	}

	var (
		p   parts
		err error
	)
	if p.states, err = parseStateList("states", sections[0]); err != nil {
		return nil, err
	}
	if len(p.states) == 0 {
		return nil, &SyntaxError{Section: "states", Input: sections[0], Reason: "at least one state is required"}
	}
	if p.alphabet, err = parseAlphabet(sections[1]); err != nil {
		return nil, err
	}
	if p.transitions, err = parseTransitions(sections[2]); err != nil {
		return nil, err
	}
	if p.initial, err = parseStateID("initial", sections[3]); err != nil {
		return nil, err
	}
	if len(sections) == 5 {
		if p.accepting, err = parseStateList("accepting", sections[4]); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func parseStateID(section, field string) (domain.State, error) {
	field = strings.TrimSpace(field)
	id, err := strconv.Atoi(field)
	if err != nil {
		return domain.State{}, &SyntaxError{Section: section, Input: field, Reason: "state id must be an integer"}
	}
	return domain.Atomic(id), nil
}

func parseStateList(section, field string) ([]domain.State, error) {
	var states []domain.State
	for _, tok := range strings.Fields(field) {
		s, err := parseStateID(section, tok)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, nil
}

func parseSymbol(section, tok string) (domain.Symbol, error) {
	if utf8.RuneCountInString(tok) != 1 {
		return 0, &SyntaxError{Section: section, Input: tok, Reason: "symbol must be a single character"}
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return domain.Symbol(r), nil
}

func parseAlphabet(field string) (domain.Alphabet, error) {
	var symbols []domain.Symbol
	for _, tok := range strings.Fields(field) {
		s, err := parseSymbol("alphabet", tok)
		if err != nil {
			return domain.Alphabet{}, err
		}
		symbols = append(symbols, s)
	}
	a, err := domain.NewAlphabet(symbols...)
	if err != nil {
		return domain.Alphabet{}, fmt.Errorf("alphabet: %w", err)
	}
	return a, nil
}

func parseTransitions(field string) ([]domain.Transition, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}
	var out []domain.Transition
	for _, item := range strings.Split(field, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, &SyntaxError{Section: "transitions", Input: field, Reason: "empty transition (unterminated list?)"}
		}
		fields := strings.Split(item, ",")
		if len(fields) != 3 {
			return nil, &SyntaxError{Section: "transitions", Input: item, Reason: "expected from,symbol,to"}
		}
		from, err := parseStateID("transitions", fields[0])
		if err != nil {
			return nil, err
		}
		sym, err := parseSymbol("transitions", strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, err
		}
		to, err := parseStateID("transitions", fields[2])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Transition{From: from, Symbol: sym, To: to})
	}
	return out, nil
}

// Encode renders m in the text format: states ascending, alphabet in
// declaration order, transitions and accepting states sorted.
//
// The grammar only admits integer ids, so when m has composite states every
// state is renumbered by its position in sorted order. Parse(Encode(m))
// always accepts the same language as m.
func Encode(m automaton.Machine) string {
	states := m.States()
	rename := numbering(states)

	transitions := m.Transitions()
	renamed := make([]domain.Transition, len(transitions))
	for i, t := range transitions {
		renamed[i] = domain.Transition{From: rename(t.From), Symbol: t.Symbol, To: rename(t.To)}
	}
	slices.SortFunc(renamed, domain.CompareTransitions)
	encoded := make([]string, len(renamed))
	for i, t := range renamed {
		encoded[i] = t.Encode()
	}

	return strings.Join([]string{
		encodeRenamed(states, rename),
		m.Alphabet().Encode(),
		strings.Join(encoded, ";"),
		rename(m.Initial()).Encode(),
		encodeRenamed(m.Accepting(), rename),
	}, "/")
}

// numbering maps states to integer ids: the identity when every state is
// atomic, otherwise the position in sorted order.
func numbering(sorted []domain.State) func(domain.State) domain.State {
	composite := slices.ContainsFunc(sorted, domain.State.IsComposite)
	if !composite {
		return func(s domain.State) domain.State { return s }
	}
	ids := make(map[domain.State]domain.State, len(sorted))
	for i, s := range sorted {
		ids[s] = domain.Atomic(i)
	}
	return func(s domain.State) domain.State { return ids[s] }
}

func encodeRenamed(states []domain.State, rename func(domain.State) domain.State) string {
	out := make([]domain.State, len(states))
	for i, s := range states {
		out[i] = rename(s)
	}
	return domain.EncodeStates(out)
}
