package codec

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/domain"
)

// Document is the structured representation of an automaton.
// State ids are kept as their encodings so composite labels such as
// "{0,1}" survive a round trip.
type Document struct {
	Deterministic bool                 `json:"deterministic,omitempty" yaml:"deterministic,omitempty" mapstructure:"deterministic"`
	States        []string             `json:"states" yaml:"states" mapstructure:"states"`
	Alphabet      []string             `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`
	Transitions   []TransitionDocument `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	Initial       string               `json:"initial" yaml:"initial" mapstructure:"initial"`
	Accepting     []string             `json:"accepting" yaml:"accepting" mapstructure:"accepting"`
}

// TransitionDocument is a single edge of a Document. Symbol "ε" is epsilon.
type TransitionDocument struct {
	From   string `json:"from" yaml:"from" mapstructure:"from"`
	Symbol string `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
	To     string `json:"to" yaml:"to" mapstructure:"to"`
}

// NewDocument captures m. Deterministic is set when m is a *automaton.DFA.
func NewDocument(m automaton.Machine) *Document {
	_, isDFA := m.(*automaton.DFA)
	doc := &Document{
		Deterministic: isDFA,
		States:        encodeAll(m.States()),
		Initial:       m.Initial().Encode(),
		Accepting:     encodeAll(m.Accepting()),
		Alphabet:      []string{},
		Transitions:   []TransitionDocument{},
	}
	for _, s := range m.Alphabet().Symbols() {
		doc.Alphabet = append(doc.Alphabet, s.String())
	}
	for _, t := range m.Transitions() {
		doc.Transitions = append(doc.Transitions, TransitionDocument{
			From:   t.From.Encode(),
			Symbol: t.Symbol.String(),
			To:     t.To.Encode(),
		})
	}
	return doc
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Deterministic: d.Deterministic,
		States:        slices.Clone(d.States),
		Alphabet:      slices.Clone(d.Alphabet),
		Transitions:   slices.Clone(d.Transitions),
		Initial:       d.Initial,
		Accepting:     slices.Clone(d.Accepting),
	}
	c.normalize()
	return c
}

// normalize replaces nil lists with empty ones so decoded and cloned
// documents compare equal regardless of how empty lists were written.
func (d *Document) normalize() {
	if d.States == nil {
		d.States = []string{}
	}
	if d.Alphabet == nil {
		d.Alphabet = []string{}
	}
	if d.Transitions == nil {
		d.Transitions = []TransitionDocument{}
	}
	if d.Accepting == nil {
		d.Accepting = []string{}
	}
}

func encodeAll(states []domain.State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.Encode()
	}
	return out
}

// NFA builds and validates the automaton described by the document.
func (d *Document) NFA() (*automaton.NFA, error) {
	p, err := d.parts()
	if err != nil {
		return nil, err
	}
	n, err := automaton.New(p.states, p.alphabet, p.transitions, p.initial, p.accepting)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton: %w", err)
	}
	return n, nil
}

// DFA builds the automaton and validates it as deterministic and total.
func (d *Document) DFA() (*automaton.DFA, error) {
	p, err := d.parts()
	if err != nil {
		return nil, err
	}
	m, err := automaton.NewDFA(p.states, p.alphabet, p.transitions, p.initial, p.accepting)
	if err != nil {
		return nil, fmt.Errorf("invalid automaton: %w", err)
	}
	return m, nil
}

// Machine returns a DFA when the document is marked deterministic and an
// NFA otherwise.
func (d *Document) Machine() (automaton.Machine, error) {
	if d.Deterministic {
		return d.DFA()
	}
	return d.NFA()
}

func (d *Document) parts() (*parts, error) {
	var (
		p   parts
		err error
	)
	if len(d.States) == 0 {
		return nil, &SyntaxError{Section: "states", Reason: "at least one state is required"}
	}
	if p.states, err = parseLabels("states", d.States); err != nil {
		return nil, err
	}
	if p.accepting, err = parseLabels("accepting", d.Accepting); err != nil {
		return nil, err
	}
	if p.initial, err = parseLabel("initial", d.Initial); err != nil {
		return nil, err
	}

	symbols := make([]domain.Symbol, 0, len(d.Alphabet))
	for _, tok := range d.Alphabet {
		s, err := parseSymbol("alphabet", tok)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	if p.alphabet, err = domain.NewAlphabet(symbols...); err != nil {
		return nil, fmt.Errorf("alphabet: %w", err)
	}

	for _, t := range d.Transitions {
		from, err := parseLabel("transitions", t.From)
		if err != nil {
			return nil, err
		}
		sym, err := parseSymbol("transitions", t.Symbol)
		if err != nil {
			return nil, err
		}
		to, err := parseLabel("transitions", t.To)
		if err != nil {
			return nil, err
		}
		p.transitions = append(p.transitions, domain.Transition{From: from, Symbol: sym, To: to})
	}
	return &p, nil
}

func parseLabel(section, text string) (domain.State, error) {
	s, err := domain.ParseState(text)
	if err != nil {
		return domain.State{}, &SyntaxError{Section: section, Input: text, Reason: "state must be an integer or a {…} label"}
	}
	return s, nil
}

func parseLabels(section string, texts []string) ([]domain.State, error) {
	out := make([]domain.State, 0, len(texts))
	for _, text := range texts {
		s, err := parseLabel(section, text)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeMap decodes a loosely typed map, as produced by JSON or YAML
// unmarshalling into interface values. Numbers are accepted wherever a
// state id is expected.
func DecodeMap(raw map[string]any) (*Document, error) {
	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEncoding, err)
	}
	doc.normalize()
	return &doc, nil
}

// DecodeJSON reads a Document from JSON.
func DecodeJSON(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEncoding, err)
	}
	return DecodeMap(raw)
}

// DecodeYAML reads a Document from YAML.
func DecodeYAML(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEncoding, err)
	}
	return DecodeMap(raw)
}

// EncodeJSON writes m as an indented JSON Document.
func EncodeJSON(m automaton.Machine) ([]byte, error) {
	return json.MarshalIndent(NewDocument(m), "", "  ")
}

// EncodeYAML writes m as a YAML Document.
func EncodeYAML(m automaton.Machine) ([]byte, error) {
	return yaml.Marshal(NewDocument(m))
}
