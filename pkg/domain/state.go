package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// State is the identity of an automaton state.
//
// Atomic states carry an integer id. Composite states carry a canonical
// label derived from a set of member states and are produced by subset
// construction. State is comparable and can be used as a map key.
// The zero value is Atomic(0).
type State struct {
	id        int
	label     string
	composite bool
}

// Dead is the composite state of the empty set. Subset construction uses it
// as the reject sink for moves that lead nowhere.
var Dead = Composite("{}")

// Atomic returns the atomic state with the given id.
func Atomic(id int) State {
	return State{id: id}
}

// Composite returns the composite state with the given canonical label.
// Use CompositeOf to derive the label from a set of states.
func Composite(label string) State {
	return State{label: label, composite: true}
}

// CompositeOf returns the composite state naming the set of the given states.
// Members are sorted with Compare and deduplicated, so any two equal sets
// produce the same label regardless of the order they are passed in.
func CompositeOf(states ...State) State {
	members := slices.Clone(states)
	SortStates(members)
	members = slices.Compact(members)
	return Composite(Label(members))
}

// Label renders an already sorted, duplicate-free member list as "{a,b,...}".
func Label(sorted []State) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, s := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s.Encode())
	}
	sb.WriteByte('}')
	return sb.String()
}

// ParseState parses the encoding produced by State.Encode.
// Integers become atomic states; "{...}" labels become composite states.
func ParseState(text string) (State, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return Composite(text), nil
	}
	id, err := strconv.Atoi(text)
	if err != nil {
		return State{}, fmt.Errorf("%w: state id %q is not an integer", ErrMalformedEncoding, text)
	}
	return Atomic(id), nil
}

// IsComposite reports whether s was built from a set of states.
func (s State) IsComposite() bool {
	return s.composite
}

// ID returns the integer id of an atomic state.
func (s State) ID() (int, bool) {
	if s.composite {
		return 0, false
	}
	return s.id, true
}

// Encode returns the stable textual identity of the state.
func (s State) Encode() string {
	if s.composite {
		return s.label
	}
	return strconv.Itoa(s.id)
}

func (s State) String() string {
	return s.Encode()
}

// Compare orders states: atomic states by id first, then composite states by label.
func Compare(a, b State) int {
	if a.composite != b.composite {
		if a.composite {
			return 1
		}
		return -1
	}
	if a.composite {
		return strings.Compare(a.label, b.label)
	}
	return cmp.Compare(a.id, b.id)
}

// SortStates sorts states in place using Compare.
func SortStates(states []State) {
	slices.SortFunc(states, Compare)
}

// EncodeStates renders states in set notation order as space separated encodings.
func EncodeStates(states []State) string {
	sorted := slices.Clone(states)
	SortStates(sorted)
	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = s.Encode()
	}
	return strings.Join(parts, " ")
}
