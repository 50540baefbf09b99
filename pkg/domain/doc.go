/*
Package domain contains the core value types shared by every automaton in powerset.

It defines symbols and alphabets, state identities, transitions and the
transition relation, plus the error kinds reported by validation. The package
is pure: no I/O, no logging and no third-party dependencies.

# Key Entities

  - Symbol: a single input rune, or the reserved Epsilon sentinel.
  - Alphabet: an ordered, duplicate-free set of symbols (never contains Epsilon).
  - State: an opaque comparable identity, either Atomic (an integer) or
    Composite (a canonical label built from a set of states).
  - Relation: maps (state, symbol) to a sorted set of destination states.
*/
package domain
