/*
Package automaton implements finite-state automata and the conversions between them.

An NFA may have any number of transitions per (state, symbol) pair plus
epsilon transitions. A DFA is an automaton whose transition relation is a
total function over states x alphabet. Both are immutable: every operation
returns a new automaton that owns its own collections.

# Operations

  - EpsilonClosure: the states reachable through zero or more epsilon moves.
  - ToDFA: subset construction producing an equivalent total DFA with a dead state.
  - RemoveUnreachable: drops states that cannot be reached from the initial state.
  - Canonical: renumbers states 0, 1, 2, ... in depth-first discovery order.
  - Accepts: language membership (DFA walk, or NFA set simulation).

Canonical form is a renumbering, not a minimization: language-equivalent
automata with different structure do not share a canonical form.
*/
package automaton
