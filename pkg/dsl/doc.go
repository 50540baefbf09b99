/*
Package dsl provides a fluent builder for constructing automata in Go code
instead of writing the text encoding by hand. It is handy in tests and for
generating machines programmatically.

Example usage:

	b := dsl.New("ab")

	b.Add(0).On('a', 0, 1).On('b', 0)
	b.Add(1).On('b', 2)
	b.Add(2).On('b', 3)
	b.Add(3).Accepting()

	nfa, err := b.Build() // (a|b)*abb
	if err != nil {
		return err
	}
	dfa := nfa.ToDFA()

The first state added is the initial state unless another one calls Start.
References to states that were never added are reported by Build.
*/
package dsl
