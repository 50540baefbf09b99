/*
Package powerset converts non-deterministic finite automata into
deterministic ones.

It models NFAs with epsilon transitions and DFAs, and implements the subset
construction together with epsilon closure, reachability pruning and
canonical renumbering. The Engine in this package is the facade used by the
CLI, the HTTP API and the MCP server: it parses the compact text encoding,
runs the algorithms, records metrics and persists named machines through a
ports.MachineStore.

# Text Encoding

	<states> / <alphabet> / <transitions> / <initial-state> / <accepting-states>

For example, the NFA for strings over {a, b} ending in "abb":

	0 1 2 3/a b/0,a,0;0,b,0;0,a,1;1,b,2;2,b,3/0/3

Epsilon transitions use the symbol ε, as in "0,ε,1".

# Usage

	eng := powerset.New()

	dfa, err := eng.Convert(ctx, "0 1 2 3/a b/0,a,0;0,b,0;0,a,1;1,b,2;2,b,3/0/3")
	if err != nil {
		log.Fatal(err)
	}
	ok, _ := dfa.Accepts("babb") // true

The algorithms themselves live in pkg/automaton and can be used without the
Engine.
*/
package powerset
