// Package codec reads and writes automata.
//
// The text format is the compact single-line encoding
//
//	<states> / <alphabet> / <transitions> / <initial-state> / <accepting-states>
//
// for example "0 1/a b/0,a,0;0,b,1;1,a,0;1,b,1/0/1". Epsilon transitions use
// the symbol ε. The structured format is Document, which can be written as
// JSON or YAML and keeps composite state labels intact.
package codec
