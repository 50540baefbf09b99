/*
Package observability provides Prometheus instrumentation for the powerset engine.

Metrics records the outcome and latency of every engine operation and the
size of the automata produced by subset construction. All methods are safe
to call on a nil *Metrics, which records nothing.
*/
package observability
