package powerset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/powerset/internal/logging"
	"github.com/aretw0/powerset/pkg/adapters/memory"
	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
	"github.com/aretw0/powerset/pkg/observability"
	"github.com/aretw0/powerset/pkg/ports"
)

// Engine is the high-level entry point for the powerset library.
// It is safe for concurrent use; automata are immutable values.
type Engine struct {
	store   ports.MachineStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the store used by Save, Load, Delete and List.
// The default is an in-memory store.
func WithStore(store ports.MachineStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes writes of the same machine name through locker.
// The default is an in-process locker.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL bounds how long a write may hold a machine lock (default: 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records operation counts and latencies.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{lockTTL: 30 * time.Second}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.locker == nil {
		e.locker = memory.NewLocker()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	return e
}

// Store returns the machine store.
func (e *Engine) Store() ports.MachineStore {
	return e.store
}

func (e *Engine) done(op string, start time.Time, err error) {
	e.metrics.Observe(op, start, err)
	if err != nil {
		e.logger.Debug("operation failed", "op", op, "err", err)
	}
}

// Parse decodes and validates the text encoding.
func (e *Engine) Parse(ctx context.Context, text string) (n *automaton.NFA, err error) {
	start := time.Now()
	defer func() { e.done("parse", start, err) }()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	return codec.Parse(text)
}

// Determinize returns m as a DFA. Machines that already satisfy the DFA
// invariants are returned as they are; everything else goes through subset
// construction.
func (e *Engine) Determinize(ctx context.Context, m automaton.Machine) (*automaton.DFA, error) {
	if d, ok := m.(*automaton.DFA); ok {
		return d, nil
	}
	n, err := asNFA(m)
	if err != nil {
		return nil, err
	}
	if d, err := automaton.AsDFA(n); err == nil {
		return d, nil
	}
	return e.ToDFA(ctx, n)
}

// ToDFA runs the subset construction on m, even when m is already
// deterministic. The result always contains the dead state.
func (e *Engine) ToDFA(ctx context.Context, m automaton.Machine) (d *automaton.DFA, err error) {
	start := time.Now()
	defer func() { e.done("convert", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	n, err := asNFA(m)
	if err != nil {
		return nil, err
	}
	d = n.ToDFA()
	e.metrics.ObserveConversion(len(n.States()), len(d.States()))
	e.logger.Debug("subset construction",
		"nfa_states", len(n.States()),
		"dfa_states", len(d.States()),
		"duration", time.Since(start),
	)
	return d, nil
}

func asNFA(m automaton.Machine) (*automaton.NFA, error) {
	switch m := m.(type) {
	case *automaton.NFA:
		return m, nil
	case *automaton.DFA:
		return m.NFA(), nil
	}
	return codec.NewDocument(m).NFA()
}

// Convert parses text and runs the subset construction.
func (e *Engine) Convert(ctx context.Context, text string) (*automaton.DFA, error) {
	n, err := e.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return e.ToDFA(ctx, n)
}

// Accepts parses text and reports, for every input, whether the machine accepts it.
func (e *Engine) Accepts(ctx context.Context, text string, inputs ...string) (results []bool, err error) {
	start := time.Now()
	defer func() { e.done("accepts", start, err) }()

	n, err := codec.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, n, inputs)
}

// Evaluate is Accepts for an already built machine.
func (e *Engine) Evaluate(ctx context.Context, m automaton.Machine, inputs ...string) (results []bool, err error) {
	start := time.Now()
	defer func() { e.done("evaluate", start, err) }()
	return e.evaluate(ctx, m, inputs)
}

func (e *Engine) evaluate(ctx context.Context, m automaton.Machine, inputs []string) ([]bool, error) {
	d, err := e.Determinize(ctx, m)
	if err != nil {
		return nil, err
	}
	results := make([]bool, len(inputs))
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if results[i], err = d.Accepts(input); err != nil {
			return nil, fmt.Errorf("input %q: %w", input, err)
		}
	}
	return results, nil
}

// Trace runs input through the deterministic form of m and returns the visited states.
func (e *Engine) Trace(ctx context.Context, m automaton.Machine, input string) (trace automaton.Trace, err error) {
	start := time.Now()
	defer func() { e.done("trace", start, err) }()

	d, err := e.Determinize(ctx, m)
	if err != nil {
		return automaton.Trace{}, err
	}
	return d.Run(input)
}

// TraceAll is Trace for many inputs. The deterministic form is built once.
func (e *Engine) TraceAll(ctx context.Context, m automaton.Machine, inputs ...string) (traces []automaton.Trace, err error) {
	start := time.Now()
	defer func() { e.done("trace", start, err) }()

	d, err := e.Determinize(ctx, m)
	if err != nil {
		return nil, err
	}
	traces = make([]automaton.Trace, len(inputs))
	for i, input := range inputs {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if traces[i], err = d.Run(input); err != nil {
			return nil, fmt.Errorf("input %q: %w", input, err)
		}
	}
	return traces, nil
}

// Prune parses text and removes the states unreachable from the initial state.
func (e *Engine) Prune(ctx context.Context, text string) (n *automaton.NFA, err error) {
	start := time.Now()
	defer func() { e.done("prune", start, err) }()

	if n, err = e.parse(ctx, text); err != nil {
		return nil, err
	}
	return n.RemoveUnreachable(), nil
}

// RemoveUnreachable is Prune for an already built machine. DFAs stay DFAs.
func (e *Engine) RemoveUnreachable(ctx context.Context, m automaton.Machine) (out automaton.Machine, err error) {
	start := time.Now()
	defer func() { e.done("prune", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := m.(*automaton.DFA); ok {
		return d.RemoveUnreachable(), nil
	}
	n, err := asNFA(m)
	if err != nil {
		return nil, err
	}
	return n.RemoveUnreachable(), nil
}

// Canonicalize parses text and renumbers it in traversal order.
func (e *Engine) Canonicalize(ctx context.Context, text string) (n *automaton.NFA, err error) {
	start := time.Now()
	defer func() { e.done("canonical", start, err) }()

	if n, err = e.parse(ctx, text); err != nil {
		return nil, err
	}
	return n.Canonical(), nil
}

// Canonical is Canonicalize for an already built machine. DFAs stay DFAs.
func (e *Engine) Canonical(ctx context.Context, m automaton.Machine) (out automaton.Machine, err error) {
	start := time.Now()
	defer func() { e.done("canonical", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := m.(*automaton.DFA); ok {
		return d.Canonical(), nil
	}
	n, err := asNFA(m)
	if err != nil {
		return nil, err
	}
	return n.Canonical(), nil
}

// Closure parses text and returns the epsilon closure of the given atomic states.
func (e *Engine) Closure(ctx context.Context, text string, ids ...int) (states []domain.State, err error) {
	start := time.Now()
	defer func() { e.done("closure", start, err) }()

	n, err := e.parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return closure(n, ids)
}

// EpsilonClosure is Closure for an already built machine.
func (e *Engine) EpsilonClosure(ctx context.Context, m automaton.Machine, ids ...int) (states []domain.State, err error) {
	start := time.Now()
	defer func() { e.done("closure", start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	n, err := asNFA(m)
	if err != nil {
		return nil, err
	}
	return closure(n, ids)
}

func closure(n *automaton.NFA, ids []int) ([]domain.State, error) {
	seed := make([]domain.State, len(ids))
	for i, id := range ids {
		seed[i] = domain.Atomic(id)
		if !n.Has(seed[i]) {
			return nil, &domain.ReferenceError{Where: "closure", Kind: "state", Ref: seed[i].Encode()}
		}
	}
	return n.EpsilonClosure(seed...), nil
}

// SameShape reports whether two encodings have identical canonical forms,
// i.e. they differ only in how their states are numbered.
func (e *Engine) SameShape(ctx context.Context, a, b string) (same bool, err error) {
	start := time.Now()
	defer func() { e.done("equal", start, err) }()

	left, err := e.parse(ctx, a)
	if err != nil {
		return false, fmt.Errorf("first machine: %w", err)
	}
	right, err := e.parse(ctx, b)
	if err != nil {
		return false, fmt.Errorf("second machine: %w", err)
	}
	return left.SameShape(right), nil
}

// Equal is SameShape for already built machines.
func (e *Engine) Equal(ctx context.Context, a, b automaton.Machine) (same bool, err error) {
	start := time.Now()
	defer func() { e.done("equal", start, err) }()

	if err = ctx.Err(); err != nil {
		return false, err
	}
	left, err := asNFA(a)
	if err != nil {
		return false, fmt.Errorf("first machine: %w", err)
	}
	right, err := asNFA(b)
	if err != nil {
		return false, fmt.Errorf("second machine: %w", err)
	}
	return left.SameShape(right), nil
}

func (e *Engine) parse(ctx context.Context, text string) (*automaton.NFA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return codec.Parse(text)
}

func (e *Engine) withLock(ctx context.Context, name string, fn func(context.Context) error) error {
	unlock, err := e.locker.Lock(ctx, "machine:"+name, e.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock machine %q: %w", name, err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			e.logger.Warn("Failed to release machine lock (will expire via TTL)",
				"machine", name,
				"err", err,
			)
		}
	}()
	return fn(ctx)
}

// Save stores m under name.
func (e *Engine) Save(ctx context.Context, name string, m automaton.Machine) (err error) {
	start := time.Now()
	defer func() { e.done("save", start, err) }()

	if name == "" {
		return fmt.Errorf("%w: machine name is required", domain.ErrMalformedEncoding)
	}
	doc := codec.NewDocument(m)
	return e.withLock(ctx, name, func(ctx context.Context) error {
		return e.store.Save(ctx, name, doc)
	})
}

// Load retrieves the machine stored under name. Machines saved as DFAs come back as *automaton.DFA.
func (e *Engine) Load(ctx context.Context, name string) (m automaton.Machine, err error) {
	start := time.Now()
	defer func() { e.done("load", start, err) }()

	doc, err := e.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if m, err = doc.Machine(); err != nil {
		return nil, fmt.Errorf("stored machine %q: %w", name, err)
	}
	return m, nil
}

// Delete removes the machine stored under name.
func (e *Engine) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { e.done("delete", start, err) }()

	return e.withLock(ctx, name, func(ctx context.Context) error {
		return e.store.Delete(ctx, name)
	})
}

// List returns the stored machine names.
func (e *Engine) List(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { e.done("list", start, err) }()
	return e.store.List(ctx)
}
