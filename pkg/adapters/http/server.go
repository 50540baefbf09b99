package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/internal/logging"
	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
	"github.com/aretw0/powerset/pkg/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server exposes an Engine over JSON HTTP.
type Server struct {
	engine   *powerset.Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves the metrics of g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *powerset.Engine, opts ...Option) http.Handler {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.Convert)
		r.Post("/accepts", s.Accepts)
		r.Post("/prune", s.Prune)
		r.Post("/canonical", s.Canonical)
		r.Post("/closure", s.Closure)
		r.Post("/equal", s.Equal)

		r.Get("/machines", s.ListMachines)
		r.Route("/machines/{name}", func(r chi.Router) {
			r.Put("/", s.PutMachine)
			r.Get("/", s.GetMachine)
			r.Delete("/", s.DeleteMachine)
			r.Post("/accepts", s.AcceptsStored)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EncodingRequest carries one machine in the text encoding.
type EncodingRequest struct {
	Encoding string `json:"encoding"`
}

// AcceptsRequest asks which inputs a machine accepts.
// Encoding is ignored for stored machines.
type AcceptsRequest struct {
	Encoding string   `json:"encoding,omitempty"`
	Inputs   []string `json:"inputs"`
	Trace    bool     `json:"trace,omitempty"`
}

// ClosureRequest asks for the epsilon closure of a set of state ids.
type ClosureRequest struct {
	Encoding string `json:"encoding"`
	States   []int  `json:"states"`
}

// EqualRequest compares two encodings up to renumbering.
type EqualRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// PutMachineRequest stores either an encoding or a document.
type PutMachineRequest struct {
	Encoding string          `json:"encoding,omitempty"`
	Machine  *codec.Document `json:"machine,omitempty"`
}

// MachineResponse returns a machine in both representations.
type MachineResponse struct {
	Encoding string          `json:"encoding"`
	Machine  *codec.Document `json:"machine"`
}

// AcceptResult is the verdict for a single input.
type AcceptResult struct {
	Input    string   `json:"input"`
	Accepted bool     `json:"accepted"`
	Trace    []string `json:"trace,omitempty"`
}

// AcceptsResponse lists verdicts in request order.
type AcceptsResponse struct {
	Results []AcceptResult `json:"results"`
}

// ClosureResponse lists the closure in sorted order.
type ClosureResponse struct {
	States []string `json:"states"`
}

// EqualResponse reports whether two machines have the same canonical form.
type EqualResponse struct {
	Equal bool `json:"equal"`
}

// ListResponse lists stored machine names.
type ListResponse struct {
	Names []string `json:"names"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Convert handles POST /v1/convert.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var body EncodingRequest
	if !s.decode(w, r, &body) {
		return
	}
	d, err := s.engine.Convert(r.Context(), body.Encoding)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, machineResponse(d))
}

// Accepts handles POST /v1/accepts.
func (s *Server) Accepts(w http.ResponseWriter, r *http.Request) {
	var body AcceptsRequest
	if !s.decode(w, r, &body) {
		return
	}
	n, err := s.engine.Parse(r.Context(), body.Encoding)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.accepts(w, r, n, body)
}

// Prune handles POST /v1/prune.
func (s *Server) Prune(w http.ResponseWriter, r *http.Request) {
	var body EncodingRequest
	if !s.decode(w, r, &body) {
		return
	}
	n, err := s.engine.Prune(r.Context(), body.Encoding)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, machineResponse(n))
}

// Canonical handles POST /v1/canonical.
func (s *Server) Canonical(w http.ResponseWriter, r *http.Request) {
	var body EncodingRequest
	if !s.decode(w, r, &body) {
		return
	}
	n, err := s.engine.Canonicalize(r.Context(), body.Encoding)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, machineResponse(n))
}

// Closure handles POST /v1/closure.
func (s *Server) Closure(w http.ResponseWriter, r *http.Request) {
	var body ClosureRequest
	if !s.decode(w, r, &body) {
		return
	}
	states, err := s.engine.Closure(r.Context(), body.Encoding, body.States...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := ClosureResponse{States: make([]string, len(states))}
	for i, st := range states {
		resp.States[i] = st.Encode()
	}
	s.respond(w, http.StatusOK, resp)
}

// Equal handles POST /v1/equal.
func (s *Server) Equal(w http.ResponseWriter, r *http.Request) {
	var body EqualRequest
	if !s.decode(w, r, &body) {
		return
	}
	same, err := s.engine.SameShape(r.Context(), body.A, body.B)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, EqualResponse{Equal: same})
}

// ListMachines handles GET /v1/machines.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.respond(w, http.StatusOK, ListResponse{Names: names})
}

// PutMachine handles PUT /v1/machines/{name}.
func (s *Server) PutMachine(w http.ResponseWriter, r *http.Request) {
	var body PutMachineRequest
	if !s.decode(w, r, &body) {
		return
	}

	var (
		m   automaton.Machine
		err error
	)
	switch {
	case body.Machine != nil && body.Encoding != "":
		err = fmt.Errorf("%w: provide either encoding or machine, not both", domain.ErrMalformedEncoding)
	case body.Machine != nil:
		m, err = body.Machine.Machine()
	default:
		m, err = s.engine.Parse(r.Context(), body.Encoding)
	}
	if err == nil {
		err = s.engine.Save(r.Context(), chi.URLParam(r, "name"), m)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMachine handles GET /v1/machines/{name}.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, machineResponse(m))
}

// DeleteMachine handles DELETE /v1/machines/{name}.
func (s *Server) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptsStored handles POST /v1/machines/{name}/accepts.
func (s *Server) AcceptsStored(w http.ResponseWriter, r *http.Request) {
	var body AcceptsRequest
	if !s.decode(w, r, &body) {
		return
	}
	m, err := s.engine.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.accepts(w, r, m, body)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":     "powerset-http",
		"version": strings.TrimSpace(powerset.Version),
	})
}

func (s *Server) accepts(w http.ResponseWriter, r *http.Request, m automaton.Machine, body AcceptsRequest) {
	results, err := s.evaluate(r.Context(), m, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, AcceptsResponse{Results: results})
}

func (s *Server) evaluate(ctx context.Context, m automaton.Machine, body AcceptsRequest) ([]AcceptResult, error) {
	results := make([]AcceptResult, len(body.Inputs))
	if !body.Trace {
		verdicts, err := s.engine.Evaluate(ctx, m, body.Inputs...)
		if err != nil {
			return nil, err
		}
		for i, input := range body.Inputs {
			results[i] = AcceptResult{Input: input, Accepted: verdicts[i]}
		}
		return results, nil
	}

	traces, err := s.engine.TraceAll(ctx, m, body.Inputs...)
	if err != nil {
		return nil, err
	}
	for i, trace := range traces {
		input := body.Inputs[i]
		visited := make([]string, len(trace.States))
		for j, st := range trace.States {
			visited[j] = st.Encode()
		}
		results[i] = AcceptResult{Input: input, Accepted: trace.Accepted, Trace: visited}
	}
	return results, nil
}

func machineResponse(m automaton.Machine) MachineResponse {
	return MachineResponse{Encoding: codec.Encode(m), Machine: codec.NewDocument(m)}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.respond(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Kind: "bad_request"})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.respond(w, status, ErrorResponse{Error: err.Error(), Kind: observability.Outcome(err)})
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMachineNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedEncoding),
		errors.Is(err, domain.ErrUndefinedReference),
		errors.Is(err, domain.ErrInvalidAlphabetSymbol),
		errors.Is(err, domain.ErrNotDeterministic):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
