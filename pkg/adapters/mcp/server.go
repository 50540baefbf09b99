package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/internal/logging"
	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

// MachineResult is the structured output of tools that return an automaton.
type MachineResult struct {
	Encoding string          `json:"encoding" jsonschema_description:"The automaton in the text encoding"`
	Machine  *codec.Document `json:"machine" jsonschema_description:"The automaton with state labels preserved"`
}

// AcceptsResult lists one verdict per input.
type AcceptsResult struct {
	Results []Verdict `json:"results" jsonschema_description:"One verdict per input, in order"`
}

// Verdict is the result for a single input.
type Verdict struct {
	Input    string `json:"input"`
	Accepted bool   `json:"accepted"`
}

// ClosureResult lists the states of an epsilon closure.
type ClosureResult struct {
	States []string `json:"states" jsonschema_description:"The closure in sorted order"`
}

type encodingArgs struct {
	Encoding string `mapstructure:"encoding"`
}

type acceptsArgs struct {
	Encoding string   `mapstructure:"encoding"`
	Machine  string   `mapstructure:"machine"`
	Inputs   []string `mapstructure:"inputs"`
}

type closureArgs struct {
	Encoding string `mapstructure:"encoding"`
	States   []int  `mapstructure:"states"`
}

// Server exposes the Engine as an MCP server.
type Server struct {
	engine    *powerset.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(engine *powerset.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("powerset-mcp", strings.TrimSpace(powerset.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on the given port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	encoding := mcp.WithString("encoding", mcp.Required(),
		mcp.Description("Automaton in the text encoding: states/alphabet/transitions/initial/accepting, e.g. 0 1/a/0,a,1/0/1"))

	s.mcpServer.AddTool(mcp.NewTool("convert_to_dfa",
		mcp.WithDescription("Convert an NFA (with optional ε transitions) to an equivalent DFA by subset construction."),
		encoding,
		mcp.WithOutputSchema[MachineResult](),
	), mcp.NewStructuredToolHandler(s.handleConvert))

	s.mcpServer.AddTool(mcp.NewTool("accepts",
		mcp.WithDescription("Report which input strings an automaton accepts. Pass either an encoding or the name of a stored machine."),
		mcp.WithString("encoding", mcp.Description("Automaton in the text encoding")),
		mcp.WithString("machine", mcp.Description("Name of a stored machine")),
		mcp.WithArray("inputs", mcp.Required(), mcp.Description("Input strings to test"), mcp.WithStringItems()),
		mcp.WithOutputSchema[AcceptsResult](),
	), mcp.NewStructuredToolHandler(s.handleAccepts))

	s.mcpServer.AddTool(mcp.NewTool("canonicalize",
		mcp.WithDescription("Renumber an automaton's states in traversal order so that equal shapes encode identically."),
		encoding,
		mcp.WithOutputSchema[MachineResult](),
	), mcp.NewStructuredToolHandler(s.handleCanonicalize))

	s.mcpServer.AddTool(mcp.NewTool("remove_unreachable",
		mcp.WithDescription("Drop the states that cannot be reached from the initial state."),
		encoding,
		mcp.WithOutputSchema[MachineResult](),
	), mcp.NewStructuredToolHandler(s.handlePrune))

	s.mcpServer.AddTool(mcp.NewTool("epsilon_closure",
		mcp.WithDescription("Compute the ε-closure of a set of states."),
		encoding,
		mcp.WithArray("states", mcp.Required(), mcp.Description("State ids to close over"), mcp.WithNumberItems()),
		mcp.WithOutputSchema[ClosureResult](),
	), mcp.NewStructuredToolHandler(s.handleClosure))
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MachineResult, error) {
	var in encodingArgs
	if err := decodeArgs(args, &in); err != nil {
		return MachineResult{}, err
	}
	d, err := s.engine.Convert(ctx, in.Encoding)
	if err != nil {
		s.logger.Warn("MCP convert_to_dfa failed", "err", err)
		return MachineResult{}, fmt.Errorf("convert failed: %w", err)
	}
	return machineResult(d), nil
}

func (s *Server) handleAccepts(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AcceptsResult, error) {
	var in acceptsArgs
	if err := decodeArgs(args, &in); err != nil {
		return AcceptsResult{}, err
	}

	var (
		m   automaton.Machine
		err error
	)
	switch {
	case in.Machine != "" && in.Encoding != "":
		err = fmt.Errorf("%w: provide either encoding or machine, not both", domain.ErrMalformedEncoding)
	case in.Machine != "":
		m, err = s.engine.Load(ctx, in.Machine)
	default:
		m, err = s.engine.Parse(ctx, in.Encoding)
	}
	if err != nil {
		return AcceptsResult{}, fmt.Errorf("accepts failed: %w", err)
	}

	verdicts, err := s.engine.Evaluate(ctx, m, in.Inputs...)
	if err != nil {
		return AcceptsResult{}, fmt.Errorf("accepts failed: %w", err)
	}
	out := AcceptsResult{Results: make([]Verdict, len(in.Inputs))}
	for i, input := range in.Inputs {
		out.Results[i] = Verdict{Input: input, Accepted: verdicts[i]}
	}
	return out, nil
}

func (s *Server) handleCanonicalize(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MachineResult, error) {
	var in encodingArgs
	if err := decodeArgs(args, &in); err != nil {
		return MachineResult{}, err
	}
	n, err := s.engine.Canonicalize(ctx, in.Encoding)
	if err != nil {
		return MachineResult{}, fmt.Errorf("canonicalize failed: %w", err)
	}
	return machineResult(n), nil
}

func (s *Server) handlePrune(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MachineResult, error) {
	var in encodingArgs
	if err := decodeArgs(args, &in); err != nil {
		return MachineResult{}, err
	}
	n, err := s.engine.Prune(ctx, in.Encoding)
	if err != nil {
		return MachineResult{}, fmt.Errorf("remove_unreachable failed: %w", err)
	}
	return machineResult(n), nil
}

func (s *Server) handleClosure(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ClosureResult, error) {
	var in closureArgs
	if err := decodeArgs(args, &in); err != nil {
		return ClosureResult{}, err
	}
	states, err := s.engine.Closure(ctx, in.Encoding, in.States...)
	if err != nil {
		return ClosureResult{}, fmt.Errorf("epsilon_closure failed: %w", err)
	}
	out := ClosureResult{States: make([]string, len(states))}
	for i, st := range states {
		out.States[i] = st.Encode()
	}
	return out, nil
}

func machineResult(m automaton.Machine) MachineResult {
	return MachineResult{Encoding: codec.Encode(m), Machine: codec.NewDocument(m)}
}

// decodeArgs maps loose tool arguments onto a typed struct.
func decodeArgs(args map[string]interface{}, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       integralFloats,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: invalid arguments: %v", domain.ErrMalformedEncoding, err)
	}
	return nil
}

// integralFloats rejects JSON numbers with a fractional part bound for an
// int field; mapstructure would otherwise truncate them.
func integralFloats(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.Float64 || to.Kind() != reflect.Int {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	return data, nil
}
