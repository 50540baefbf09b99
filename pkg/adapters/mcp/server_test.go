package mcp

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

const epsilonStep = "0 1 2/a/0,ε,1;1,a,2/0/2"

func TestHandleConvert(t *testing.T) {
	s := NewServer(powerset.New(), nil)

	out, err := s.handleConvert(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": epsilonStep,
	})
	require.NoError(t, err)
	assert.Equal(t, "0 1 2/a/0,a,1;1,a,2;2,a,2/0/1", out.Encoding)
	assert.True(t, out.Machine.Deterministic)

	_, err = s.handleConvert(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": "0 1",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedEncoding)
}

func TestHandleAccepts(t *testing.T) {
	engine := powerset.New()
	s := NewServer(engine, nil)
	ctx := context.Background()

	out, err := s.handleAccepts(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": epsilonStep,
		"inputs":   []interface{}{"a", "aa", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []Verdict{
		{Input: "a", Accepted: true},
		{Input: "aa", Accepted: false},
		{Input: "", Accepted: false},
	}, out.Results)

	n, err := codec.Parse(epsilonStep)
	require.NoError(t, err)
	require.NoError(t, engine.Save(ctx, "step", n))

	out, err = s.handleAccepts(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"machine": "step",
		"inputs":  []interface{}{"a"},
	})
	require.NoError(t, err)
	assert.True(t, out.Results[0].Accepted)

	_, err = s.handleAccepts(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"machine": "missing",
		"inputs":  []interface{}{"a"},
	})
	assert.ErrorIs(t, err, domain.ErrMachineNotFound)

	_, err = s.handleAccepts(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": epsilonStep,
		"inputs":   []interface{}{"b"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAlphabetSymbol)
}

func TestHandleCanonicalizeAndPrune(t *testing.T) {
	s := NewServer(powerset.New(), nil)
	ctx := context.Background()

	out, err := s.handleCanonicalize(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": "5 7/a/7,a,5/7/5",
	})
	require.NoError(t, err)
	assert.Equal(t, "0 1/a/0,a,1/0/1", out.Encoding)

	out, err = s.handlePrune(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": "0 1 2/a/0,a,1/0/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "0 1/a/0,a,1/0/1", out.Encoding)
}

func TestHandleClosure(t *testing.T) {
	s := NewServer(powerset.New(), nil)

	// JSON numbers arrive as float64.
	out, err := s.handleClosure(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": epsilonStep,
		"states":   []interface{}{float64(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, out.States)

	_, err = s.handleClosure(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"encoding": epsilonStep,
		"states":   []interface{}{float64(4)},
	})
	assert.ErrorIs(t, err, domain.ErrUndefinedReference)
}

func TestHandleClosure_RejectsFractionalStates(t *testing.T) {
	s := NewServer(powerset.New(), nil)

	for _, state := range []interface{}{float64(1.5), "1.5", math.Inf(1)} {
		_, err := s.handleClosure(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
			"encoding": epsilonStep,
			"states":   []interface{}{state},
		})
		assert.ErrorIs(t, err, domain.ErrMalformedEncoding, "state %v", state)
	}

	var in closureArgs
	require.NoError(t, decodeArgs(map[string]interface{}{"states": []interface{}{float64(2), "1"}}, &in))
	assert.Equal(t, []int{2, 1}, in.States)
}

func TestDecodeArgs_RejectsUnknown(t *testing.T) {
	var in encodingArgs
	err := decodeArgs(map[string]interface{}{"encoding": "0/a//0", "extra": 1}, &in)
	assert.ErrorIs(t, err, domain.ErrMalformedEncoding)
}

func TestToolsList(t *testing.T) {
	s := NewServer(powerset.New(), nil)
	ctx := context.Background()

	s.mcpServer.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.mcpServer.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"convert_to_dfa", "accepts", "canonicalize", "remove_unreachable", "epsilon_closure"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}
