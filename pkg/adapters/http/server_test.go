package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset"
	"github.com/aretw0/powerset/pkg/domain"
	"github.com/aretw0/powerset/pkg/observability"
)

const epsilonStep = "0 1 2/a/0,ε,1;1,a,2/0/2"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine := powerset.New(powerset.WithMetrics(observability.NewMetrics(reg)))
	return NewHandler(engine, WithGatherer(reg))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestConvert(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/convert", EncodingRequest{Encoding: epsilonStep})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[MachineResponse](t, w)
	assert.True(t, resp.Machine.Deterministic)
	assert.Equal(t, "{0,1}", resp.Machine.Initial)
	assert.Equal(t, "0 1 2/a/0,a,1;1,a,2;2,a,2/0/1", resp.Encoding)
}

func TestConvert_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body any
		kind string
	}{
		{"malformed", EncodingRequest{Encoding: "0 1/a"}, "malformed"},
		{"undefined state", EncodingRequest{Encoding: "0/a/0,a,7/0/0"}, "undefined_reference"},
		{"reserved symbol", EncodingRequest{Encoding: "0/ε//0"}, "invalid_symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/convert", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.kind, decodeBody[ErrorResponse](t, w).Kind)
		})
	}

	w := do(t, h, http.MethodPost, "/v1/convert", map[string]string{"unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeBody[ErrorResponse](t, w).Kind)
}

func TestAccepts(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/accepts", AcceptsRequest{
		Encoding: epsilonStep,
		Inputs:   []string{"a", "", "aa"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[AcceptsResponse](t, w)
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].Accepted)
	assert.False(t, resp.Results[1].Accepted)
	assert.False(t, resp.Results[2].Accepted)
	assert.Empty(t, resp.Results[0].Trace)

	w = do(t, h, http.MethodPost, "/v1/accepts", AcceptsRequest{Encoding: epsilonStep, Inputs: []string{"a"}, Trace: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeBody[AcceptsResponse](t, w)
	assert.Equal(t, []string{"{0,1}", "{2}"}, resp.Results[0].Trace)

	w = do(t, h, http.MethodPost, "/v1/accepts", AcceptsRequest{Encoding: epsilonStep, Inputs: []string{"b"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_symbol", decodeBody[ErrorResponse](t, w).Kind)
}

func TestAccepts_TraceConvertsOnce(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/accepts", AcceptsRequest{
		Encoding: epsilonStep,
		Inputs:   []string{"a", "", "aa", "a"},
		Trace:    true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[AcceptsResponse](t, w)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, []string{"{0,1}"}, resp.Results[1].Trace)
	assert.Equal(t, resp.Results[0], resp.Results[3])

	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := w.Body.String()
	assert.Contains(t, metrics, `powerset_operations_total{operation="convert",outcome="ok"} 1`)
	assert.Contains(t, metrics, `powerset_operations_total{operation="trace",outcome="ok"} 1`)
}

func TestPruneCanonicalClosureEqual(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodPost, "/v1/prune", EncodingRequest{Encoding: "0 1 2/a/0,a,1/0/1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "0 1/a/0,a,1/0/1", decodeBody[MachineResponse](t, w).Encoding)

	w = do(t, h, http.MethodPost, "/v1/canonical", EncodingRequest{Encoding: "5 7/a/7,a,5/7/5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "0 1/a/0,a,1/0/1", decodeBody[MachineResponse](t, w).Encoding)

	w = do(t, h, http.MethodPost, "/v1/closure", ClosureRequest{Encoding: epsilonStep, States: []int{0}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"0", "1"}, decodeBody[ClosureResponse](t, w).States)

	w = do(t, h, http.MethodPost, "/v1/closure", ClosureRequest{Encoding: epsilonStep, States: []int{9}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/equal", EqualRequest{A: "5 7/a/7,a,5/7/5", B: "0 1/a/0,a,1/0/1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeBody[EqualResponse](t, w).Equal)
}

func TestMachines(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/v1/machines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{}, decodeBody[ListResponse](t, w).Names)

	w = do(t, h, http.MethodPut, "/v1/machines/step", PutMachineRequest{Encoding: epsilonStep})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	conv := decodeBody[MachineResponse](t, do(t, h, http.MethodPost, "/v1/convert", EncodingRequest{Encoding: epsilonStep}))
	w = do(t, h, http.MethodPut, "/v1/machines/step-dfa", PutMachineRequest{Machine: conv.Machine})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/v1/machines", nil)
	assert.Equal(t, []string{"step", "step-dfa"}, decodeBody[ListResponse](t, w).Names)

	w = do(t, h, http.MethodGet, "/v1/machines/step-dfa", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[MachineResponse](t, w)
	assert.True(t, got.Machine.Deterministic)
	assert.Equal(t, conv.Encoding, got.Encoding)

	w = do(t, h, http.MethodPost, "/v1/machines/step/accepts", AcceptsRequest{Inputs: []string{"a", "aa"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	results := decodeBody[AcceptsResponse](t, w).Results
	assert.True(t, results[0].Accepted)
	assert.False(t, results[1].Accepted)

	w = do(t, h, http.MethodPut, "/v1/machines/both", PutMachineRequest{Encoding: epsilonStep, Machine: conv.Machine})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/v1/machines/step", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/v1/machines/step", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, w).Kind)

	w = do(t, h, http.MethodPost, "/v1/machines/step/accepts", AcceptsRequest{Inputs: []string{"a"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthInfoMetrics(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)

	w = do(t, h, http.MethodGet, "/info", nil)
	assert.Contains(t, w.Body.String(), powerset.Version)

	do(t, h, http.MethodPost, "/v1/convert", EncodingRequest{Encoding: epsilonStep})
	w = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `powerset_operations_total{operation="convert",outcome="ok"} 1`))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodOptions, "/v1/convert", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.ErrMachineNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(&domain.SymbolError{Symbol: 'x', Reason: "not in alphabet"}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
