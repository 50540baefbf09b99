package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset/internal/presentation/graph"
	"github.com/aretw0/powerset/pkg/codec"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		dfa      bool
		contains []string
		excludes []string
	}{
		{
			name:     "Initial And Accepting Shapes",
			encoding: "0 1/a/0,a,1/0/1",
			contains: []string{
				"graph LR",
				"start_point --> q0",
				`q0(("0"))`,
				`q1((("1")))`,
				`q0 -- "a" --> q1`,
			},
			excludes: []string{"class q1 dead"},
		},
		{
			name:     "Parallel Edges Merge",
			encoding: "0 1/a b/0,a,1;0,b,1;0,ε,1/0/1",
			contains: []string{
				`q0 -- "a,b,ε" --> q1`,
			},
		},
		{
			name:     "Composite Labels And Dead State",
			encoding: "0 1 2/a/0,ε,1;1,a,2/0/2",
			dfa:      true,
			contains: []string{
				`q0(("{0,1}"))`,
				`q1((("{2}")))`,
				`q2(("{}"))`,
				`q2 -- "a" --> q2`,
				"class q2 dead;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := codec.Parse(tt.encoding)
			require.NoError(t, err)

			var got string
			if tt.dfa {
				got = graph.GenerateMermaid(n.ToDFA(), nil)
			} else {
				got = graph.GenerateMermaid(n, nil)
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
			assert.NotContains(t, got, "Overlay Styles")
		})
	}
}

func TestGenerateMermaid_TraceOverlay(t *testing.T) {
	n, err := codec.Parse("0 1/a b/0,a,0;0,b,1;1,a,0;1,b,1/0/1")
	require.NoError(t, err)
	d := n.ToDFA()

	trace, err := d.Run("ab")
	require.NoError(t, err)

	got := graph.GenerateMermaid(d, graph.TraceOverlay(trace))
	assert.Contains(t, got, "%% Overlay Styles")
	assert.Equal(t, 1, strings.Count(got, "class q0 visited;"), "visited states are styled once")
	assert.Contains(t, got, "class q1 visited;")
	assert.Contains(t, got, "class q1 current;")
}
