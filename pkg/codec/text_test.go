package codec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/powerset/pkg/codec"
	"github.com/aretw0/powerset/pkg/domain"
)

const endsWithB = "0 1/a b/0,a,0;0,b,1;1,a,0;1,b,1/0/1"

func TestParse(t *testing.T) {
	t.Run("Parses All Sections", func(t *testing.T) {
		n, err := codec.Parse(endsWithB)
		require.NoError(t, err)

		assert.Equal(t, "0 1", domain.EncodeStates(n.States()))
		assert.Equal(t, "a b", n.Alphabet().Encode())
		assert.Len(t, n.Transitions(), 4)
		assert.Equal(t, domain.Atomic(0), n.Initial())
		assert.Equal(t, []domain.State{domain.Atomic(1)}, n.Accepting())
	})

	t.Run("Ignores Surrounding Whitespace", func(t *testing.T) {
		n, err := codec.Parse("  0  1 / a  b / 0 , a , 1 ; 1,b,0 / 0 / 1 ")
		require.NoError(t, err)
		assert.Equal(t, "0 1/a b/0,a,1;1,b,0/0/1", codec.Encode(n))
	})

	t.Run("Missing Accepting Section Means None", func(t *testing.T) {
		n, err := codec.Parse("0 1/a/0,a,1/0")
		require.NoError(t, err)
		assert.Empty(t, n.Accepting())
	})

	t.Run("Empty Transition Section", func(t *testing.T) {
		n, err := codec.Parse("0/a//0/0")
		require.NoError(t, err)
		assert.Empty(t, n.Transitions())
		ok, err := n.Accepts("")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Epsilon Transitions", func(t *testing.T) {
		n, err := codec.Parse("0 1 2/a/0,ε,1;1,a,2/0/2")
		require.NoError(t, err)
		assert.Equal(t, []domain.State{domain.Atomic(0), domain.Atomic(1)}, n.EpsilonClosure(domain.Atomic(0)))
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Too Few Sections", "0 1/a/0,a,1", domain.ErrMalformedEncoding},
		{"Too Many Sections", "0/a//0/0/0", domain.ErrMalformedEncoding},
		{"No States", "/a//0/", domain.ErrMalformedEncoding},
		{"Non Integer State", "x/a//0/", domain.ErrMalformedEncoding},
		{"Non Integer Initial", "0/a//q/", domain.ErrMalformedEncoding},
		{"Multi Character Symbol", "0/ab//0/", domain.ErrMalformedEncoding},
		{"Trailing Semicolon", "0 1/a/0,a,1;/0/1", domain.ErrMalformedEncoding},
		{"Short Transition", "0 1/a/0,a/0/1", domain.ErrMalformedEncoding},
		{"Reserved Alphabet Symbol", "0/ε//0/", domain.ErrInvalidAlphabetSymbol},
		{"Undeclared Destination", "0/a/0,a,1/0/", domain.ErrUndefinedReference},
		{"Undeclared Symbol", "0/a/0,b,0/0/", domain.ErrUndefinedReference},
		{"Undeclared Initial", "0/a//5/", domain.ErrUndefinedReference},
		{"Undeclared Accepting", "0/a//0/7", domain.ErrUndefinedReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_SyntaxErrorDetails(t *testing.T) {
	_, err := codec.Parse("0 1/a/0,a,1;/0/1")

	var syntax *codec.SyntaxError
	require.True(t, errors.As(err, &syntax))
	assert.Equal(t, "transitions", syntax.Section)
	assert.Contains(t, syntax.Error(), "empty transition")
}

func TestParse_ReportsEveryReference(t *testing.T) {
	_, err := codec.Parse("0/a/0,a,1;0,b,0/4/9")
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `initial: undefined state "4"`)
	assert.Contains(t, msg, `accepting: undefined state "9"`)
	assert.Contains(t, msg, `undefined state "1"`)
	assert.Contains(t, msg, `undefined symbol "b"`)
}

func TestParseDFA(t *testing.T) {
	t.Run("Accepts Total Deterministic Machine", func(t *testing.T) {
		d, err := codec.ParseDFA(endsWithB)
		require.NoError(t, err)
		ok, err := d.Accepts("aab")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Rejects Partial Machine", func(t *testing.T) {
		_, err := codec.ParseDFA("0 1/a b/0,a,1/0/1")
		assert.ErrorIs(t, err, domain.ErrNotDeterministic)
	})

	t.Run("Rejects Epsilon", func(t *testing.T) {
		_, err := codec.ParseDFA("0/a/0,a,0;0,ε,0/0/0")
		assert.ErrorIs(t, err, domain.ErrNotDeterministic)
	})
}

func TestEncode(t *testing.T) {
	t.Run("Round Trips Atomic Machines", func(t *testing.T) {
		n, err := codec.Parse(endsWithB)
		require.NoError(t, err)
		assert.Equal(t, endsWithB, codec.Encode(n))
	})

	t.Run("Sorts Transitions", func(t *testing.T) {
		n, err := codec.Parse("1 0/b a/1,b,0;0,b,1;0,a,0/0/1")
		require.NoError(t, err)
		assert.Equal(t, "0 1/b a/0,a,0;0,b,1;1,b,0/0/1", codec.Encode(n))
	})

	t.Run("Renumbers Composite States", func(t *testing.T) {
		n, err := codec.Parse("0 1 2/a/0,ε,1;1,a,2/0/2")
		require.NoError(t, err)

		dfa := n.ToDFA()
		// Sorted: {0,1} {2} {}
		assert.Equal(t, "0 1 2/a/0,a,1;1,a,2;2,a,2/0/1", codec.Encode(dfa))
	})

	t.Run("Encoding Of Converted Machine Preserves Language", func(t *testing.T) {
		n, err := codec.Parse("0 1 2 3/a b/0,a,0;0,b,0;0,a,1;1,b,2;2,b,3/0/3")
		require.NoError(t, err)

		back, err := codec.Parse(codec.Encode(n.ToDFA()))
		require.NoError(t, err)
		for _, w := range []string{"", "abb", "aabb", "babb", "ab", "abba", "bbbabb"} {
			want, err := n.Accepts(w)
			require.NoError(t, err)
			got, err := back.Accepts(w)
			require.NoError(t, err)
			assert.Equal(t, want, got, "input %q", w)
		}
	})

	t.Run("Canonical Encoding Is Stable", func(t *testing.T) {
		n, err := codec.Parse("5 3 9/a b/5,a,3;3,b,9;9,a,5;9,ε,3/5/9")
		require.NoError(t, err)

		once := n.Canonical()
		assert.Equal(t, codec.Encode(once), codec.Encode(once.Canonical()))

		reparsed, err := codec.Parse(codec.Encode(once))
		require.NoError(t, err)
		assert.Equal(t, codec.Encode(once), codec.Encode(reparsed.Canonical()))
	})
}
