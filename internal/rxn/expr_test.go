package rxn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileFor binds an expression against a fixed species table, failing the
// test on unknown names instead of registering them.
func compileFor(t *testing.T, src string, params map[string]float64, species map[string]int) *compiledExpr {
	t.Helper()
	tree := mustParse(t, src)
	ce, err := tree.compile(params, func(name string) int {
		idx, ok := species[name]
		require.True(t, ok, "expression %q references unknown species %q", src, name)
		return idx
	})
	require.NoError(t, err)
	return ce
}

func TestExprEval(t *testing.T) {
	params := map[string]float64{"k": 2.5, "Km": 20}
	species := map[string]int{"A": 0, "B": 1}
	counts := []int64{100, 3}

	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"k", 2.5},
		{"A", 100},
		{"k * A * B", 750},
		{"A / (Km + A)", 100.0 / 120},
		{"2 ^ 10", 1024},
		{"2 ^ -1", 0.5},
		{"-B", -3},
		{"exp(0)", 1},
		{"ln(exp(2))", 2},
		{"log(exp(2))", 2},
		{"sqrt(B * B)", 3},
		{"pow(B, 2)", 9},
		{"min(A, B)", 3},
		{"max(A, B)", 100},
		{"floor(2.7) + ceil(2.1)", 5},
		{"abs(B - A)", 97},
		{"sin(0) + cos(0)", 1},
		{"tan(0)", 0},
	}
	for _, tc := range cases {
		ce := compileFor(t, tc.src, params, species)
		got, err := ce.eval(counts)
		require.NoError(t, err, "evaluating %q", tc.src)
		assert.InDelta(t, tc.want, got, 1e-12, "value of %q", tc.src)
	}
}

func TestExprDivisionByZero(t *testing.T) {
	ce := compileFor(t, "1 / B", nil, map[string]int{"B": 0})
	_, err := ce.eval([]int64{0})
	require.ErrorIs(t, err, ErrDivisionByZero)

	// Zero numerator does not excuse a zero denominator.
	ce = compileFor(t, "0 / B", nil, map[string]int{"B": 0})
	_, err = ce.eval([]int64{0})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestExprParameterFolding(t *testing.T) {
	tree := mustParse(t, "k1 * k2")
	ce, err := tree.compile(map[string]float64{"k1": 2, "k2": 3}, func(string) int {
		t.Fatal("no species should be registered")
		return 0
	})
	require.NoError(t, err)
	refs := make(map[int]struct{})
	ce.speciesIndices(refs)
	assert.Empty(t, refs)
	v, err := ce.eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestExprSpeciesIndices(t *testing.T) {
	species := map[string]int{"A": 0, "B": 1, "C": 2}
	ce := compileFor(t, "k * A * (B + A)", map[string]float64{"k": 1}, species)
	refs := make(map[int]struct{})
	ce.speciesIndices(refs)
	assert.Equal(t, map[int]struct{}{0: {}, 1: {}}, refs)
}

func TestExprNames(t *testing.T) {
	tree := mustParse(t, "k * A * (B + A) - exp(C)")
	assert.Equal(t, []string{"k", "A", "B", "C"}, tree.Names())
}

func TestExprInfLiteralArithmetic(t *testing.T) {
	// A deliberate inf literal in a denominator is usable; the quotient is
	// finite.
	ce := compileFor(t, "1 / inf", nil, nil)
	v, err := ce.eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestExprEqualNaN(t *testing.T) {
	a := mustParse(t, "nan")
	b := mustParse(t, "nan")
	assert.True(t, a.Equal(b))
	c := mustParse(t, "1")
	assert.False(t, a.Equal(c))
}

func TestExprLiteralFormatting(t *testing.T) {
	assert.Equal(t, "inf", formatLiteral(math.Inf(1)))
	assert.Equal(t, "-inf", formatLiteral(math.Inf(-1)))
	assert.Equal(t, "nan", formatLiteral(math.NaN()))
	assert.Equal(t, "0.0001", formatLiteral(1e-4))
	assert.Equal(t, "1e-07", formatLiteral(1e-7))
}
