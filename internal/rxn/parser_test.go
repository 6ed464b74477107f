package rxn

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Expr {
	t.Helper()
	e, err := ParseExpr(src)
	require.NoError(t, err, "parsing %q", src)
	return e
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1+2*3", "1 + 2 * 3"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"1-2-3", "1 - 2 - 3"},
		{"1-(2-3)", "1 - (2 - 3)"},
		{"2*x+1", "2 * x + 1"},
		{"2*(x+1)", "2 * (x + 1)"},
		{"a/b/c", "a / b / c"},
		{"-x", "-x"},
		{"-x^2", "-x ^ 2"},
		{"(-x)^2", "(-x) ^ 2"},
		{"2^-3", "2 ^ -3"},
		{"2^3^4", "2 ^ 3 ^ 4"},
		{"(2^3)^4", "(2 ^ 3) ^ 4"},
		{"-(a+b)", "-(a + b)"},
		{"exp(-k*t_half)", "exp(-k * t_half)"},
		{"min(a, b) + max(a, b)", "min(a, b) + max(a, b)"},
		{"V*A/(Km+A)", "V * A / (Km + A)"},
	}
	for _, tc := range cases {
		e := mustParse(t, tc.src)
		assert.Equal(t, tc.want, e.String(), "formatting of %q", tc.src)
	}
}

func TestParseAssociativity(t *testing.T) {
	// a-b-c parses as (a-b)-c.
	e := mustParse(t, "a-b-c")
	require.Equal(t, ExprSub, e.Kind)
	assert.Equal(t, ExprSub, e.Args[0].Kind)
	assert.Equal(t, "c", e.Args[1].Name)

	// a^b^c parses as a^(b^c).
	e = mustParse(t, "a^b^c")
	require.Equal(t, ExprPow, e.Kind)
	assert.Equal(t, "a", e.Args[0].Name)
	assert.Equal(t, ExprPow, e.Args[1].Kind)
}

func TestParseUnaryMinusBinding(t *testing.T) {
	// Unary minus binds looser than ^: -a^b is -(a^b).
	e := mustParse(t, "-a^b")
	require.Equal(t, ExprNeg, e.Kind)
	assert.Equal(t, ExprPow, e.Args[0].Kind)

	// And tighter than *: -a*b is (-a)*b.
	e = mustParse(t, "-a*b")
	require.Equal(t, ExprMul, e.Kind)
	assert.Equal(t, ExprNeg, e.Args[0].Kind)

	// Double negation is accepted.
	e = mustParse(t, "--a")
	require.Equal(t, ExprNeg, e.Kind)
	assert.Equal(t, ExprNeg, e.Args[0].Kind)
}

func TestParseNumberLiterals(t *testing.T) {
	cases := map[string]float64{
		"0":      0,
		"3.25":   3.25,
		".5":     0.5,
		"2.":     2,
		"1e3":    1000,
		"1.5e-2": 0.015,
		"2E+1":   20,
	}
	for src, want := range cases {
		e := mustParse(t, src)
		require.Equal(t, ExprLit, e.Kind, "parsing %q", src)
		assert.Equal(t, want, e.Lit, "value of %q", src)
	}
}

func TestParseInfNanLiterals(t *testing.T) {
	e := mustParse(t, "inf")
	require.Equal(t, ExprLit, e.Kind)
	assert.True(t, math.IsInf(e.Lit, 1))

	e = mustParse(t, "-inf")
	require.Equal(t, ExprNeg, e.Kind)
	assert.True(t, math.IsInf(e.Args[0].Lit, 1))

	e = mustParse(t, "nan")
	require.Equal(t, ExprLit, e.Kind)
	assert.True(t, math.IsNaN(e.Lit))

	// Case-insensitive, and never identifiers.
	e = mustParse(t, "Inf + NAN")
	require.Equal(t, ExprAdd, e.Kind)
	assert.Equal(t, ExprLit, e.Args[0].Kind)
	assert.Equal(t, ExprLit, e.Args[1].Kind)
}

func TestParseIdentifiers(t *testing.T) {
	for _, src := range []string{"x", "_x", "k_on", "Km", "__", "a1b2"} {
		e := mustParse(t, src)
		require.Equal(t, ExprName, e.Kind, "parsing %q", src)
		assert.Equal(t, src, e.Name)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src    string
		offset int
	}{
		{"", 0},
		{"1 +", 3},
		{"(1+2", 4},
		{"1 + * 2", 4},
		{"foo(1)", 0},       // unknown function
		{"min(1)", 0},       // wrong arity
		{"pow(1, 2, 3)", 0}, // wrong arity
		{"1 $ 2", 2},
		{"a b", 2},
		{"1..2", 2}, // lexes as "1." then ".2"; the second literal is unexpected
	}
	for _, tc := range cases {
		_, err := ParseExpr(tc.src)
		require.Error(t, err, "parsing %q", tc.src)
		var perr *ParseError
		require.ErrorAs(t, err, &perr, "parsing %q", tc.src)
		assert.Equal(t, tc.offset, perr.Offset, "offset for %q: %v", tc.src, perr)
	}
}

func TestParseWhitespaceInsignificant(t *testing.T) {
	a := mustParse(t, "1+2*x")
	b := mustParse(t, " 1\t+ 2 *\n x ")
	assert.True(t, a.Equal(b))
}

func TestParseFormatRoundTrip(t *testing.T) {
	exprs := []string{
		"1",
		"x",
		"1 + 2",
		"1 - 2 - 3",
		"1 - (2 - 3)",
		"2 * x + 1",
		"a / (b / c)",
		"-x",
		"--x",
		"-(a + b) * c",
		"a ^ b ^ c",
		"(a ^ b) ^ c",
		"2 ^ -3",
		"(-x) ^ 2",
		"exp(-10 * t)",
		"pow(x, 2) + min(a, b) - max(a, b)",
		"sqrt(abs(x - y))",
		"floor(x) + ceil(y)",
		"sin(x) * cos(y) / tan(z)",
		"log(x) + ln(y)",
		"V * S / (Km + S)",
		"k1 * A * B - k2 * C",
		"inf",
		"nan",
		"1.5e-7 * X ^ 2",
	}
	for _, src := range exprs {
		tree := mustParse(t, src)
		again, err := ParseExpr(tree.String())
		require.NoError(t, err, "reparsing %q -> %q", src, tree.String())
		assert.True(t, tree.Equal(again), "round trip of %q via %q", src, tree.String())
	}
}

func TestParseErrorIsNotSentinel(t *testing.T) {
	_, err := ParseExpr("1 +")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidArgument))
}
