package rxn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileModel is a test helper returning the compiled reactions of a model.
func compileModel(t *testing.T, m *Model) []*compiledReaction {
	t.Helper()
	compiled, err := m.compileReactions()
	require.NoError(t, err)
	return compiled
}

func TestDependencyGraphSIR(t *testing.T) {
	m := NewModel("sir")
	require.NoError(t, m.AddReaction(LMA(1e-4), []string{"S", "I"}, []string{"I", "I"}))
	require.NoError(t, m.AddReaction(LMA(0.01), []string{"I"}, []string{"R"}))

	deps := buildDependencyGraph(compileModel(t, m), m.NbSpecies())
	// Infection mutates S and I; both rates read one of them.
	assert.Equal(t, []int{0, 1}, deps[0])
	// Recovery mutates I and R; both rates read I.
	assert.Equal(t, []int{0, 1}, deps[1])
}

func TestDependencyGraphIsolatedChains(t *testing.T) {
	m := NewModel("chains")
	// Two independent decay chains: firing one never affects the other.
	require.NoError(t, m.AddReaction(LMA(1), []string{"A"}, []string{"B"}))
	require.NoError(t, m.AddReaction(LMA(1), []string{"B"}, nil))
	require.NoError(t, m.AddReaction(LMA(1), []string{"X"}, []string{"Y"}))
	require.NoError(t, m.AddReaction(LMA(1), []string{"Y"}, nil))

	deps := buildDependencyGraph(compileModel(t, m), m.NbSpecies())
	assert.Equal(t, []int{0, 1}, deps[0])
	assert.Equal(t, []int{1}, deps[1])
	assert.Equal(t, []int{2, 3}, deps[2])
	assert.Equal(t, []int{3}, deps[3])
}

func TestDependencyGraphSelfAlwaysIncluded(t *testing.T) {
	m := NewModel("self")
	// gene -> gene + mRNA leaves gene unchanged: the delta is empty for the
	// rate's only read, yet the reaction still depends on itself.
	require.NoError(t, m.AddReaction(LMA(25), []string{"gene"}, []string{"gene", "mRNA"}))

	deps := buildDependencyGraph(compileModel(t, m), m.NbSpecies())
	assert.Equal(t, []int{0}, deps[0])
}

func TestDependencyGraphExpressionReads(t *testing.T) {
	m := NewModel("expr-reads")
	require.NoError(t, m.SetParameter("V", 1))
	require.NoError(t, m.SetParameter("Km", 20))
	// Reaction 0 mutates A and P. Reaction 1's expression reads A
	// symbolically, so it depends on reaction 0.
	require.NoError(t, m.AddReaction(LMA(1), []string{"A"}, []string{"P"}))
	require.NoError(t, m.AddReaction(ExprRate("V * A / (Km + A)"), []string{"B"}, []string{"C"}))

	deps := buildDependencyGraph(compileModel(t, m), m.NbSpecies())
	assert.Contains(t, deps[0], 1)
}

func TestDependencyGraphParameterOnlyRate(t *testing.T) {
	m := NewModel("const-rate")
	require.NoError(t, m.SetParameter("b", 14))
	// A parameter-only expression rate reads no species: nothing but the
	// reaction itself ever re-evaluates it.
	require.NoError(t, m.AddReaction(ExprRate("b"), nil, []string{"A"}))
	require.NoError(t, m.AddReaction(LMA(1), []string{"A"}, nil))

	deps := buildDependencyGraph(compileModel(t, m), m.NbSpecies())
	// Firing reaction 0 still changes A, which reaction 1 reads.
	assert.Equal(t, []int{0, 1}, deps[0])
	// Reaction 0 is a dependent of no reaction but itself.
	assert.Equal(t, []int{1}, deps[1])
}
