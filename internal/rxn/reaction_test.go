package rxn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexer() (func(string) int, map[string]int) {
	table := make(map[string]int)
	return func(name string) int {
		if idx, ok := table[name]; ok {
			return idx
		}
		idx := len(table)
		table[name] = idx
		return idx
	}, table
}

func TestBuildDelta(t *testing.T) {
	indexOf, table := indexer()
	// S + I -> I + I: S loses one, I gains one.
	delta := buildDelta([]string{"S", "I"}, []string{"I", "I"}, indexOf)
	require.Equal(t, map[string]int{"S": 0, "I": 1}, table)
	assert.Equal(t, []stoich{{index: 0, delta: -1}, {index: 1, delta: 1}}, delta)
}

func TestBuildDeltaCatalystCancels(t *testing.T) {
	indexOf, _ := indexer()
	// gene -> gene + mRNA: gene cancels out of the delta.
	delta := buildDelta([]string{"gene"}, []string{"gene", "mRNA"}, indexOf)
	assert.Equal(t, []stoich{{index: 1, delta: 1}}, delta)
}

func TestBuildDeltaDimerization(t *testing.T) {
	indexOf, _ := indexer()
	// 2 protein -> dimer.
	delta := buildDelta([]string{"protein", "protein"}, []string{"dimer"}, indexOf)
	assert.Equal(t, []stoich{{index: 0, delta: -2}, {index: 1, delta: 1}}, delta)
}

func TestBuildMultiplicities(t *testing.T) {
	indexOf, _ := indexer()
	mult := buildMultiplicities([]string{"protein", "protein", "atp"}, indexOf)
	assert.Equal(t, []speciesCount{{index: 0, n: 2}, {index: 1, n: 1}}, mult)
}

func TestReactionApply(t *testing.T) {
	cr := &compiledReaction{delta: []stoich{{index: 0, delta: -1}, {index: 2, delta: 2}}}
	counts := []int64{5, 7, 1}
	cr.apply(counts)
	assert.Equal(t, []int64{4, 7, 3}, counts)
}

func TestReactionString(t *testing.T) {
	r := Reaction{Rate: LMA(0.01), Reactants: []string{"I"}, Products: []string{"R"}}
	assert.Equal(t, "I --> R @ 0.01", r.String())

	r = Reaction{Name: "decay", Rate: LMA(1), Reactants: []string{"X"}, Products: nil}
	assert.Equal(t, "decay: X --> nil @ 1", r.String())

	r = Reaction{Rate: ExprRate("V * A / (Km + A)"), Reactants: []string{"A"}, Products: []string{"P"}}
	assert.Equal(t, "A --> P @ V * A / (Km + A)", r.String())
}
