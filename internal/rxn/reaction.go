package rxn

import (
	"sort"
	"strings"
)

// Reaction is one directed reaction of the network: a rate, reactant and
// product multisets (given as name lists, repetition means multiplicity),
// and an optional name. Reversible reactions are stored as two directed
// reactions.
type Reaction struct {
	Name      string
	Rate      RateSpec
	Reactants []string
	Products  []string

	// expr holds the parsed tree for expression rates; set by AddReaction.
	expr *Expr
}

// String renders the reaction the way it would appear in a model listing,
// e.g. "S + I --> I + I @ 0.0001".
func (r *Reaction) String() string {
	var sb strings.Builder
	if r.Name != "" {
		sb.WriteString(r.Name)
		sb.WriteString(": ")
	}
	sb.WriteString(sideString(r.Reactants))
	sb.WriteString(" --> ")
	sb.WriteString(sideString(r.Products))
	sb.WriteString(" @ ")
	sb.WriteString(r.Rate.String())
	return sb.String()
}

func sideString(names []string) string {
	if len(names) == 0 {
		return "nil"
	}
	return strings.Join(names, " + ")
}

// compiledReaction is the run-time form: a bound rate plus the sparse
// stoichiometry delta applied on firing.
type compiledReaction struct {
	name  string
	rate  *compiledRate
	delta []stoich
}

// apply adds the reaction's stoichiometry delta to the counts vector.
func (c *compiledReaction) apply(counts []int64) {
	for _, s := range c.delta {
		counts[s.index] += s.delta
	}
}

// mutates returns the species indices with non-zero delta.
func (c *compiledReaction) mutates() []int {
	out := make([]int, 0, len(c.delta))
	for _, s := range c.delta {
		out = append(out, s.index)
	}
	return out
}

// buildDelta computes the sparse net stoichiometry change of a reaction,
// ordered by species index. A species appearing with equal multiplicity on
// both sides (a catalyst) cancels out of the delta but still counts as a
// read for LMA rates.
func buildDelta(reactants, products []string, indexOf func(string) int) []stoich {
	net := make(map[int]int64)
	for _, name := range reactants {
		net[indexOf(name)]--
	}
	for _, name := range products {
		net[indexOf(name)]++
	}
	delta := make([]stoich, 0, len(net))
	for index, d := range net {
		if d != 0 {
			delta = append(delta, stoich{index: index, delta: d})
		}
	}
	sort.Slice(delta, func(i, j int) bool { return delta[i].index < delta[j].index })
	return delta
}

// buildMultiplicities collapses a reactant name list into sparse
// multiplicities ordered by species index.
func buildMultiplicities(reactants []string, indexOf func(string) int) []speciesCount {
	mult := make(map[int]int)
	for _, name := range reactants {
		mult[indexOf(name)]++
	}
	out := make([]speciesCount, 0, len(mult))
	for index, n := range mult {
		out = append(out, speciesCount{index: index, n: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}
