package rxn

import "sort"

// buildDependencyGraph computes, for each reaction i, the sorted list of
// reactions whose propensities must be re-evaluated after i fires:
// deps[i] = { j : reads(j) ∩ mutates(i) ≠ ∅ }, always including i itself.
// The graph is built once at run start and frozen for the run.
func buildDependencyGraph(reactions []*compiledReaction, nbSpecies int) [][]int {
	// readers[s] = reactions whose rate reads species s.
	readers := make([][]int, nbSpecies)
	for j, r := range reactions {
		for s := range r.rate.reads() {
			readers[s] = append(readers[s], j)
		}
	}

	deps := make([][]int, len(reactions))
	for i, r := range reactions {
		set := map[int]struct{}{i: {}}
		for _, s := range r.mutates() {
			for _, j := range readers[s] {
				set[j] = struct{}{}
			}
		}
		list := make([]int, 0, len(set))
		for j := range set {
			list = append(list, j)
		}
		sort.Ints(list)
		deps[i] = list
	}
	return deps
}
