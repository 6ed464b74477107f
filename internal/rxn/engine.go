package rxn

import (
	"fmt"
	"math"
	"sort"
)

// NoReaction is the sentinel returned by AdvanceOneReaction when the total
// propensity is zero and nothing can fire.
const NoReaction = -1

// defaultRefreshEvery bounds floating-point drift of the incrementally
// maintained propensity sum in sparse mode: after this many sparse updates
// the sum is recomputed from scratch. The refresh consumes no RNG draws.
const defaultRefreshEvery = 1000

// Engine owns the run-time state of a simulation: current time, species
// counts, per-reaction propensities and their cached sum, and the RNG.
// Engines are produced by Model.Compile and are single-threaded; the model
// rejects mutation until the engine is closed.
type Engine struct {
	model     *Model
	reactions []*compiledReaction
	deps      [][]int

	t        float64
	counts   []int64
	rates    []float64
	sumRates float64

	rng Source

	sparse       bool
	refreshEvery int
	sinceRefresh int
	closed       bool
}

// Compile binds the model's reactions to species indices and returns an
// engine initialized at t = 0 with the given initial counts. The model is
// locked against mutation until Close is called. Initial counts for species
// not referenced by any reaction are accepted with a warning through the
// model's logger.
func (m *Model) Compile(opts RunOptions) (*Engine, error) {
	if m.running {
		return nil, fmt.Errorf("%w: model already has a running engine", ErrInvalidState)
	}
	compiled, err := m.compileReactions()
	if err != nil {
		return nil, err
	}

	// Initial counts, validated and registered in a stable order.
	initNames := make([]string, 0, len(opts.Init))
	for name := range opts.Init {
		initNames = append(initNames, name)
	}
	sort.Strings(initNames)
	for _, name := range initNames {
		if opts.Init[name] < 0 {
			return nil, fmt.Errorf("%w: initial count of %q is negative", ErrInvalidArgument, name)
		}
		if _, known := m.speciesIndex[name]; !known {
			m.logger.Warnf("species %q is not involved in any reaction; consider a parameter instead", name)
			m.addSpecies(name)
		}
	}

	e := &Engine{
		model:        m,
		reactions:    compiled,
		counts:       make([]int64, m.NbSpecies()),
		rates:        make([]float64, len(compiled)),
		sparse:       opts.Sparse,
		refreshEvery: opts.refreshEvery,
	}
	if e.refreshEvery <= 0 {
		e.refreshEvery = defaultRefreshEvery
	}
	for _, name := range initNames {
		e.counts[m.speciesIndex[name]] = opts.Init[name]
	}

	switch {
	case opts.Source != nil:
		e.rng = opts.Source
	case opts.Seed != nil:
		e.rng = NewSource(*opts.Seed)
	default:
		e.rng = NewEntropySource()
	}

	if e.sparse {
		e.deps = buildDependencyGraph(compiled, m.NbSpecies())
	}
	if err := e.recomputeAll(); err != nil {
		return nil, fmt.Errorf("initial propensity: %w", err)
	}

	m.running = true
	return e, nil
}

// Close releases the engine's lock on its model. The engine must not be
// advanced afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.model.running = false
}

// Time returns the current simulation time.
func (e *Engine) Time() float64 { return e.t }

// SetTime sets the current simulation time.
func (e *Engine) SetTime(t float64) error {
	if t < 0 || math.IsNaN(t) {
		return fmt.Errorf("%w: time %v", ErrInvalidArgument, t)
	}
	e.t = t
	return nil
}

// Count returns the population of a species by name.
func (e *Engine) Count(name string) (int64, error) {
	idx, ok := e.model.speciesIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: species %q", ErrUndefinedSymbol, name)
	}
	return e.counts[idx], nil
}

// CountByIndex returns the population of a species by index.
func (e *Engine) CountByIndex(idx int) int64 { return e.counts[idx] }

// SetCount sets the population of a species and re-evaluates every
// propensity against the new state.
func (e *Engine) SetCount(name string, value int64) error {
	if value < 0 {
		return fmt.Errorf("%w: count %d for species %q", ErrInvalidArgument, value, name)
	}
	idx, ok := e.model.speciesIndex[name]
	if !ok {
		return fmt.Errorf("%w: species %q", ErrUndefinedSymbol, name)
	}
	e.counts[idx] = value
	return e.recomputeAll()
}

// SumRates returns the cached total propensity.
func (e *Engine) SumRates() float64 { return e.sumRates }

// recomputeAll re-evaluates every propensity and the total, summing in
// index order.
func (e *Engine) recomputeAll() error {
	sum := 0.0
	for i, r := range e.reactions {
		v, err := r.rate.propensity(e.counts)
		if err != nil {
			return fmt.Errorf("reaction %d: %w", i, err)
		}
		if v < 0 {
			return fmt.Errorf("reaction %d: %w: %v", i, ErrRateNegative, v)
		}
		e.rates[i] = v
		sum += v
	}
	e.sumRates = sum
	return nil
}

// updateAfterFiring refreshes propensities after reaction mu fired: all of
// them on the dense path, only mu's dependents on the sparse path.
func (e *Engine) updateAfterFiring(mu int) error {
	if !e.sparse {
		return e.recomputeAll()
	}
	for _, j := range e.deps[mu] {
		v, err := e.reactions[j].rate.propensity(e.counts)
		if err != nil {
			return fmt.Errorf("reaction %d: %w", j, err)
		}
		if v < 0 {
			return fmt.Errorf("reaction %d: %w: %v", j, ErrRateNegative, v)
		}
		e.sumRates += v - e.rates[j]
		e.rates[j] = v
	}
	e.sinceRefresh++
	if e.sinceRefresh >= e.refreshEvery {
		e.sinceRefresh = 0
		sum := 0.0
		for _, v := range e.rates {
			sum += v
		}
		e.sumRates = sum
	}
	return nil
}

// selectReaction returns the smallest index whose propensity prefix sum
// reaches the threshold; lower indices win ties. The scan allocates
// nothing.
func (e *Engine) selectReaction(threshold float64) int {
	acc := 0.0
	last := 0
	for i, v := range e.rates {
		acc += v
		if acc >= threshold {
			return i
		}
		if v > 0 {
			last = i
		}
	}
	// Floating rounding left the full prefix below the threshold; fall back
	// to the last reaction that can fire.
	return last
}

// AdvanceUntil repeatedly performs selection steps while t < target and
// returns once t >= target. Zero total propensity short-circuits: time
// jumps to the target and no further state change occurs. A target earlier
// than the current time is an error.
func (e *Engine) AdvanceUntil(target float64) error {
	if target < e.t || math.IsNaN(target) {
		return fmt.Errorf("%w: target time %v is before current time %v", ErrInvalidArgument, target, e.t)
	}
	for e.t < target {
		a0 := e.sumRates
		if !(a0 > 0) {
			e.t = target
			return nil
		}
		// The tau draw strictly precedes the selection draw.
		u1 := e.rng.Uniform01()
		u2 := e.rng.Uniform01()
		tau := -math.Log(u1) / a0
		if e.t+tau > target {
			e.t = target
			return nil
		}
		e.t += tau
		mu := e.selectReaction(u2 * a0)
		e.reactions[mu].apply(e.counts)
		if err := e.updateAfterFiring(mu); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceOneReaction performs exactly one selection and firing regardless
// of time and returns the fired reaction index, or NoReaction if the total
// propensity is zero.
func (e *Engine) AdvanceOneReaction() (int, error) {
	a0 := e.sumRates
	if !(a0 > 0) {
		return NoReaction, nil
	}
	u1 := e.rng.Uniform01()
	u2 := e.rng.Uniform01()
	e.t += -math.Log(u1) / a0
	mu := e.selectReaction(u2 * a0)
	e.reactions[mu].apply(e.counts)
	if err := e.updateAfterFiring(mu); err != nil {
		return mu, err
	}
	return mu, nil
}

// ReactionName returns the name of a reaction by index, or its rendered
// form when unnamed.
func (e *Engine) ReactionName(idx int) string {
	if idx < 0 || idx >= len(e.reactions) {
		return ""
	}
	if e.reactions[idx].name != "" {
		return e.reactions[idx].name
	}
	return e.model.reactions[idx].String()
}
