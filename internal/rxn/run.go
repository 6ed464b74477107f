package rxn

import (
	"fmt"
	"math"
)

// RunOptions parameterizes a run. Tmax and Steps define the uniform sample
// grid t_k = k*Tmax/Steps for k = 0..Steps; Steps == 0 records only the
// initial state. VarNames selects and orders the recorded species; nil
// records every species in introduction order. Seed selects a deterministic
// RNG; Source overrides it; with neither the RNG is seeded from OS entropy.
type RunOptions struct {
	Init     map[string]int64
	Tmax     float64
	Steps    int
	VarNames []string
	Seed     *uint64
	Source   Source
	Sparse   bool

	// refreshEvery overrides the sparse-mode sum refresh interval; tests
	// use 1 to make the sparse path bit-compatible with the dense path.
	refreshEvery int
}

// Result is the dense output table of a run: the time grid plus one row of
// populations per recorded species, all of the same length.
type Result struct {
	Times  []float64 `json:"times"`
	Names  []string  `json:"names"`
	Counts [][]int64 `json:"counts"`
}

// Species returns the recorded row for a species, or nil if it was not
// recorded.
func (r *Result) Species(name string) []int64 {
	for i, n := range r.Names {
		if n == name {
			return r.Counts[i]
		}
	}
	return nil
}

// NbSamples returns the number of recorded time points.
func (r *Result) NbSamples() int { return len(r.Times) }

func validateRunOptions(opts RunOptions) error {
	if opts.Tmax < 0 || math.IsNaN(opts.Tmax) {
		return fmt.Errorf("%w: tmax %v", ErrInvalidArgument, opts.Tmax)
	}
	if opts.Steps < 0 {
		return fmt.Errorf("%w: steps %d", ErrInvalidArgument, opts.Steps)
	}
	return nil
}

// recordedIndices resolves VarNames (or defaults to every species) into
// indices after compilation has frozen the species set.
func (m *Model) recordedIndices(varNames []string) ([]int, []string, error) {
	if varNames == nil {
		indices := make([]int, m.NbSpecies())
		for i := range indices {
			indices[i] = i
		}
		return indices, m.SpeciesNames(), nil
	}
	indices := make([]int, len(varNames))
	names := make([]string, len(varNames))
	for i, name := range varNames {
		idx, ok := m.speciesIndex[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: recorded species %q", ErrUndefinedSymbol, name)
		}
		indices[i] = idx
		names[i] = name
	}
	return indices, names, nil
}

// Run resets the model into a fresh engine and samples it on the uniform
// time grid. The recorded table and the grid are returned together; the
// engine is released when Run returns, leaving the model free for mutation.
func (m *Model) Run(opts RunOptions) (*Result, error) {
	if err := validateRunOptions(opts); err != nil {
		return nil, err
	}
	e, err := m.Compile(opts)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	indices, names, err := m.recordedIndices(opts.VarNames)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Times:  make([]float64, 0, opts.Steps+1),
		Names:  names,
		Counts: make([][]int64, len(indices)),
	}
	for i := range res.Counts {
		res.Counts[i] = make([]int64, 0, opts.Steps+1)
	}

	m.emitEvent(Event{Type: EventRunStarted, Model: m.Name})
	for k := 0; k <= opts.Steps; k++ {
		tk := 0.0
		if opts.Steps > 0 {
			tk = opts.Tmax * float64(k) / float64(opts.Steps)
		}
		if err := e.AdvanceUntil(tk); err != nil {
			return nil, err
		}
		res.Times = append(res.Times, tk)
		for i, s := range indices {
			res.Counts[i] = append(res.Counts[i], e.CountByIndex(s))
		}
		m.emitEvent(Event{Type: EventSampleRecorded, Model: m.Name, Time: tk, Counts: e.snapshot(indices, names)})
	}
	m.emitEvent(Event{Type: EventRunCompleted, Model: m.Name, Time: e.Time(), Counts: e.snapshot(indices, names)})
	return res, nil
}

// RunEvents runs the model recording the state after every single firing,
// until t >= Tmax or the total propensity reaches zero. Steps is ignored.
func (m *Model) RunEvents(opts RunOptions) (*Result, error) {
	if err := validateRunOptions(opts); err != nil {
		return nil, err
	}
	e, err := m.Compile(opts)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	indices, names, err := m.recordedIndices(opts.VarNames)
	if err != nil {
		return nil, err
	}

	res := &Result{Names: names, Counts: make([][]int64, len(indices))}
	record := func() {
		res.Times = append(res.Times, e.Time())
		for i, s := range indices {
			res.Counts[i] = append(res.Counts[i], e.CountByIndex(s))
		}
	}

	m.emitEvent(Event{Type: EventRunStarted, Model: m.Name})
	record()
	for e.Time() < opts.Tmax {
		fired, err := e.AdvanceOneReaction()
		if err != nil {
			return nil, err
		}
		if fired == NoReaction {
			break
		}
		record()
		m.emitEvent(Event{
			Type: EventReactionFired, Model: m.Name, Time: e.Time(),
			Reaction: e.ReactionName(fired), Counts: e.snapshot(indices, names),
		})
	}
	m.emitEvent(Event{Type: EventRunCompleted, Model: m.Name, Time: e.Time(), Counts: e.snapshot(indices, names)})
	return res, nil
}

// snapshot captures the recorded populations by name; nil when the model
// has no notification manager, so the hot path never builds maps nobody
// reads.
func (e *Engine) snapshot(indices []int, names []string) map[string]int64 {
	if e.model.notify == nil {
		return nil
	}
	out := make(map[string]int64, len(indices))
	for i, s := range indices {
		out[names[i]] = e.CountByIndex(s)
	}
	return out
}

// emitEvent dispatches through the notification manager if one is attached.
func (m *Model) emitEvent(ev Event) {
	if m.notify == nil {
		return
	}
	m.notify.Dispatch(ev)
}
