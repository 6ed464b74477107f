package rxn

import (
	"fmt"
	"math"
	"strings"
)

// Model describes a reaction network: species (created on first mention,
// with append-only indices), named scalar parameters, and directed
// reactions. A Model is not safe for concurrent use; distinct models are
// independent.
type Model struct {
	Name string

	speciesIndex map[string]int
	speciesNames []string
	params       map[string]float64
	reactions    []Reaction

	logger  Logger
	notify  *NotificationManager
	running bool
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:         name,
		speciesIndex: make(map[string]int),
		params:       make(map[string]float64),
		logger:       NewNoOpLogger(),
	}
}

// NewModelWithLogger creates an empty model with an injected logger.
func NewModelWithLogger(name string, logger Logger) *Model {
	m := NewModel(name)
	if logger != nil {
		m.logger = logger
	}
	return m
}

// SetNotificationManager attaches a notification manager; run events are
// dispatched through it. Pass nil to disable.
func (m *Model) SetNotificationManager(nm *NotificationManager) {
	m.notify = nm
}

// addSpecies registers a species on first mention and returns its index.
// Indices are append-only: once assigned they never change.
func (m *Model) addSpecies(name string) int {
	if idx, ok := m.speciesIndex[name]; ok {
		return idx
	}
	idx := len(m.speciesNames)
	m.speciesIndex[name] = idx
	m.speciesNames = append(m.speciesNames, name)
	return idx
}

// NbSpecies returns the number of registered species.
func (m *Model) NbSpecies() int { return len(m.speciesNames) }

// NbReactions returns the number of directed reactions. A reversible
// reaction counts as two.
func (m *Model) NbReactions() int { return len(m.reactions) }

// SpeciesNames returns the species names in index order.
func (m *Model) SpeciesNames() []string {
	out := make([]string, len(m.speciesNames))
	copy(out, m.speciesNames)
	return out
}

// SpeciesIndex returns the index of a species and whether it exists.
func (m *Model) SpeciesIndex(name string) (int, bool) {
	idx, ok := m.speciesIndex[name]
	return idx, ok
}

// SetParameter sets a named scalar parameter. Parameters are immutable for
// the duration of a run but may be changed between runs. Any string is
// accepted as a name, including "inf" and "nan"; such parameters are
// unreachable from expression text, where those spellings are literals.
func (m *Model) SetParameter(name string, value float64) error {
	if m.running {
		return fmt.Errorf("%w: cannot set parameter %q while a run is in progress", ErrInvalidState, name)
	}
	if name == "" {
		return fmt.Errorf("%w: empty parameter name", ErrInvalidArgument)
	}
	m.params[name] = value
	return nil
}

// Parameter returns a parameter value and whether it is set.
func (m *Model) Parameter(name string) (float64, bool) {
	v, ok := m.params[name]
	return v, ok
}

// AddReaction adds a directed reaction. Reactant and product multisets are
// given as name lists where repetition means multiplicity; unknown species
// are created. An expression rate is parsed immediately and a ParseError is
// returned on malformed text; a negative LMA constant is rejected here.
func (m *Model) AddReaction(rate RateSpec, reactants, products []string) error {
	return m.AddReactionNamed("", rate, reactants, products)
}

// AddReactionNamed is AddReaction with an explicit reaction name.
func (m *Model) AddReactionNamed(name string, rate RateSpec, reactants, products []string) error {
	if m.running {
		return fmt.Errorf("%w: cannot add reaction while a run is in progress", ErrInvalidState)
	}
	r := Reaction{
		Name:      name,
		Rate:      rate,
		Reactants: append([]string(nil), reactants...),
		Products:  append([]string(nil), products...),
	}
	switch rate.Kind {
	case RateLMA:
		if rate.K < 0 || math.IsNaN(rate.K) {
			return fmt.Errorf("%w: LMA constant %v", ErrRateNegative, rate.K)
		}
	case RateExpr:
		expr, err := ParseExpr(rate.Src)
		if err != nil {
			return err
		}
		r.expr = expr
	default:
		return fmt.Errorf("%w: unknown rate kind %d", ErrInvalidArgument, rate.Kind)
	}
	for _, s := range reactants {
		m.addSpecies(s)
	}
	for _, s := range products {
		m.addSpecies(s)
	}
	m.reactions = append(m.reactions, r)
	return nil
}

// AddReversibleReaction adds a reaction together with its reverse: the
// reverse swaps reactants and products and carries its own rate.
func (m *Model) AddReversibleReaction(fwd RateSpec, reactants, products []string, rev RateSpec) error {
	if err := m.AddReaction(fwd, reactants, products); err != nil {
		return err
	}
	return m.AddReaction(rev, products, reactants)
}

// Reactions returns the directed reactions in index order.
func (m *Model) Reactions() []Reaction {
	out := make([]Reaction, len(m.reactions))
	copy(out, m.reactions)
	return out
}

// String renders a model summary, one reaction per line.
func (m *Model) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d species and %d reactions\n", m.NbSpecies(), m.NbReactions())
	for i := range m.reactions {
		sb.WriteString(m.reactions[i].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// checkAmbiguity reports ErrAmbiguousName for any name that is both a
// parameter and a species.
func (m *Model) checkAmbiguity() error {
	for name := range m.params {
		if _, ok := m.speciesIndex[name]; ok {
			return fmt.Errorf("%w: %q is both a parameter and a species", ErrAmbiguousName, name)
		}
	}
	return nil
}

// compileReactions binds every reaction to species indices. Expression
// identifiers resolve first against parameters (folded to constants), then
// against species, creating unknown species on first mention. A
// parameter-only expression is evaluated once and cached as a constant.
func (m *Model) compileReactions() ([]*compiledReaction, error) {
	// Register species mentioned only in expressions before sizing anything.
	for i := range m.reactions {
		if m.reactions[i].expr == nil {
			continue
		}
		for _, name := range m.reactions[i].expr.Names() {
			if _, isParam := m.params[name]; !isParam {
				m.addSpecies(name)
			}
		}
	}
	if err := m.checkAmbiguity(); err != nil {
		return nil, err
	}

	compiled := make([]*compiledReaction, len(m.reactions))
	for i := range m.reactions {
		r := &m.reactions[i]
		cr := &compiledReaction{
			name:  r.Name,
			delta: buildDelta(r.Reactants, r.Products, m.addSpecies),
		}
		switch r.Rate.Kind {
		case RateLMA:
			cr.rate = &compiledRate{
				kind:      RateLMA,
				k:         r.Rate.K,
				reactants: buildMultiplicities(r.Reactants, m.addSpecies),
			}
		case RateExpr:
			ce, err := r.expr.compile(m.params, m.addSpecies)
			if err != nil {
				return nil, fmt.Errorf("reaction %d (%s): %w", i, r.String(), err)
			}
			refs := make(map[int]struct{})
			ce.speciesIndices(refs)
			if len(refs) == 0 {
				// Parameter-only rate: constant for the whole run.
				v, err := ce.eval(nil)
				if err != nil {
					return nil, fmt.Errorf("reaction %d (%s): %w", i, r.String(), err)
				}
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("reaction %d (%s): %w: non-finite rate %v", i, r.String(), ErrDomain, v)
				}
				if v < 0 {
					return nil, fmt.Errorf("reaction %d (%s): %w: %v", i, r.String(), ErrRateNegative, v)
				}
				cr.rate = &compiledRate{kind: RateExpr, k: v}
			} else {
				cr.rate = &compiledRate{kind: RateExpr, expr: ce}
			}
		}
		compiled[i] = cr
	}
	return compiled, nil
}
