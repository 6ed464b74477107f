package rxn

import "fmt"

// BuildModelFromConfig turns a validated ModelConfig into a Model. Declared
// species take the lowest indices in declaration order; further species are
// created on first mention by the reactions.
func BuildModelFromConfig(cfg ModelConfig) (*Model, error) {
	return BuildModelFromConfigWithLogger(cfg, NewNoOpLogger())
}

// BuildModelFromConfigWithLogger is BuildModelFromConfig with an injected
// logger carried by the resulting model.
func BuildModelFromConfigWithLogger(cfg ModelConfig, logger Logger) (*Model, error) {
	if err := ValidateModelConfig(cfg); err != nil {
		return nil, err
	}

	m := NewModelWithLogger(cfg.Name, logger)
	for _, sp := range cfg.Species {
		m.addSpecies(sp.Name)
	}
	for name, value := range cfg.Parameters {
		if err := m.SetParameter(name, value); err != nil {
			return nil, err
		}
	}
	for i, rc := range cfg.Reactions {
		if err := m.AddReactionNamed(rc.Name, rc.Rate.Spec(), rc.Reactants, rc.Products); err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i, err)
		}
		if rc.ReverseRate.IsSet() {
			if err := m.AddReactionNamed(reverseName(rc.Name), rc.ReverseRate.Spec(), rc.Products, rc.Reactants); err != nil {
				return nil, fmt.Errorf("reaction %d (reverse): %w", i, err)
			}
		}
	}
	return m, nil
}

func reverseName(name string) string {
	if name == "" {
		return ""
	}
	return name + "_rev"
}

// RunOptionsFromConfig merges a file's run section with its init map into
// engine options.
func RunOptionsFromConfig(cfg ModelConfig) RunOptions {
	opts := RunOptions{Init: cfg.Init}
	if cfg.Run != nil {
		opts.Tmax = cfg.Run.Tmax
		opts.Steps = cfg.Run.Steps
		opts.Seed = cfg.Run.Seed
		opts.Sparse = cfg.Run.Sparse
		opts.VarNames = cfg.Run.Record
	}
	return opts
}
