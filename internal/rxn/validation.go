package rxn

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid model: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "model validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, v ...any) {
	e.Add(fmt.Sprintf(format, v...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateModelConfig performs comprehensive validation of a ModelConfig
// before it is built into a Model. All issues are collected into a single
// error rather than stopping at the first.
func ValidateModelConfig(cfg ModelConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("model name is required")
	}

	declared := make(map[string]bool)
	for _, sp := range cfg.Species {
		if sp.Name == "" {
			err.Add("species name is required")
			continue
		}
		if declared[sp.Name] {
			err.Addf("duplicate species name: %s", sp.Name)
		}
		declared[sp.Name] = true
	}

	for name := range cfg.Parameters {
		if name == "" {
			err.Add("parameter name is required")
			continue
		}
		if declared[name] {
			err.Addf("name %s is both a parameter and a declared species", name)
		}
	}

	if len(cfg.Reactions) == 0 {
		err.Add("at least one reaction is required")
	}
	for i, rc := range cfg.Reactions {
		label := rc.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if !rc.Rate.IsSet() {
			err.Addf("reaction %s: rate is required", label)
		} else if rc.Rate.Spec().Kind == RateExpr {
			if _, perr := ParseExpr(rc.Rate.Spec().Src); perr != nil {
				err.Addf("reaction %s: %v", label, perr)
			}
		} else if rc.Rate.Spec().K < 0 {
			err.Addf("reaction %s: negative rate constant %v", label, rc.Rate.Spec().K)
		}
		if rc.ReverseRate.IsSet() {
			if rc.ReverseRate.Spec().Kind == RateExpr {
				if _, perr := ParseExpr(rc.ReverseRate.Spec().Src); perr != nil {
					err.Addf("reaction %s (reverse): %v", label, perr)
				}
			} else if rc.ReverseRate.Spec().K < 0 {
				err.Addf("reaction %s (reverse): negative rate constant %v", label, rc.ReverseRate.Spec().K)
			}
		}
		for _, s := range rc.Reactants {
			if s == "" {
				err.Addf("reaction %s: empty reactant name", label)
			}
		}
		for _, s := range rc.Products {
			if s == "" {
				err.Addf("reaction %s: empty product name", label)
			}
		}
	}

	for name, count := range cfg.Init {
		if name == "" {
			err.Add("initial count with empty species name")
		}
		if count < 0 {
			err.Addf("initial count of %s is negative: %d", name, count)
		}
	}

	if cfg.Run != nil {
		if cfg.Run.Tmax < 0 {
			err.Addf("run tmax is negative: %v", cfg.Run.Tmax)
		}
		if cfg.Run.Steps < 0 {
			err.Addf("run steps is negative: %d", cfg.Run.Steps)
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
