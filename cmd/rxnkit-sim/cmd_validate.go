package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model-file>",
		Short: "Validate a model file without running it",
		Long: `Validate a model file without running it.

Checks the file for decoding errors, duplicate names, malformed rate
expressions, negative rate constants and counts, and parameter/species
collisions. All issues are reported at once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rxn.LoadModelConfig(args[0])
			if err != nil {
				return err
			}
			if err := rxn.ValidateModelConfig(cfg); err != nil {
				var verr *rxn.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(cmd.OutOrStdout(), "model %q has %d issue(s):\n", cfg.Name, len(verr.Issues))
					for _, issue := range verr.Issues {
						fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", issue)
					}
				}
				return err
			}
			// Building registers every species named by a reaction, so a
			// parameter that shares its name with an undeclared reactant or
			// product is caught here rather than by static validation.
			model, err := rxn.BuildModelFromConfig(cfg)
			if err != nil {
				return err
			}
			for name := range cfg.Parameters {
				if _, isSpecies := model.SpeciesIndex(name); isSpecies {
					return fmt.Errorf("%w: %q is both a parameter and a species", rxn.ErrAmbiguousName, name)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model %q is valid: %d species, %d reactions\n",
				cfg.Name, model.NbSpecies(), model.NbReactions())
			return nil
		},
	}
}
