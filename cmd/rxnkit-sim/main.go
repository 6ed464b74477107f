package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "rxnkit-sim",
		Short: "Stochastic simulator for well-mixed reaction networks",
		Long: `rxnkit-sim runs exact stochastic simulations (Gillespie SSA) of
reaction networks defined in JSON or YAML model files.

A model file declares species, parameters, reactions (with mass-action
constants or rate expressions), initial counts, and default run settings.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rxnkit-sim version %s\n", version)
		},
	}
}
