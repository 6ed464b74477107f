package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rxnkit/rxnkit/internal/rxn"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <model-file>",
		Short: "Run a stochastic simulation of a model file",
		Long: `Run a stochastic simulation of a model file.

Run settings come from the model file's run section; flags override them.
The trajectory is written as CSV (or JSON with --format json) together
with a per-species summary.

Examples:
  rxnkit-sim run examples/models/sir.json
  rxnkit-sim run examples/models/dimers.yaml --seed 7 --out results/
  rxnkit-sim run examples/models/sir.json --tmax 500 --steps 500 --sparse
  rxnkit-sim run examples/models/sir.json --events --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rxn.LoadModelConfig(args[0])
			if err != nil {
				return err
			}
			if err := rxn.ValidateModelConfig(cfg); err != nil {
				return err
			}
			model, err := rxn.BuildModelFromConfig(cfg)
			if err != nil {
				return err
			}

			opts := rxn.RunOptionsFromConfig(cfg)
			events := cfg.Run != nil && cfg.Run.Events
			if cmd.Flags().Changed("tmax") {
				opts.Tmax, _ = cmd.Flags().GetFloat64("tmax")
			}
			if cmd.Flags().Changed("steps") {
				opts.Steps, _ = cmd.Flags().GetInt("steps")
			}
			if cmd.Flags().Changed("seed") {
				s, _ := cmd.Flags().GetUint64("seed")
				opts.Seed = &s
			}
			if cmd.Flags().Changed("sparse") {
				opts.Sparse, _ = cmd.Flags().GetBool("sparse")
			}
			if cmd.Flags().Changed("record") {
				opts.VarNames, _ = cmd.Flags().GetStringSlice("record")
			}
			if cmd.Flags().Changed("events") {
				events, _ = cmd.Flags().GetBool("events")
			}

			var res *rxn.Result
			if events {
				res, err = model.RunEvents(opts)
			} else {
				res, err = model.Run(opts)
			}
			if err != nil {
				return err
			}

			outDir, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "csv":
				if err := writeCSVOutput(outDir, res); err != nil {
					return err
				}
			case "json":
				if err := writeJSONOutput(outDir, res); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			printSummary(cmd.OutOrStdout(), cfg.Name, res)
			return nil
		},
	}

	cmd.Flags().Float64("tmax", 0, "simulation end time (overrides the model file)")
	cmd.Flags().Int("steps", 0, "number of grid steps (overrides the model file)")
	cmd.Flags().Uint64("seed", 0, "RNG seed (overrides the model file)")
	cmd.Flags().Bool("sparse", false, "use the sparse propensity-update path")
	cmd.Flags().StringSlice("record", nil, "species to record (default: all)")
	cmd.Flags().Bool("events", false, "record every reaction event instead of a uniform grid")
	cmd.Flags().String("out", ".", "output directory")
	cmd.Flags().String("format", "csv", "trajectory output format: csv or json")
	return cmd
}

func writeJSONOutput(dir string, res *rxn.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := trajectoryPath(dir, "trajectory.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
