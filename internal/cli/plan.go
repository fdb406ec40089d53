package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uisync/internal/engine"
	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/schema"
)

// planSession labels the effect IDs of a dry run.
const planSession = "plan"

// PlannedStep is one planned effect in CLI output.
type PlannedStep struct {
	Pair     int64  `json:"pair"`
	Category string `json:"category"`
	Ordinal  int    `json:"ordinal"`
	Effect   string `json:"effect"`
	ID       string `json:"id"`
}

// PlanResult holds the dry-run plan of a script.
type PlanResult struct {
	Script    string        `json:"script"`
	Snapshots int           `json:"snapshots"`
	Effects   []PlannedStep `json:"effects"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <script>",
		Short: "Print the effects a script would produce",
		Long: `Reconcile every snapshot pair of a script and print the planned effects
without executing them.

Examples:
  uisync plan ./scripts/checkout.yaml
  uisync plan ./scripts/checkout.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runPlan(opts *RootOptions, path string, cmd *cobra.Command) error {
	script, ropts, err := opts.loadScript(path)
	if err != nil {
		return err
	}

	planned, err := engine.Replay(planSession, script.States(), ropts)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to plan script", err)
	}

	result := PlanResult{Script: path, Snapshots: len(script.Snapshots), Effects: make([]PlannedStep, len(planned))}
	for i, pe := range planned {
		result.Effects[i] = PlannedStep{
			Pair:     pe.PairSeq,
			Category: string(pe.Category),
			Ordinal:  pe.Ordinal,
			Effect:   pe.Effect.String(),
			ID:       pe.ID,
		}
	}

	out := newFormatter(opts, cmd)
	if opts.Format == "json" {
		return out.Result(result, nil)
	}

	w := out.Writer
	fmt.Fprintf(w, "Plan: %s (%d snapshots, %d effects)\n", path, result.Snapshots, len(result.Effects))
	var pair int64
	for _, step := range result.Effects {
		if step.Pair != pair {
			pair = step.Pair
			fmt.Fprintf(w, "pair %d\n", pair)
		}
		fmt.Fprintf(w, "  %-6s %s\n", step.Category, step.Effect)
		out.VerboseLog("    id=%s", step.ID)
	}
	return nil
}

// loadScript loads a script and merges its options over the config.
func (o *RootOptions) loadScript(path string) (*schema.Script, reconcile.Options, error) {
	script, err := schema.Load(path)
	if err != nil {
		return nil, reconcile.Options{}, WrapExitError(ExitCommandError, "failed to load script", err)
	}
	return script, script.Apply(o.settings().ReconcileOptions()), nil
}
