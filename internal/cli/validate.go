package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uisync/internal/schema"
)

// ScriptCheck is the validation result for one script.
type ScriptCheck struct {
	Path      string `json:"path"`
	Name      string `json:"name,omitempty"`
	Snapshots int    `json:"snapshots"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
}

// ValidateResult holds the validation results for every script.
type ValidateResult struct {
	Scripts []ScriptCheck `json:"scripts"`
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>...",
		Short: "Check snapshot scripts",
		Long: `Parse and check snapshot scripts without running them.

YAML scripts are decoded strictly, CUE scripts are unified with the
#Script schema, and every snapshot must have a non-empty route stack.

Exit codes:
  0 - All scripts are valid
  1 - One or more scripts are invalid

Examples:
  uisync validate ./scripts/checkout.yaml
  uisync validate ./scripts/*.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	result := ValidateResult{Scripts: make([]ScriptCheck, 0, len(paths))}
	for _, path := range paths {
		check := ScriptCheck{Path: path}
		script, err := schema.Load(path)
		if err != nil {
			check.Error = err.Error()
			result.Invalid++
		} else {
			check.Valid = true
			check.Name = script.Name
			check.Snapshots = len(script.Snapshots)
			result.Valid++
		}
		result.Scripts = append(result.Scripts, check)
	}

	out := newFormatter(opts, cmd)
	var failed *CLIError
	if result.Invalid > 0 {
		failed = &CLIError{Code: ErrCodeInvalidScript, Message: fmt.Sprintf("%d script(s) invalid", result.Invalid)}
	}

	if opts.Format == "json" {
		if err := out.Result(result, failed); err != nil {
			return err
		}
	} else {
		for _, c := range result.Scripts {
			if c.Valid {
				fmt.Fprintf(out.Writer, "✓ %s (%d snapshots)\n", c.Path, c.Snapshots)
			} else {
				fmt.Fprintf(out.Writer, "✗ %s\n  %s\n", c.Path, c.Error)
			}
		}
	}

	if failed != nil {
		return NewExitError(ExitFailure, failed.Message)
	}
	return nil
}
