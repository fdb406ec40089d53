package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uisync/internal/engine"
	"github.com/roach88/uisync/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string   `json:"session"`
	Snapshots     int      `json:"snapshots"`
	Planned       int      `json:"planned"`
	Missing       []string `json:"missing,omitempty"`
	Extra         []string `json:"extra,omitempty"`
	Corrupt       []int64  `json:"corrupt,omitempty"`
	Deterministic bool     `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-plan journaled sessions and verify determinism",
		Long: `Re-plan the journaled snapshots of each session with the options the
session ran with, and compare the result with the journaled effects.

A session is deterministic when every journaled effect is re-planned with
the same ID, nothing extra is planned, and every snapshot still matches
its digest.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  uisync replay --db ./uisync.db
  uisync replay --db ./uisync.db --session 0190c7e2-...
  uisync replay --db ./uisync.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		summaries, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range summaries {
			sessions = append(sessions, s.Token)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, token := range sessions {
		r, err := engine.ReplaySession(ctx, st, token)
		if errors.Is(err, store.ErrNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("session %s not found", token), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", token), err)
		}
		sr := summarizeReplay(r)
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		var failed *CLIError
		if !result.AllDeterministic {
			failed = &CLIError{Code: ErrCodeDeterminism, Message: "determinism verification failed"}
		}
		if err := newFormatter(opts.RootOptions, cmd).Result(result, failed); err != nil {
			return err
		}
		if failed != nil {
			return NewExitError(ExitFailure, failed.Message)
		}
		return nil
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

func summarizeReplay(r engine.ReplayResult) ReplaySessionResult {
	sr := ReplaySessionResult{
		Session:       r.Session,
		Snapshots:     r.Snapshots,
		Planned:       len(r.Planned),
		Corrupt:       r.Corrupt,
		Deterministic: r.Deterministic(),
	}
	for _, pe := range r.Missing {
		sr.Missing = append(sr.Missing, fmt.Sprintf("pair %d %s %s", pe.PairSeq, pe.Category, pe.Effect))
	}
	for _, e := range r.Extra {
		sr.Extra = append(sr.Extra, fmt.Sprintf("pair %d %s %s", e.PairSeq, e.Category, e.Effect))
	}
	return sr
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.Session)
		fmt.Fprintf(w, "  Snapshots: %d, planned effects: %d\n", s.Snapshots, s.Planned)

		if verbose || !s.Deterministic {
			for _, m := range s.Missing {
				fmt.Fprintf(w, "  missing from journal: %s\n", m)
			}
			for _, e := range s.Extra {
				fmt.Fprintf(w, "  not re-planned: %s\n", e)
			}
			for _, seq := range s.Corrupt {
				fmt.Fprintf(w, "  snapshot %d does not match its digest\n", seq)
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
