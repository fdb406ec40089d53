package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Category string // optional - filter effects and outcomes to one category
}

// TraceEvent represents a single event in the session timeline.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Type     string `json:"type"` // "snapshot", "effect" or "outcome"
	Pair     int64  `json:"pair,omitempty"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail"`
	Status   string `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Snapshots int   `json:"snapshots"`
	Effects   int   `json:"effects"`
	OK        int   `json:"ok"`
	Failed    int   `json:"failed"`
	Skipped   int   `json:"skipped"`
	Pending   int   `json:"pending"`
	LastSeq   int64 `json:"last_seq"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the timeline of a journaled session",
		Long: `Show every snapshot, planned effect and outcome of a session in logical
clock order.

Without --session the most recent session is traced. Effects that never
got an outcome (the run was interrupted) are counted as pending.

Examples:
  uisync trace --db ./uisync.db
  uisync trace --db ./uisync.db --session 0190c7e2-... --category toast
  uisync trace --db ./uisync.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to trace (default: latest)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter to one category (route|toast|loader|modal|menu)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	var category state.Category
	if opts.Category != "" {
		c, err := state.ParseCategory(opts.Category)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --category", err)
		}
		category = c
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	session := opts.Session
	if session == "" {
		session, err = st.LatestSession(ctx)
	} else {
		_, err = st.ReadSession(ctx, session)
	}
	if errors.Is(err, store.ErrNotFound) {
		out := newFormatter(opts.RootOptions, cmd)
		_ = out.Error(ErrCodeNotFound, "session not found", opts.Session)
		return WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	result, err := buildTrace(ctx, st, session, category)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build trace", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Result(result, nil)
	}
	outputTraceText(cmd, result)
	return nil
}

func buildTrace(ctx context.Context, st *store.Store, session string, category state.Category) (TraceResult, error) {
	snaps, err := st.ReadSnapshots(ctx, session)
	if err != nil {
		return TraceResult{}, err
	}
	effects, err := st.ReadEffects(ctx, session)
	if err != nil {
		return TraceResult{}, err
	}
	outcomes, err := st.ReadOutcomes(ctx, session)
	if err != nil {
		return TraceResult{}, err
	}
	lastSeq, err := st.LastSeq(ctx, session)
	if err != nil {
		return TraceResult{}, err
	}

	result := TraceResult{Session: session, Timeline: []TraceEvent{}}
	result.Stats.LastSeq = lastSeq

	for _, s := range snaps {
		result.Stats.Snapshots++
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:    s.Seq,
			Type:   "snapshot",
			Detail: describeSnapshot(s.Snapshot),
		})
	}

	byID := make(map[string]store.EffectRecord, len(effects))
	for _, e := range effects {
		byID[e.ID] = e
		if category != "" && e.Category != category {
			continue
		}
		result.Stats.Effects++
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:      e.Seq,
			Type:     "effect",
			Pair:     e.PairSeq,
			Category: string(e.Category),
			Detail:   e.Effect.String(),
		})
	}

	done := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		eff := byID[o.EffectID]
		if category != "" && eff.Category != category {
			continue
		}
		done[o.EffectID] = true
		switch o.Status {
		case store.StatusOK:
			result.Stats.OK++
		case store.StatusFailed:
			result.Stats.Failed++
		case store.StatusSkipped:
			result.Stats.Skipped++
		}
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:      o.Seq,
			Type:     "outcome",
			Pair:     eff.PairSeq,
			Category: string(eff.Category),
			Detail:   eff.Effect.String(),
			Status:   o.Status,
			Error:    o.Error,
		})
	}
	for _, e := range effects {
		if (category == "" || e.Category == category) && !done[e.ID] {
			result.Stats.Pending++
		}
	}

	sort.SliceStable(result.Timeline, func(i, j int) bool {
		return result.Timeline[i].Seq < result.Timeline[j].Seq
	})
	return result, nil
}

func describeSnapshot(s state.Snapshot) string {
	desc := fmt.Sprintf("routes=%v", s.Routes.Names())
	for _, kind := range state.OverlayKinds() {
		if o := s.Overlay(kind); o.IsShown {
			desc += fmt.Sprintf(" %s=%q", kind, o.Content)
		}
	}
	return desc
}

func outputTraceText(cmd *cobra.Command, result TraceResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Trace: %s\n\n", result.Session)
	for _, ev := range result.Timeline {
		switch ev.Type {
		case "snapshot":
			fmt.Fprintf(w, "%4d  snapshot  %s\n", ev.Seq, ev.Detail)
		case "effect":
			fmt.Fprintf(w, "%4d  effect    pair %d %-6s %s\n", ev.Seq, ev.Pair, ev.Category, ev.Detail)
		default:
			line := fmt.Sprintf("%4d  %-8s  pair %d %-6s %s", ev.Seq, ev.Status, ev.Pair, ev.Category, ev.Detail)
			if ev.Error != "" {
				line += ": " + ev.Error
			}
			fmt.Fprintln(w, line)
		}
	}
	s := result.Stats
	fmt.Fprintf(w, "\n%d snapshots, %d effects: %d ok, %d failed, %d skipped, %d pending\n",
		s.Snapshots, s.Effects, s.OK, s.Failed, s.Skipped, s.Pending)
}
