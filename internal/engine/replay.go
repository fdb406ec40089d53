package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/uisync/internal/reconcile"
	"github.com/roach88/uisync/internal/state"
	"github.com/roach88/uisync/internal/store"
)

// Replay re-plans a snapshot log without executing anything.
//
// It takes the same path as Run: malformed snapshots are skipped, the
// first valid snapshot primes the sequencer, and effect IDs are derived
// from session, pair and ordinal. Replaying the snapshots a session
// journaled therefore reproduces exactly the effect IDs it journaled.
//
// opts must be the effective options (see OptionsFromSession); nil route
// sets fall back to the defaults.
func Replay(session string, snapshots []state.Snapshot, opts reconcile.Options) ([]PlannedEffect, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan state.Snapshot)
	go func() {
		defer close(in)
		for i, s := range snapshots {
			if err := s.Validate(); err != nil {
				slog.Debug("replay: malformed snapshot skipped", "index", i, "error", err)
				continue
			}
			select {
			case in <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	var out []PlannedEffect
	for pair := range reconcile.Pairs(ctx, in) {
		plan, err := reconcile.Reconcile(pair, opts)
		if err != nil {
			slog.Debug("replay: reconcile failed", "pair", pair.Seq, "error", err)
		}
		for _, c := range state.Categories() {
			for ord, eff := range plan.For(c) {
				id, err := state.EffectID(session, pair.Seq, ord, eff)
				if err != nil {
					return nil, fmt.Errorf("replay pair %d: %w", pair.Seq, err)
				}
				out = append(out, PlannedEffect{ID: id, PairSeq: pair.Seq, Category: c, Ordinal: ord, Effect: eff})
			}
		}
	}
	return out, nil
}

// JournalReader reads a journaled session. Implemented by *store.Store.
type JournalReader interface {
	ReadSession(ctx context.Context, token string) (store.SessionRecord, error)
	ReadSnapshots(ctx context.Context, session string) ([]store.SnapshotRecord, error)
	ReadEffects(ctx context.Context, session string) ([]store.EffectRecord, error)
}

// ReplayResult compares a re-planned session with its journal.
type ReplayResult struct {
	Session   string
	Snapshots int
	Planned   []PlannedEffect      // effects the replay produced
	Missing   []PlannedEffect      // replayed but absent from the journal
	Extra     []store.EffectRecord // journaled but not replayed
	Corrupt   []int64              // snapshot seqs whose digest no longer matches
}

// Deterministic reports whether the replay matched the journal exactly.
func (r ReplayResult) Deterministic() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Corrupt) == 0
}

// ReplaySession re-plans a journaled session and diffs the result
// against the journaled effects.
func ReplaySession(ctx context.Context, j JournalReader, session string) (ReplayResult, error) {
	rec, err := j.ReadSession(ctx, session)
	if err != nil {
		return ReplayResult{}, err
	}
	snaps, err := j.ReadSnapshots(ctx, session)
	if err != nil {
		return ReplayResult{}, err
	}
	journaled, err := j.ReadEffects(ctx, session)
	if err != nil {
		return ReplayResult{}, err
	}

	result := ReplayResult{Session: session, Snapshots: len(snaps)}
	log := make([]state.Snapshot, len(snaps))
	for i, s := range snaps {
		log[i] = s.Snapshot
		digest, err := state.SnapshotDigest(s.Snapshot)
		if err != nil || digest != s.Digest {
			result.Corrupt = append(result.Corrupt, s.Seq)
		}
	}

	result.Planned, err = Replay(session, log, OptionsFromSession(rec))
	if err != nil {
		return ReplayResult{}, err
	}

	seen := make(map[string]bool, len(journaled))
	for _, eff := range journaled {
		seen[eff.ID] = true
	}
	replayed := make(map[string]bool, len(result.Planned))
	for _, pe := range result.Planned {
		replayed[pe.ID] = true
		if !seen[pe.ID] {
			result.Missing = append(result.Missing, pe)
		}
	}
	for _, eff := range journaled {
		if !replayed[eff.ID] {
			result.Extra = append(result.Extra, eff)
		}
	}
	return result, nil
}
