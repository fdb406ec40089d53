package store

import "github.com/roach88/uisync/internal/state"

// Outcome statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SessionRecord is one engine run and the reconciler options it used,
// so a replay can plan with the same options.
type SessionRecord struct {
	Token         string
	SideRoutes    []string
	SwipeDisabled []string
	Menu          bool
}

// SnapshotRecord is one accepted snapshot.
type SnapshotRecord struct {
	Session  string
	Seq      int64
	Digest   string
	Snapshot state.Snapshot
}

// EffectRecord is one planned effect.
type EffectRecord struct {
	ID       string
	Session  string
	PairSeq  int64
	Seq      int64
	Category state.Category
	Ordinal  int
	Effect   state.Effect
}

// OutcomeRecord is the completion status of one effect.
type OutcomeRecord struct {
	EffectID string
	Session  string
	Seq      int64
	Status   string
	Error    string
}

// SessionSummary aggregates a session for listings.
type SessionSummary struct {
	Token     string
	Snapshots int
	Effects   int
	Failed    int
	Skipped   int
}
