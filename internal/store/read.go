package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/uisync/internal/state"
)

// ErrNotFound is returned when a requested session does not exist.
var ErrNotFound = errors.New("not found")

// ReadSession returns a session record.
func (s *Store) ReadSession(ctx context.Context, token string) (SessionRecord, error) {
	var (
		rec      SessionRecord
		sides    string
		disabled string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, side_routes, swipe_disabled, menu
		FROM sessions
		WHERE token = ?
	`, token).Scan(&rec.Token, &sides, &disabled, &rec.Menu)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("session %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("read session: %w", err)
	}

	if rec.SideRoutes, err = unmarshalNames(sides); err != nil {
		return SessionRecord{}, err
	}
	if rec.SwipeDisabled, err = unmarshalNames(disabled); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// ReadSnapshots returns a session's snapshots in seq order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadSnapshots(ctx context.Context, session string) ([]SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, seq, digest, body
		FROM snapshots
		WHERE session = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	recs := []SnapshotRecord{}
	for rows.Next() {
		var (
			rec  SnapshotRecord
			body string
		)
		if err := rows.Scan(&rec.Session, &rec.Seq, &rec.Digest, &body); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if rec.Snapshot, err = unmarshalSnapshot(body); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return recs, nil
}

// ReadEffects returns a session's planned effects.
// Ordered by seq ASC, id ASC COLLATE BINARY.
func (s *Store) ReadEffects(ctx context.Context, session string) ([]EffectRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, pair_seq, seq, category, ordinal, body
		FROM effects
		WHERE session = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	recs := []EffectRecord{}
	for rows.Next() {
		var (
			rec      EffectRecord
			category string
			body     string
		)
		if err := rows.Scan(&rec.ID, &rec.Session, &rec.PairSeq, &rec.Seq, &category, &rec.Ordinal, &body); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		rec.Category = state.Category(category)
		if rec.Effect, err = unmarshalEffect(body); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate effects: %w", err)
	}
	return recs, nil
}

// ReadOutcomes returns a session's outcomes.
// Ordered by seq ASC, effect_id ASC COLLATE BINARY.
func (s *Store) ReadOutcomes(ctx context.Context, session string) ([]OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT effect_id, session, seq, status, error
		FROM outcomes
		WHERE session = ?
		ORDER BY seq ASC, effect_id ASC COLLATE BINARY
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	recs := []OutcomeRecord{}
	for rows.Next() {
		var rec OutcomeRecord
		if err := rows.Scan(&rec.EffectID, &rec.Session, &rec.Seq, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return recs, nil
}

// ListSessions summarizes every session, ordered by token.
// UUIDv7 tokens sort by creation time.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.token,
			(SELECT COUNT(*) FROM snapshots WHERE session = s.token),
			(SELECT COUNT(*) FROM effects WHERE session = s.token),
			(SELECT COUNT(*) FROM outcomes WHERE session = s.token AND status = 'failed'),
			(SELECT COUNT(*) FROM outcomes WHERE session = s.token AND status = 'skipped')
		FROM sessions s
		ORDER BY s.token ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.Token, &sum.Snapshots, &sum.Effects, &sum.Failed, &sum.Skipped); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// LatestSession returns the most recently started session token.
// Returns ErrNotFound if the journal is empty.
func (s *Store) LatestSession(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `
		SELECT token FROM sessions ORDER BY token DESC COLLATE BINARY LIMIT 1
	`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("latest session: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return token, nil
}

// LastSeq returns the highest seq journaled for a session, or 0.
func (s *Store) LastSeq(ctx context.Context, session string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM snapshots WHERE session = ?1
			UNION ALL SELECT seq FROM effects WHERE session = ?1
			UNION ALL SELECT seq FROM outcomes WHERE session = ?1
		)
	`, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}
