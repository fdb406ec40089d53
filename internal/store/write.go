package store

import (
	"context"
	"fmt"
)

// WriteSession records a session and its reconciler options.
// Uses ON CONFLICT DO NOTHING: the first write wins.
func (s *Store) WriteSession(ctx context.Context, rec SessionRecord) error {
	sides, err := marshalNames(rec.SideRoutes)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	disabled, err := marshalNames(rec.SwipeDisabled)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, side_routes, swipe_disabled, menu)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, rec.Token, sides, disabled, rec.Menu)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteSnapshot appends an accepted snapshot. The session must exist.
// The body is stored as canonical JSON so the digest can be recomputed.
func (s *Store) WriteSnapshot(ctx context.Context, rec SnapshotRecord) error {
	body, err := marshalSnapshot(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (session, seq, digest, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`, rec.Session, rec.Seq, rec.Digest, body)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// WriteEffects records the effects planned for one pair in a single
// transaction: a crash leaves either the whole plan or none of it.
// Duplicate effect IDs are silently ignored.
func (s *Store) WriteEffects(ctx context.Context, recs []EffectRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write effects: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO effects (id, session, pair_seq, seq, category, ordinal, kind, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write effects: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		body, err := marshalEffect(rec.Effect)
		if err != nil {
			return fmt.Errorf("write effects: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			rec.ID,
			rec.Session,
			rec.PairSeq,
			rec.Seq,
			string(rec.Category),
			rec.Ordinal,
			string(rec.Effect.Kind),
			body,
		)
		if err != nil {
			return fmt.Errorf("write effects: insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write effects: commit: %w", err)
	}
	return nil
}

// WriteOutcome records the completion status of an effect.
// Each effect has at most one outcome; a second write is ignored.
func (s *Store) WriteOutcome(ctx context.Context, rec OutcomeRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (effect_id, session, seq, status, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(effect_id) DO NOTHING
	`, rec.EffectID, rec.Session, rec.Seq, rec.Status, rec.Error)
	if err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	return nil
}
