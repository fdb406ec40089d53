package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/uisync/internal/state"
)

// createTestStore opens a fresh journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedEffects writes session "sess-1" with effects e1 (push B) and e2 (show toast).
func seedEffects(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.WriteSession(ctx, SessionRecord{Token: "sess-1"}); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	err := s.WriteEffects(ctx, []EffectRecord{
		{ID: "e1", Session: "sess-1", PairSeq: 1, Seq: 2, Category: state.CategoryRoute, Effect: state.Push(state.Route{Name: "B"})},
		{ID: "e2", Session: "sess-1", PairSeq: 1, Seq: 3, Category: state.CategoryToast, Effect: state.Show(state.OverlayToast, "saved")},
	})
	if err != nil {
		t.Fatalf("WriteEffects() failed: %v", err)
	}
}
