package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

func newTestLog(t *testing.T) *AttemptLog {
	t.Helper()
	sq, err := store.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return NewAttemptLog(sq.DB())
}

// #region append-list

func TestAppendList_RoundTrip(t *testing.T) {
	l := newTestLog(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries := []AttemptEntry{
		{AttemptID: "a1", UserID: "u1", ConceptID: "loops", Correct: true, TimeSpent: 30, Prior: 0.3, Posterior: 0.25, Confidence: 0.66, Theta: 0.4, StandardError: 1.2, CreatedAt: base},
		{AttemptID: "a2", UserID: "u1", ConceptID: "loops", Correct: false, TimeSpent: 12, Prior: 0.25, Posterior: 0.2, CreatedAt: base.Add(time.Second)},
		{AttemptID: "a3", UserID: "u2", ConceptID: "variables", Correct: true, TimeSpent: 8, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := l.Append(e); err != nil {
			t.Fatalf("append %s: %v", e.AttemptID, err)
		}
	}

	got, err := l.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.AttemptID != entries[i].AttemptID {
			t.Fatalf("order broken: got %s at %d", e.AttemptID, i)
		}
	}

	first := got[0]
	if first.UserID != "u1" || first.ConceptID != "loops" || !first.Correct {
		t.Fatalf("identity fields mangled: %+v", first)
	}
	if first.Prior != 0.3 || first.Posterior != 0.25 || first.Confidence != 0.66 {
		t.Fatalf("mastery fields mangled: %+v", first)
	}
	if first.Theta != 0.4 || first.StandardError != 1.2 {
		t.Fatalf("ability fields mangled: %+v", first)
	}
	if !first.CreatedAt.Equal(base) {
		t.Fatalf("timestamp mangled: %v", first.CreatedAt)
	}
}

func TestList_UserFilter(t *testing.T) {
	l := newTestLog(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := l.Append(AttemptEntry{AttemptID: "a1", UserID: "u1", ConceptID: "loops", CreatedAt: base}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append(AttemptEntry{AttemptID: "a2", UserID: "u2", ConceptID: "loops", CreatedAt: base}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := l.List("u2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u2" {
		t.Fatalf("filter broken: %+v", got)
	}
}

func TestAppend_FillsDefaults(t *testing.T) {
	l := newTestLog(t)

	if err := l.Append(AttemptEntry{UserID: "u1", ConceptID: "loops"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := l.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].AttemptID == "" {
		t.Fatal("attempt id not generated")
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at not filled")
	}
}

// #endregion append-list

// #region recorder-integration

func TestRecordAttempt_FromTracker(t *testing.T) {
	sq, err := store.OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sq.Close()

	l := NewAttemptLog(sq.DB())
	tr := tracker.New(sq, tracker.DefaultConfig())
	tr.SetRecorder(l)

	update, err := tr.UpdateMastery("u1", "loops", true, 30)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := l.List("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 logged attempt, got %d", len(got))
	}
	e := got[0]
	if e.ConceptID != "loops" || !e.Correct || e.TimeSpent != 30 {
		t.Fatalf("attempt fields mangled: %+v", e)
	}
	if e.Prior != update.PriorMastery || e.Posterior != update.PosteriorMastery {
		t.Fatalf("log out of step with update: %+v vs %+v", e, update)
	}
	if e.Theta != update.Ability || e.StandardError != update.StandardError {
		t.Fatalf("ability out of step: %+v vs %+v", e, update)
	}
}

// #endregion recorder-integration
