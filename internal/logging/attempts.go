package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// Attempt provenance: every mastery update appends one row to the
// attempt_log table, so trajectories can be replayed, audited, and
// exported as fixtures.

// #region attempt-entry

// AttemptEntry is a single row in the attempt_log table.
type AttemptEntry struct {
	AttemptID     string
	UserID        string
	ConceptID     string
	Correct       bool
	TimeSpent     float64
	Prior         float64
	Posterior     float64
	Confidence    float64
	Theta         float64
	StandardError float64
	CreatedAt     time.Time
}

// #endregion attempt-entry

// #region attempt-log

// AttemptLog writes attempt provenance to a shared SQLite handle.
// Implements tracker.Recorder.
type AttemptLog struct {
	db *sql.DB
}

// NewAttemptLog wraps an open database that already carries the
// attempt_log table (store.OpenSQLite migrates it).
func NewAttemptLog(db *sql.DB) *AttemptLog {
	return &AttemptLog{db: db}
}

// RecordAttempt implements tracker.Recorder.
func (l *AttemptLog) RecordAttempt(rec tracker.AttemptRecord) error {
	entry := AttemptEntry{
		AttemptID:     uuid.New().String(),
		UserID:        rec.UserID,
		ConceptID:     rec.ConceptID,
		Correct:       rec.Correct,
		TimeSpent:     rec.TimeSpent,
		Prior:         rec.Prior,
		Posterior:     rec.Posterior,
		Confidence:    rec.Confidence,
		Theta:         rec.Theta,
		StandardError: rec.StandardError,
		CreatedAt:     time.Now().UTC(),
	}
	return l.Append(entry)
}

// Append writes one entry. A zero CreatedAt is filled with the current
// time; an empty AttemptID gets a fresh id.
func (l *AttemptLog) Append(entry AttemptEntry) error {
	if entry.AttemptID == "" {
		entry.AttemptID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	correct := 0
	if entry.Correct {
		correct = 1
	}

	_, err := l.db.Exec(
		`INSERT INTO attempt_log (attempt_id, user_id, concept_id, correct, time_spent, prior, posterior, confidence, theta, se, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AttemptID,
		entry.UserID,
		entry.ConceptID,
		correct,
		entry.TimeSpent,
		entry.Prior,
		entry.Posterior,
		entry.Confidence,
		entry.Theta,
		entry.StandardError,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// List returns all entries in insertion order, optionally filtered by
// user (empty userID means all users).
func (l *AttemptLog) List(userID string) ([]AttemptEntry, error) {
	query := `SELECT attempt_id, user_id, concept_id, correct, time_spent, prior, posterior, confidence, theta, se, created_at
	          FROM attempt_log`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at ASC, attempt_id ASC`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptEntry
	for rows.Next() {
		var e AttemptEntry
		var correct int
		var createdStr string
		if err := rows.Scan(&e.AttemptID, &e.UserID, &e.ConceptID, &correct, &e.TimeSpent,
			&e.Prior, &e.Posterior, &e.Confidence, &e.Theta, &e.StandardError, &createdStr); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		e.Correct = correct != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// #endregion attempt-log
