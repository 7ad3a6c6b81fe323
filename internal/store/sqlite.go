package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS user_states (
	user_id  TEXT PRIMARY KEY,
	theta    REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS concept_mastery (
	user_id    TEXT NOT NULL,
	concept_id TEXT NOT NULL,
	mastery    REAL NOT NULL,
	ci_lower   REAL,
	ci_upper   REAL,
	PRIMARY KEY (user_id, concept_id),
	FOREIGN KEY (user_id) REFERENCES user_states(user_id)
);

CREATE TABLE IF NOT EXISTS concept_params (
	concept_id     TEXT PRIMARY KEY,
	beta           REAL NOT NULL,
	slip           REAL NOT NULL,
	guess          REAL NOT NULL,
	learn          REAL NOT NULL,
	transit        REAL NOT NULL,
	discrimination REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS attempt_log (
	attempt_id   TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	concept_id   TEXT NOT NULL,
	correct      INTEGER NOT NULL,
	time_spent   REAL NOT NULL,
	prior        REAL NOT NULL,
	posterior    REAL NOT NULL,
	confidence   REAL NOT NULL,
	theta        REAL NOT NULL,
	se           REAL NOT NULL,
	created_at   TEXT NOT NULL
);
`

// #endregion schema

// #region sqlite-store

// SQLite is a Repository backed by a SQLite database. One writer at a
// time; the tracker's per-user locking keeps mutation serialized upstream.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// DB exposes the handle for packages sharing the database (attempt log).
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// #endregion sqlite-store

// #region users

// GetUser implements Repository.
func (s *SQLite) GetUser(userID string) (UserState, bool, error) {
	u := NewUserState(userID)
	err := s.db.QueryRow(`SELECT theta FROM user_states WHERE user_id = ?`, userID).Scan(&u.Theta)
	if err == sql.ErrNoRows {
		return UserState{}, false, nil
	}
	if err != nil {
		return UserState{}, false, fmt.Errorf("get user %s: %w", userID, err)
	}

	rows, err := s.db.Query(
		`SELECT concept_id, mastery, ci_lower, ci_upper FROM concept_mastery WHERE user_id = ?`, userID)
	if err != nil {
		return UserState{}, false, fmt.Errorf("get mastery %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var conceptID string
		var m float64
		var lo, hi sql.NullFloat64
		if err := rows.Scan(&conceptID, &m, &lo, &hi); err != nil {
			return UserState{}, false, fmt.Errorf("scan mastery: %w", err)
		}
		u.ConceptMastery[conceptID] = m
		if lo.Valid && hi.Valid {
			u.ConfidenceIntervals[conceptID] = Interval{Lower: lo.Float64, Upper: hi.Float64}
		}
	}
	if err := rows.Err(); err != nil {
		return UserState{}, false, fmt.Errorf("iterate mastery: %w", err)
	}
	return u, true, nil
}

// PutUser implements Repository. The whole user is written in one
// transaction so a crash never leaves theta and mastery out of step.
func (s *SQLite) PutUser(state UserState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO user_states (user_id, theta) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET theta = excluded.theta`,
		state.UserID, state.Theta,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	for conceptID, m := range state.ConceptMastery {
		var lo, hi interface{}
		if ci, ok := state.ConfidenceIntervals[conceptID]; ok {
			lo, hi = ci.Lower, ci.Upper
		}
		_, err = tx.Exec(
			`INSERT INTO concept_mastery (user_id, concept_id, mastery, ci_lower, ci_upper)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, concept_id) DO UPDATE SET
			   mastery = excluded.mastery,
			   ci_lower = excluded.ci_lower,
			   ci_upper = excluded.ci_upper`,
			state.UserID, conceptID, m, lo, hi,
		)
		if err != nil {
			return fmt.Errorf("upsert mastery %s/%s: %w", state.UserID, conceptID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Users implements Repository.
func (s *SQLite) Users() ([]UserState, error) {
	rows, err := s.db.Query(`SELECT user_id FROM user_states ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	out := make([]UserState, 0, len(ids))
	for _, id := range ids {
		u, ok, err := s.GetUser(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// #endregion users

// #region concepts

// GetConcept implements Repository.
func (s *SQLite) GetConcept(conceptID string) (ConceptParams, bool, error) {
	p := ConceptParams{ConceptID: conceptID}
	err := s.db.QueryRow(
		`SELECT beta, slip, guess, learn, transit, discrimination
		 FROM concept_params WHERE concept_id = ?`, conceptID,
	).Scan(&p.Beta, &p.Slip, &p.Guess, &p.Learn, &p.Transit, &p.Discrimination)
	if err == sql.ErrNoRows {
		return ConceptParams{}, false, nil
	}
	if err != nil {
		return ConceptParams{}, false, fmt.Errorf("get concept %s: %w", conceptID, err)
	}
	return p, true, nil
}

// PutConcept implements Repository.
func (s *SQLite) PutConcept(params ConceptParams) error {
	_, err := s.db.Exec(
		`INSERT INTO concept_params (concept_id, beta, slip, guess, learn, transit, discrimination)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(concept_id) DO UPDATE SET
		   beta = excluded.beta,
		   slip = excluded.slip,
		   guess = excluded.guess,
		   learn = excluded.learn,
		   transit = excluded.transit,
		   discrimination = excluded.discrimination`,
		params.ConceptID, params.Beta, params.Slip, params.Guess,
		params.Learn, params.Transit, params.Discrimination,
	)
	if err != nil {
		return fmt.Errorf("upsert concept %s: %w", params.ConceptID, err)
	}
	return nil
}

// Concepts implements Repository.
func (s *SQLite) Concepts() ([]ConceptParams, error) {
	rows, err := s.db.Query(
		`SELECT concept_id, beta, slip, guess, learn, transit, discrimination
		 FROM concept_params ORDER BY concept_id`)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var out []ConceptParams
	for rows.Next() {
		var p ConceptParams
		if err := rows.Scan(&p.ConceptID, &p.Beta, &p.Slip, &p.Guess, &p.Learn, &p.Transit, &p.Discrimination); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concepts: %w", err)
	}
	return out, nil
}

// #endregion concepts
