package evaluation

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS judgments (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_ref     TEXT,
	predicted_label TEXT NOT NULL,
	correct_label   TEXT NOT NULL,
	is_match        INTEGER NOT NULL,
	case_stored     INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists human judgments in SQLite and computes accuracy metrics.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. provlog).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region record

// RecordJudgment persists a single judgment row. Match is derived from the
// labels; callers set only what they know.
func (s *Store) RecordJudgment(j Judgment) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	match := 0
	if j.PredictedLabel == j.CorrectLabel {
		match = 1
	}
	stored := 0
	if j.CaseStored {
		stored = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO judgments (session_ref, predicted_label, correct_label, is_match, case_stored, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(j.SessionRef), j.PredictedLabel, j.CorrectLabel, match, stored,
		j.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record judgment: %w", err)
	}
	return nil
}

func nullIfEmpty(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// #endregion record

// #region summary

// Summarize computes overall and per-label accuracy.
func (s *Store) Summarize() (Summary, error) {
	rows, err := s.db.Query(`SELECT correct_label, is_match FROM judgments ORDER BY id`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	sum := Summary{ByLabel: make(map[string]LabelStats)}
	for rows.Next() {
		var label string
		var match int
		if err := rows.Scan(&label, &match); err != nil {
			return Summary{}, fmt.Errorf("scan judgment: %w", err)
		}
		sum.Total++
		stats := sum.ByLabel[label]
		stats.Total++
		if match == 1 {
			sum.Correct++
			stats.Correct++
		}
		sum.ByLabel[label] = stats
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if sum.Total > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Total)
	}
	return sum, nil
}

// AccuracyHistory returns cumulative accuracy after each judgment, oldest
// first, for learning-curve display.
func (s *Store) AccuracyHistory() ([]AccuracyPoint, error) {
	rows, err := s.db.Query(`SELECT is_match FROM judgments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("accuracy history: %w", err)
	}
	defer rows.Close()

	var points []AccuracyPoint
	correct := 0
	n := 0
	for rows.Next() {
		var match int
		if err := rows.Scan(&match); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		n++
		if match == 1 {
			correct++
		}
		points = append(points, AccuracyPoint{N: n, Accuracy: float64(correct) / float64(n)})
	}
	return points, rows.Err()
}

// #endregion summary
