package provlog

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS decision_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	interaction_id  TEXT NOT NULL,
	session_ref     TEXT,
	query_hash      TEXT,
	similar_count   INTEGER NOT NULL,
	case_confidence REAL NOT NULL,
	blended         REAL NOT NULL,
	red_flags_json  TEXT,
	decision        TEXT NOT NULL,
	predicted_label TEXT,
	reason          TEXT,
	created_at      TEXT NOT NULL
);
`

// #endregion schema

// #region init
// Init creates the decision_log table if needed.
func Init(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("decision log schema: %w", err)
	}
	return nil
}

// #endregion init

// #region log-decision
// LogDecision writes a decision entry to the decision_log table.
func LogDecision(db *sql.DB, entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (interaction_id, session_ref, query_hash, similar_count,
		   case_confidence, blended, red_flags_json, decision, predicted_label, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.InteractionID,
		nullIfEmpty(entry.SessionRef),
		nullIfEmpty(entry.QueryHash),
		entry.SimilarCount,
		entry.CaseConfidence,
		entry.Blended,
		nullIfEmpty(entry.RedFlagsJSON),
		entry.Decision,
		nullIfEmpty(entry.PredictedLabel),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region recent
// Recent returns the newest decision entries, most recent first.
func Recent(db *sql.DB, limit int) ([]DecisionEntry, error) {
	rows, err := db.Query(
		`SELECT interaction_id, session_ref, query_hash, similar_count, case_confidence,
		        blended, red_flags_json, decision, predicted_label, reason, created_at
		 FROM decision_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var sessionRef, queryHash, redFlags, predicted, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.InteractionID, &sessionRef, &queryHash, &e.SimilarCount,
			&e.CaseConfidence, &e.Blended, &redFlags, &e.Decision, &predicted, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		e.SessionRef = sessionRef.String
		e.QueryHash = queryHash.String
		e.RedFlagsJSON = redFlags.String
		e.PredictedLabel = predicted.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion recent

// #region helpers
// HashQuery returns a short stable hash of the query text so the log never
// stores raw patient narrative.
func HashQuery(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:8])
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
