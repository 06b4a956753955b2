package provlog

import "time"

// #region decision-entry
// DecisionEntry is a single row in the decision_log table: one DECIDING
// outcome with everything a reviewer needs to reconstruct why the gate
// escalated or proceeded.
type DecisionEntry struct {
	InteractionID  string
	SessionRef     string
	QueryHash      string
	SimilarCount   int
	CaseConfidence float32
	Blended        float32
	RedFlagsJSON   string
	Decision       string // "escalate" | "autonomous"
	PredictedLabel string
	Reason         string
	CreatedAt      time.Time
}

// #endregion decision-entry
