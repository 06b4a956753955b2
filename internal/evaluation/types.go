package evaluation

import "time"

// #region judgment

// Judgment records one human review of an escalated case: what the system
// predicted, what the human decided, and whether the labeled case made it
// into the case store (duplicate sessions are judged but not re-stored).
type Judgment struct {
	SessionRef     string
	PredictedLabel string
	CorrectLabel   string
	Match          bool
	CaseStored     bool
	CreatedAt      time.Time
}

// #endregion judgment

// #region summary

// LabelStats aggregates judgments for one correct label.
type LabelStats struct {
	Total   int
	Correct int
}

// Summary aggregates prediction accuracy across all judgments.
type Summary struct {
	Total    int
	Correct  int
	Accuracy float64 // 0 when Total == 0
	ByLabel  map[string]LabelStats
}

// AccuracyPoint is one step of the cumulative accuracy history.
type AccuracyPoint struct {
	N        int     // judgments seen so far
	Accuracy float64 // cumulative accuracy after N judgments
}

// #endregion summary
