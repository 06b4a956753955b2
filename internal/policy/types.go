package policy

import (
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/intake"
	"github.com/caseline/caseline/internal/knowledge"
	"github.com/caseline/caseline/internal/retrieval"
)

// #region state
// State is an interaction's position in the escalation lifecycle.
type State string

const (
	StateCollecting           State = "collecting"
	StateDeciding             State = "deciding"
	StateEscalated            State = "escalated"
	StateResolvedAutonomous   State = "resolved_autonomous"
	StateAwaitingHumanLabel   State = "awaiting_human_label"
	StateResolvedWithFeedback State = "resolved_with_feedback"
)

// #endregion state

// #region decision
// Decision is the output of the gate for one interaction: the escalate/proceed
// call plus everything the conversational layer needs to frame its response.
type Decision struct {
	InteractionID  string               `json:"interaction_id"`
	SessionRef     string               `json:"session_ref"`
	Escalate       bool                 `json:"escalate"`
	PredictedLabel string               `json:"predicted_label"` // empty when nothing similar
	SimilarCount   int                  `json:"similar_count"`
	Confidence     confidence.Breakdown `json:"confidence"`
	Exemplars      []retrieval.Match    `json:"exemplars,omitempty"`
	Evidence       knowledge.Evidence   `json:"evidence,omitempty"`
	RedFlags       []intake.RedFlag     `json:"red_flags,omitempty"`
	Reason         string               `json:"reason"`
}

// #endregion decision

// #region feedback
// FeedbackResult reports what happened when a human label came back:
// whether the prediction matched and whether the case actually entered
// the store (duplicate sessions are judged but not re-stored).
type FeedbackResult struct {
	Match      bool
	CaseStored bool
}

// #endregion feedback
