package policy

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/evaluation"
	"github.com/caseline/caseline/internal/intake"
	"github.com/caseline/caseline/internal/knowledge"
	"github.com/caseline/caseline/internal/provlog"
	"github.com/caseline/caseline/internal/retrieval"
)

// #endregion

// #region interaction

// Interaction tracks one patient conversation through the lifecycle.
// State moves strictly forward; Decide and SubmitFeedback reject calls
// made out of order.
type Interaction struct {
	ID         string
	SessionRef string
	State      State
	Form       intake.Form
	Messages   []intake.Message
	Decision   *Decision
}

// NewInteraction starts a fresh interaction in the collecting state.
// An empty sessionRef gets a generated one.
func NewInteraction(sessionRef string) *Interaction {
	if sessionRef == "" {
		sessionRef = uuid.NewString()
	}
	return &Interaction{
		ID:         uuid.NewString(),
		SessionRef: sessionRef,
		State:      StateCollecting,
	}
}

// AddMessage appends one conversation turn.
func (in *Interaction) AddMessage(role, content string) {
	in.Messages = append(in.Messages, intake.Message{Role: role, Content: content})
}

// ReadyToDecide reports whether the intake form has enough for the gate.
func (in *Interaction) ReadyToDecide() bool {
	return in.Form.ReadyToDecide()
}

// ConversationText is the canonical query text for this interaction.
func (in *Interaction) ConversationText() string {
	return intake.ConversationText(in.Messages)
}

// #endregion interaction

// #region engine-struct

// Engine wires the store, retriever, and assessor into the escalation
// policy. Evidence, judgment recording, and decision logging are optional;
// a nil field just skips that concern.
type Engine struct {
	store     *casestore.Store
	retriever *retrieval.Retriever
	assessor  *confidence.Assessor
	evidence  knowledge.Source
	judgments *evaluation.Store
	logDB     *sql.DB
}

// Deps holds the engine's collaborators. Store, Retriever, and Assessor are
// required; the rest may be nil.
type Deps struct {
	Store     *casestore.Store
	Retriever *retrieval.Retriever
	Assessor  *confidence.Assessor
	Evidence  knowledge.Source
	Judgments *evaluation.Store
	LogDB     *sql.DB
}

// NewEngine creates a fully wired policy engine.
func NewEngine(deps Deps) *Engine {
	return &Engine{
		store:     deps.Store,
		retriever: deps.Retriever,
		assessor:  deps.Assessor,
		evidence:  deps.Evidence,
		judgments: deps.Judgments,
		logDB:     deps.LogDB,
	}
}

// #endregion engine-struct

// #region decide

// Decide runs the count gate for an interaction and moves it to either
// escalated (awaiting a human label) or resolved-autonomous. The authoritative
// gate is the similar-case count against the minimum; confidence scores and
// red flags ride along for display and logging only. Autonomous outcomes are
// never written back to the store: only human-labeled cases train retrieval.
func (e *Engine) Decide(ctx context.Context, in *Interaction) (Decision, error) {
	if in.State != StateCollecting && in.State != StateDeciding {
		return Decision{}, fmt.Errorf("decide: interaction %s is %s, not collecting", in.ID, in.State)
	}
	in.State = StateDeciding

	query := strings.TrimSpace(in.ConversationText())
	if query == "" {
		query = in.Form.DetailedSymptoms
	}

	count := e.retriever.CountSimilar(ctx, query)
	exemplars := e.retriever.Retrieve(ctx, query, 0)
	escalate := e.assessor.ShouldEscalate(count)

	var evidence knowledge.Evidence
	if e.evidence != nil {
		ev, err := e.evidence.Evidence(ctx, query)
		if err != nil {
			log.Printf("[POLICY] evidence lookup failed, proceeding without: %v", err)
		} else {
			evidence = ev
		}
	}

	decision := Decision{
		InteractionID:  in.ID,
		SessionRef:     in.SessionRef,
		Escalate:       escalate,
		PredictedLabel: predictLabel(exemplars),
		SimilarCount:   count,
		Confidence:     e.assessor.Blended(count, len(evidence.Citations)),
		Exemplars:      exemplars,
		Evidence:       evidence,
		RedFlags:       intake.ScreenRedFlags(query),
	}
	if escalate {
		decision.Reason = fmt.Sprintf("only %d similar cases on record, below the minimum", count)
		in.State = StateAwaitingHumanLabel
	} else {
		decision.Reason = fmt.Sprintf("%d similar cases on record, proceeding with %q", count, decision.PredictedLabel)
		in.State = StateResolvedAutonomous
	}
	in.Decision = &decision

	e.logDecision(in, query, decision)
	return decision, nil
}

// predictLabel is the system's best candidate: the label of the highest
// scoring exemplar, empty when nothing cleared the threshold.
func predictLabel(exemplars []retrieval.Match) string {
	if len(exemplars) == 0 {
		return ""
	}
	return exemplars[0].Case.Label
}

func (e *Engine) logDecision(in *Interaction, query string, d Decision) {
	if e.logDB == nil {
		return
	}
	outcome := "autonomous"
	if d.Escalate {
		outcome = "escalate"
	}
	var flagsJSON string
	if len(d.RedFlags) > 0 {
		if b, err := json.Marshal(d.RedFlags); err == nil {
			flagsJSON = string(b)
		}
	}
	err := provlog.LogDecision(e.logDB, provlog.DecisionEntry{
		InteractionID:  in.ID,
		SessionRef:     in.SessionRef,
		QueryHash:      provlog.HashQuery(query),
		SimilarCount:   d.SimilarCount,
		CaseConfidence: d.Confidence.CaseConfidence,
		Blended:        d.Confidence.Blended,
		RedFlagsJSON:   flagsJSON,
		Decision:       outcome,
		PredictedLabel: d.PredictedLabel,
		Reason:         d.Reason,
	})
	if err != nil {
		log.Printf("[POLICY] decision log write failed: %v", err)
	}
}

// #endregion decide

// #region feedback

// SubmitFeedback closes an escalated interaction with the human's label.
// The labeled case goes into the store whether or not the human agreed with
// the prediction; agreement only affects accuracy bookkeeping. A duplicate
// session skips the store insert but still records the judgment.
func (e *Engine) SubmitFeedback(ctx context.Context, in *Interaction, correctLabel string) (FeedbackResult, error) {
	if in.State != StateAwaitingHumanLabel {
		return FeedbackResult{}, fmt.Errorf("feedback: interaction %s is %s, not awaiting a label", in.ID, in.State)
	}
	correctLabel = strings.TrimSpace(correctLabel)
	if correctLabel == "" {
		return FeedbackResult{}, fmt.Errorf("feedback: empty label for interaction %s", in.ID)
	}

	predicted := ""
	if in.Decision != nil {
		predicted = in.Decision.PredictedLabel
	}

	query := strings.TrimSpace(in.ConversationText())
	if query == "" {
		query = in.Form.DetailedSymptoms
	}

	_, stored := e.store.Insert(ctx, query, correctLabel, in.Form.DetailedSymptoms, in.SessionRef)
	if !stored {
		log.Printf("[POLICY] feedback case for session %s not stored (duplicate or skip)", in.SessionRef)
	}

	result := FeedbackResult{
		Match:      predicted == correctLabel,
		CaseStored: stored,
	}

	if e.judgments != nil {
		err := e.judgments.RecordJudgment(evaluation.Judgment{
			SessionRef:     in.SessionRef,
			PredictedLabel: predicted,
			CorrectLabel:   correctLabel,
			CaseStored:     stored,
		})
		if err != nil {
			log.Printf("[POLICY] judgment record failed: %v", err)
		}
	}

	in.State = StateResolvedWithFeedback
	return result, nil
}

// #endregion feedback
