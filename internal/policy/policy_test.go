package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/evaluation"
	"github.com/caseline/caseline/internal/provlog"
	"github.com/caseline/caseline/internal/retrieval"
)

// #region helpers

// vecEmbedder returns a fixed vector per exact text, so similarity between
// texts is fully controlled by the test.
type vecEmbedder struct {
	vectors map[string][]float32
}

func (e *vecEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

type harness struct {
	engine    *Engine
	store     *casestore.Store
	judgments *evaluation.Store
	embedder  *vecEmbedder
}

func setupEngine(t *testing.T, minCases int) *harness {
	t.Helper()
	dir := t.TempDir()

	embedder := &vecEmbedder{vectors: map[string][]float32{}}
	store := casestore.Open(casestore.DefaultConfig(dir), embedder)
	retriever := retrieval.NewRetriever(store, embedder, retrieval.DefaultConfig())

	confCfg := confidence.DefaultConfig()
	confCfg.MinCasesForConfidence = minCases
	assessor := confidence.NewAssessor(confCfg)

	judgments, err := evaluation.Open(filepath.Join(dir, "eval.db"))
	if err != nil {
		t.Fatalf("evaluation.Open: %v", err)
	}
	t.Cleanup(func() { judgments.Close() })
	if err := provlog.Init(judgments.DB()); err != nil {
		t.Fatalf("provlog.Init: %v", err)
	}

	engine := NewEngine(Deps{
		Store:     store,
		Retriever: retriever,
		Assessor:  assessor,
		Judgments: judgments,
		LogDB:     judgments.DB(),
	})
	return &harness{engine: engine, store: store, judgments: judgments, embedder: embedder}
}

// seedCase registers a vector for the text and inserts it as a labeled case.
func (h *harness) seedCase(t *testing.T, text, label string, vector []float32) {
	t.Helper()
	h.embedder.vectors[text] = vector
	if _, ok := h.store.Insert(context.Background(), text, label, text, ""); !ok {
		t.Fatalf("seed insert skipped for %q", text)
	}
}

func newQuery(h *harness, text string, vector []float32, sessionRef string) *Interaction {
	h.embedder.vectors[text] = vector
	in := NewInteraction(sessionRef)
	in.AddMessage("user", text)
	return in
}

// #endregion helpers

// #region decide-tests

func TestEscalatesOnEmptyStore(t *testing.T) {
	h := setupEngine(t, 3)
	in := newQuery(h, "persistent dry cough for two weeks", []float32{1, 0, 0}, "")

	d, err := h.engine.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.Escalate {
		t.Fatal("empty store must escalate")
	}
	if d.PredictedLabel != "" {
		t.Fatalf("predicted label = %q, want empty", d.PredictedLabel)
	}
	if d.SimilarCount != 0 {
		t.Fatalf("similar count = %d, want 0", d.SimilarCount)
	}
	if in.State != StateAwaitingHumanLabel {
		t.Fatalf("state = %s, want %s", in.State, StateAwaitingHumanLabel)
	}
}

func TestSingleVerySimilarCaseStillEscalates(t *testing.T) {
	h := setupEngine(t, 3)
	h.seedCase(t, "sore throat and mild fever since yesterday", "routine", []float32{1, 0, 0})

	// Identical vector: cosine 1.0, but one case is still below the minimum.
	in := newQuery(h, "sore throat with a low fever", []float32{1, 0, 0}, "")
	d, err := h.engine.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.SimilarCount != 1 {
		t.Fatalf("similar count = %d, want 1", d.SimilarCount)
	}
	if !d.Escalate {
		t.Fatal("one similar case with a minimum of 3 must escalate, whatever the score")
	}
	if d.PredictedLabel != "routine" {
		t.Fatalf("predicted label = %q, want routine (shown to the reviewer)", d.PredictedLabel)
	}
}

func TestAutonomousAtMinimumAndNoWriteBack(t *testing.T) {
	h := setupEngine(t, 3)
	h.seedCase(t, "itchy rash on forearm", "self_care", []float32{0, 1, 0})
	h.seedCase(t, "red rash on both arms", "self_care", []float32{0, 1, 0.01})
	h.seedCase(t, "rash spreading on arm", "routine", []float32{0, 0.99, 0})

	before := h.store.Count()
	in := newQuery(h, "rash on my arm for three days", []float32{0, 1, 0}, "")
	d, err := h.engine.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Escalate {
		t.Fatalf("3 similar cases at minimum 3 must not escalate (count=%d)", d.SimilarCount)
	}
	if in.State != StateResolvedAutonomous {
		t.Fatalf("state = %s, want %s", in.State, StateResolvedAutonomous)
	}
	if d.PredictedLabel != "self_care" {
		t.Fatalf("predicted label = %q, want top exemplar's self_care", d.PredictedLabel)
	}
	if h.store.Count() != before {
		t.Fatal("autonomous outcome must not be written back to the store")
	}
}

func TestRedFlagsAreAdvisoryOnly(t *testing.T) {
	h := setupEngine(t, 1)
	h.seedCase(t, "chest tightness after climbing stairs", "urgent", []float32{1, 0})

	in := newQuery(h, "crushing chest pain radiating to my left arm", []float32{1, 0}, "")
	d, err := h.engine.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if len(d.RedFlags) == 0 {
		t.Fatal("expected cardiac red flags on the decision")
	}
	if d.Escalate {
		t.Fatal("red flags must not override the count gate")
	}
}

func TestDecideWritesDecisionLog(t *testing.T) {
	h := setupEngine(t, 3)
	in := newQuery(h, "headache behind the eyes", []float32{1}, "sess-log")
	if _, err := h.engine.Decide(context.Background(), in); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	entries, err := provlog.Recent(h.judgments.DB(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Decision != "escalate" || e.SessionRef != "sess-log" || e.SimilarCount != 0 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.QueryHash == "" {
		t.Fatal("query hash missing from log entry")
	}
}

func TestDecideRejectsFinishedInteraction(t *testing.T) {
	h := setupEngine(t, 3)
	in := newQuery(h, "mild back pain", []float32{1}, "")
	if _, err := h.engine.Decide(context.Background(), in); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if _, err := h.engine.Decide(context.Background(), in); err == nil {
		t.Fatal("second Decide on the same interaction must fail")
	}
}

// #endregion decide-tests

// #region feedback-tests

func TestFeedbackStoresCaseAndJudgment(t *testing.T) {
	h := setupEngine(t, 3)
	h.seedCase(t, "twisted ankle playing football", "routine", []float32{1, 0})

	in := newQuery(h, "swollen ankle after a fall", []float32{1, 0}, "sess-fb")
	d, err := h.engine.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.Escalate {
		t.Fatal("setup: expected escalation")
	}

	// Human disagrees with the shown prediction; the case is stored anyway.
	res, err := h.engine.SubmitFeedback(context.Background(), in, "urgent")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if !res.CaseStored {
		t.Fatal("human-labeled case must be stored")
	}
	if res.Match {
		t.Fatal("predicted routine vs corrected urgent must not count as a match")
	}
	if in.State != StateResolvedWithFeedback {
		t.Fatalf("state = %s, want %s", in.State, StateResolvedWithFeedback)
	}

	sum, err := h.judgments.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Total != 1 || sum.Correct != 0 {
		t.Fatalf("judgments = %d/%d, want 1 total 0 correct", sum.Total, sum.Correct)
	}

	// The corrected case is immediately available to retrieval.
	if got := h.store.Count(); got != 2 {
		t.Fatalf("store count = %d, want 2", got)
	}
}

func TestDuplicateSessionFeedbackStillJudged(t *testing.T) {
	h := setupEngine(t, 3)

	first := newQuery(h, "numb fingers in the morning", []float32{1, 0}, "sess-dup")
	if _, err := h.engine.Decide(context.Background(), first); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res, err := h.engine.SubmitFeedback(context.Background(), first, "routine"); err != nil || !res.CaseStored {
		t.Fatalf("first feedback: res=%+v err=%v", res, err)
	}

	second := newQuery(h, "fingers still numb today", []float32{0, 1}, "sess-dup")
	if _, err := h.engine.Decide(context.Background(), second); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	res, err := h.engine.SubmitFeedback(context.Background(), second, "urgent")
	if err != nil {
		t.Fatalf("second feedback: %v", err)
	}
	if res.CaseStored {
		t.Fatal("duplicate session must not store a second case")
	}

	if got := h.store.Count(); got != 1 {
		t.Fatalf("store count = %d, want 1", got)
	}
	sum, err := h.judgments.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Total != 2 {
		t.Fatalf("judgment total = %d, want 2 (bookkeeping records both)", sum.Total)
	}
}

func TestFeedbackRequiresEscalatedInteraction(t *testing.T) {
	h := setupEngine(t, 3)
	in := newQuery(h, "seasonal sneezing", []float32{1}, "")

	if _, err := h.engine.SubmitFeedback(context.Background(), in, "self_care"); err == nil {
		t.Fatal("feedback before a decision must fail")
	}

	h.seedCase(t, "sneezing every spring", "self_care", []float32{1})
	h.seedCase(t, "runny nose outdoors", "self_care", []float32{1})
	h.seedCase(t, "hay fever symptoms", "self_care", []float32{1})
	auto := newQuery(h, "sneezing fits in the park", []float32{1}, "")
	if _, err := h.engine.Decide(context.Background(), auto); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if _, err := h.engine.SubmitFeedback(context.Background(), auto, "self_care"); err == nil {
		t.Fatal("feedback on an autonomous resolution must fail")
	}
}

func TestFeedbackRejectsEmptyLabel(t *testing.T) {
	h := setupEngine(t, 3)
	in := newQuery(h, "tension headache", []float32{1}, "")
	if _, err := h.engine.Decide(context.Background(), in); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if _, err := h.engine.SubmitFeedback(context.Background(), in, "  "); err == nil {
		t.Fatal("blank label must be rejected")
	}
}

// #endregion feedback-tests
