package replay

// #region imports
import (
	"context"
	"fmt"
	"os"

	"github.com/caseline/caseline/internal/casestore"
	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/policy"
	"github.com/caseline/caseline/internal/retrieval"
)

// #endregion

// #region types

// StepResult captures the outcome of one scripted query.
type StepResult struct {
	StepID         string
	Escalated      bool
	PredictedLabel string
	SimilarCount   int
	CaseConfidence float32
	FeedbackStored bool
	Pass           bool
	Reason         string // set when the step missed its expectation
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSteps     int
	Passed         int
	Failed         int
	Escalations    int
	Autonomous     int
	FinalCaseCount int
}

// #endregion types

// #region embedder

// fixtureEmbedder serves the precomputed vectors from the fixture. A query
// text missing from the fixture is a fixture authoring error, surfaced the
// same way a provider failure would be: the operation is skipped.
type fixtureEmbedder struct {
	vectors map[string][]float32
}

func (e *fixtureEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, fmt.Errorf("fixture has no embedding for %q", text)
	}
	return v, nil
}

// #endregion embedder

// #region run

// Run replays a fixture through the full gate pipeline: seed the store,
// issue each query, apply scripted feedback, and check expectations.
// The backing store lives in a throwaway directory; nothing persists.
func Run(f *Fixture) ([]StepResult, Summary, error) {
	dir, err := os.MkdirTemp("", "caseline-replay-")
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	embedder := &fixtureEmbedder{vectors: make(map[string][]float32)}
	for _, s := range f.SeedCases {
		embedder.vectors[s.Text] = s.Embedding
	}
	for _, s := range f.Steps {
		embedder.vectors[s.QueryText] = s.Embedding
	}

	ctx := context.Background()
	store := casestore.Open(casestore.DefaultConfig(dir), embedder)
	for i, s := range f.SeedCases {
		if _, ok := store.Insert(ctx, s.Text, s.Label, s.Summary, s.SessionRef); !ok {
			return nil, Summary{}, fmt.Errorf("seed case %d (%q) was skipped", i, s.Text)
		}
	}

	engine := policy.NewEngine(policy.Deps{
		Store:     store,
		Retriever: retrieval.NewRetriever(store, embedder, f.Config.ToRetrievalConfig()),
		Assessor:  confidence.NewAssessor(f.Config.ToConfidenceConfig()),
	})

	results := make([]StepResult, 0, len(f.Steps))
	for _, step := range f.Steps {
		r, err := runStep(ctx, engine, step)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("step %s: %w", step.ID, err)
		}
		results = append(results, r)
	}
	return results, summarize(results, store.Count()), nil
}

func runStep(ctx context.Context, engine *policy.Engine, step Step) (StepResult, error) {
	in := policy.NewInteraction(step.SessionRef)
	in.AddMessage("user", step.QueryText)

	d, err := engine.Decide(ctx, in)
	if err != nil {
		return StepResult{}, err
	}

	r := StepResult{
		StepID:         step.ID,
		Escalated:      d.Escalate,
		PredictedLabel: d.PredictedLabel,
		SimilarCount:   d.SimilarCount,
		CaseConfidence: d.Confidence.CaseConfidence,
		Pass:           true,
	}

	if d.Escalate && step.FeedbackLabel != "" {
		fb, err := engine.SubmitFeedback(ctx, in, step.FeedbackLabel)
		if err != nil {
			return StepResult{}, err
		}
		r.FeedbackStored = fb.CaseStored
	}

	if d.Escalate != step.ExpectEscalate {
		r.Pass = false
		r.Reason = fmt.Sprintf("escalate=%v, expected %v (similar=%d)", d.Escalate, step.ExpectEscalate, d.SimilarCount)
	} else if step.ExpectLabel != "" && d.PredictedLabel != step.ExpectLabel {
		r.Pass = false
		r.Reason = fmt.Sprintf("predicted %q, expected %q", d.PredictedLabel, step.ExpectLabel)
	}
	return r, nil
}

func summarize(results []StepResult, finalCount int) Summary {
	s := Summary{TotalSteps: len(results), FinalCaseCount: finalCount}
	for _, r := range results {
		if r.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Escalated {
			s.Escalations++
		} else {
			s.Autonomous++
		}
	}
	return s
}

// #endregion run
