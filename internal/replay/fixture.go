package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caseline/caseline/internal/confidence"
	"github.com/caseline/caseline/internal/retrieval"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a seeded
// case store plus scripted queries with expected gate outcomes. Embeddings
// are precomputed so runs are deterministic and provider-free.
type Fixture struct {
	Description string        `json:"description"`
	Config      FixtureConfig `json:"config"`
	SeedCases   []SeedCase    `json:"seed_cases"`
	Steps       []Step        `json:"steps"`
}

// FixtureConfig mirrors the retrieval and confidence knobs with JSON tags.
type FixtureConfig struct {
	SimilarityThreshold   float32 `json:"similarity_threshold"`
	TopK                  int     `json:"top_k"`
	MinCasesForConfidence int     `json:"min_cases_for_confidence"`
}

// SeedCase is one pre-labeled case loaded into the store before the steps run.
type SeedCase struct {
	Text       string    `json:"text"`
	Label      string    `json:"label"`
	Summary    string    `json:"summary,omitempty"`
	SessionRef string    `json:"session_ref,omitempty"`
	Embedding  []float32 `json:"embedding"`
}

// Step is one scripted query. FeedbackLabel, when set on an escalating step,
// feeds the human label back into the store before the next step runs.
type Step struct {
	ID             string    `json:"id"`
	QueryText      string    `json:"query_text"`
	Embedding      []float32 `json:"embedding"`
	SessionRef     string    `json:"session_ref,omitempty"`
	FeedbackLabel  string    `json:"feedback_label,omitempty"`
	ExpectEscalate bool      `json:"expect_escalate"`
	ExpectLabel    string    `json:"expect_label,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToRetrievalConfig converts fixture knobs to a retrieval config,
// falling back to defaults for zero values.
func (c FixtureConfig) ToRetrievalConfig() retrieval.Config {
	cfg := retrieval.DefaultConfig()
	if c.SimilarityThreshold != 0 {
		cfg.SimilarityThreshold = c.SimilarityThreshold
	}
	if c.TopK != 0 {
		cfg.TopK = c.TopK
	}
	return cfg
}

// ToConfidenceConfig converts fixture knobs to a confidence config.
func (c FixtureConfig) ToConfidenceConfig() confidence.Config {
	cfg := confidence.DefaultConfig()
	if c.MinCasesForConfidence != 0 {
		cfg.MinCasesForConfidence = c.MinCasesForConfidence
	}
	return cfg
}

// #endregion fixture-loader
