package retrieval

import "github.com/caseline/caseline/internal/casestore"

// #region config
// Config holds thresholds and limits for similarity retrieval.
type Config struct {
	SimilarityThreshold float32 `yaml:"similarity_threshold"` // min cosine similarity to count as a match
	TopK                int     `yaml:"top_k"`                // max exemplars returned for display
}

// DefaultConfig returns sensible defaults for retrieval.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.75,
		TopK:                5,
	}
}

// #endregion config

// #region match
// Match pairs a stored case with its similarity to the query. Transient,
// never persisted.
type Match struct {
	Case  casestore.Case
	Score float32
}

// #endregion match
