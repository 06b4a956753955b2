package casestore

import "time"

// #region case

// Case is one stored labeled exemplar: the text a conversation reduced to,
// the ground-truth outcome a human assigned, and the embedding used for
// similarity retrieval.
type Case struct {
	ID         int       `json:"id"`
	SourceText string    `json:"source_text"`
	Label      string    `json:"label"`
	Summary    string    `json:"summary"`
	Embedding  []float32 `json:"embedding"`
	SessionRef string    `json:"session_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// #endregion case

// #region document

// document is the on-disk shape of the backing file: one JSON object holding
// every case in insertion order. Whole-document read on load, whole-document
// overwrite on every insert.
type document struct {
	Cases []Case `json:"cases"`
}

// #endregion document

// #region config

// Config holds case store settings.
type Config struct {
	Path          string `yaml:"path"`            // backing JSON document
	EncryptAtRest bool   `yaml:"encrypt_at_rest"` // keystream-encrypt the document
	KeyPath       string `yaml:"key_path"`        // key file, defaults next to Path
	SummaryLen    int    `yaml:"summary_len"`     // truncation length for derived summaries
}

// DefaultConfig returns store settings for the given data directory.
func DefaultConfig(dataDir string) Config {
	return Config{
		Path:       dataDir + "/case_vectors.json",
		KeyPath:    dataDir + "/.case_key",
		SummaryLen: 200,
	}
}

// #endregion config

// #region stats

// Stats summarizes store contents for dashboards and inspection.
type Stats struct {
	TotalCases    int            `json:"total_cases"`
	CountsByLabel map[string]int `json:"counts_by_label"`
}

// #endregion stats
