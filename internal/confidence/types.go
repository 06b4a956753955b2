package confidence

// #region config
// Config holds the thresholds and weights for confidence assessment.
type Config struct {
	// MinCasesForConfidence is the number of matching cases required before
	// the system may act without a human (M).
	MinCasesForConfidence int `yaml:"min_cases_for_confidence"`

	// CaseWeight and LiteratureWeight blend case-confidence with
	// literature-confidence for display. They should sum to 1.
	CaseWeight       float32 `yaml:"case_weight"`
	LiteratureWeight float32 `yaml:"literature_weight"`

	// LiteratureSaturation is the citation count at which literature
	// confidence reaches 1.0.
	LiteratureSaturation int `yaml:"literature_saturation"`
}

// DefaultConfig returns sensible defaults for confidence assessment.
func DefaultConfig() Config {
	return Config{
		MinCasesForConfidence: 3,
		CaseWeight:            0.6,
		LiteratureWeight:      0.4,
		LiteratureSaturation:  3,
	}
}

// #endregion config

// #region breakdown
// Breakdown exposes the components behind a blended confidence value.
type Breakdown struct {
	CaseConfidence       float32 `json:"case_confidence"`
	LiteratureConfidence float32 `json:"literature_confidence"`
	Blended              float32 `json:"blended"`
}

// #endregion breakdown
