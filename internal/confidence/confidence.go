package confidence

// #region assessor
// Assessor turns "how many similar cases exist" into a bounded confidence
// score and the escalate/proceed decision. The count gate is authoritative;
// every smoothed score here is display-only and must never stand in for it.
type Assessor struct {
	config Config
}

// NewAssessor creates an assessor with the given configuration.
func NewAssessor(config Config) *Assessor {
	return &Assessor{config: config}
}

// #endregion assessor

// #region case-confidence

// CaseConfidence ramps linearly to 0.5 at exactly M matching cases, then on
// to 1.0 as matches double past M. One ramp for the whole range: 0 cases is
// 0, M cases is 0.5, 2M or more is 1.0, non-decreasing everywhere in between.
func (a *Assessor) CaseConfidence(numSimilar int) float32 {
	m := a.config.MinCasesForConfidence
	if m <= 0 {
		return 1
	}
	if numSimilar < 0 {
		return 0
	}
	c := float32(numSimilar) / float32(2*m)
	if c > 1 {
		return 1
	}
	return c
}

// #endregion case-confidence

// #region literature-confidence

// LiteratureConfidence saturates at the configured citation count.
func (a *Assessor) LiteratureConfidence(numCitations int) float32 {
	sat := a.config.LiteratureSaturation
	if sat <= 0 {
		sat = 3
	}
	c := float32(numCitations) / float32(sat)
	if c > 1 {
		return 1
	}
	return c
}

// #endregion literature-confidence

// #region blended

// Blended combines case and literature confidence by the configured weights.
// For response framing only — it never feeds the escalation gate.
func (a *Assessor) Blended(numSimilar, numCitations int) Breakdown {
	caseConf := a.CaseConfidence(numSimilar)
	litConf := a.LiteratureConfidence(numCitations)
	return Breakdown{
		CaseConfidence:       caseConf,
		LiteratureConfidence: litConf,
		Blended:              caseConf*a.config.CaseWeight + litConf*a.config.LiteratureWeight,
	}
}

// #endregion blended

// #region gate

// ShouldEscalate is the authoritative gate: escalate whenever fewer than M
// similar cases exist, regardless of how high any smoothed score is.
func (a *Assessor) ShouldEscalate(numSimilar int) bool {
	return numSimilar < a.config.MinCasesForConfidence
}

// #endregion gate
