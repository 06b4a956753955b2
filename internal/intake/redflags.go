package intake

import "strings"

// #region keywords

var cardiacKeywords = []string{
	"chest pain", "chest pressure", "chest tightness", "crushing pain",
	"radiating to arm", "radiating to jaw", "radiating to left",
	"heart racing", "palpitations with fainting",
}

var neuroKeywords = []string{
	"face drooping", "slurred speech", "sudden confusion",
	"worst headache of my life", "thunderclap headache",
	"sudden vision loss", "one side of my body", "seizure",
	"unresponsive", "loss of consciousness",
}

var respiratoryKeywords = []string{
	"can't breathe", "cannot breathe", "struggling to breathe",
	"gasping", "lips turning blue", "choking",
}

var traumaKeywords = []string{
	"severe bleeding", "won't stop bleeding", "deep cut", "gunshot",
	"stab", "head injury", "fell from", "major burn",
}

var mentalHealthKeywords = []string{
	"suicidal", "kill myself", "end my life", "overdose", "hurt myself",
}

// #endregion keywords

// #region screen

// RedFlag is one matched emergency indicator.
type RedFlag struct {
	Category string
	Phrase   string
}

// ScreenRedFlags scans conversation text for emergency symptom phrases via
// keyword heuristics. No model call. The result is advisory: it rides along
// on the decision for human reviewers and the provenance log, it does not
// replace the case-count escalation gate.
func ScreenRedFlags(text string) []RedFlag {
	lower := strings.ToLower(text)
	var flags []RedFlag

	categories := []struct {
		name     string
		keywords []string
	}{
		{"cardiac", cardiacKeywords},
		{"neurological", neuroKeywords},
		{"respiratory", respiratoryKeywords},
		{"trauma", traumaKeywords},
		{"mental_health", mentalHealthKeywords},
	}

	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				flags = append(flags, RedFlag{Category: cat.name, Phrase: kw})
			}
		}
	}
	return flags
}

// #endregion screen
