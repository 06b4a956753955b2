package intake

import "strings"

// #region completeness

// Complete reports whether all basic intake fields are present. Empty lists
// are accepted (a patient may have no allergies); blank strings are not.
func (f Form) Complete() bool {
	if strings.TrimSpace(f.FullName) == "" {
		return false
	}
	if strings.TrimSpace(f.Birthday) == "" {
		return false
	}
	// List fields must have been asked, which the conversational layer marks
	// by setting them non-nil even when empty.
	for _, list := range [][]string{f.Prescriptions, f.Allergies, f.Conditions, f.VisitReasons} {
		if list == nil {
			return false
		}
	}
	return true
}

// ReadyToDecide reports whether the interaction may leave the collecting
// phase: basic info plus a symptom narrative.
func (f Form) ReadyToDecide() bool {
	return f.Complete() && strings.TrimSpace(f.DetailedSymptoms) != ""
}

// #endregion completeness

// #region conversation-text

// ConversationText reduces a conversation to the text that gets embedded:
// every user turn, plus assistant turns that discuss symptoms. System turns
// and small talk from the assistant are noise for similarity purposes.
func ConversationText(messages []Message) string {
	var parts []string
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case "user":
			parts = append(parts, content)
		case "assistant":
			if strings.Contains(strings.ToLower(content), "symptom") {
				parts = append(parts, content)
			}
		}
	}
	return strings.Join(parts, " ")
}

// #endregion conversation-text
