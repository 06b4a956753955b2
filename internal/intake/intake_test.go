package intake

import "testing"

func completeForm() Form {
	return Form{
		FullName:         "Ada Example",
		Birthday:         "1980-04-02",
		Prescriptions:    []string{},
		Allergies:        []string{"penicillin"},
		Conditions:       []string{},
		VisitReasons:     []string{"persistent cough"},
		DetailedSymptoms: "dry cough for two weeks, worse at night",
	}
}

func TestFormComplete(t *testing.T) {
	f := completeForm()
	if !f.Complete() {
		t.Fatal("form should be complete")
	}
	if !f.ReadyToDecide() {
		t.Fatal("form should be ready to decide")
	}
}

func TestFormIncompleteCases(t *testing.T) {
	f := completeForm()
	f.FullName = "  "
	if f.Complete() {
		t.Fatal("blank name should be incomplete")
	}

	f = completeForm()
	f.Allergies = nil
	if f.Complete() {
		t.Fatal("unasked allergies should be incomplete")
	}

	f = completeForm()
	f.DetailedSymptoms = ""
	if !f.Complete() {
		t.Fatal("basic info is still complete without symptoms")
	}
	if f.ReadyToDecide() {
		t.Fatal("not ready to decide without a symptom narrative")
	}
}

func TestConversationTextExtraction(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You are an intake assistant."},
		{Role: "user", Content: "I have a sharp pain in my side."},
		{Role: "assistant", Content: "Can you describe your symptoms in more detail?"},
		{Role: "assistant", Content: "Thanks, one moment."},
		{Role: "user", Content: "It started yesterday after lifting."},
		{Role: "user", Content: ""},
	}
	got := ConversationText(messages)
	want := "I have a sharp pain in my side. Can you describe your symptoms in more detail? It started yesterday after lifting."
	if got != want {
		t.Fatalf("conversation text:\ngot  %q\nwant %q", got, want)
	}
}

func TestScreenRedFlags(t *testing.T) {
	flags := ScreenRedFlags("Severe chest pain radiating to left arm, and I can't breathe well")
	if len(flags) < 2 {
		t.Fatalf("expected cardiac and respiratory flags, got %v", flags)
	}
	seen := map[string]bool{}
	for _, f := range flags {
		seen[f.Category] = true
	}
	if !seen["cardiac"] || !seen["respiratory"] {
		t.Fatalf("missing categories: %v", flags)
	}

	if got := ScreenRedFlags("mild seasonal allergies and a runny nose"); len(got) != 0 {
		t.Fatalf("benign text flagged: %v", got)
	}
}
