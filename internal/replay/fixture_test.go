package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "learning_loop.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(f.Steps))
	}
	if f.Config.MinCasesForConfidence != 2 {
		t.Fatalf("min cases = %d, want 2", f.Config.MinCasesForConfidence)
	}
	if f.Steps[0].FeedbackLabel != "routine" {
		t.Fatalf("step 0 feedback label = %q, want routine", f.Steps[0].FeedbackLabel)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestLoadFixtureBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFixtureConfigDefaults(t *testing.T) {
	var c FixtureConfig // all zero: fall back to defaults

	rc := c.ToRetrievalConfig()
	if rc.SimilarityThreshold != 0.75 || rc.TopK != 5 {
		t.Fatalf("retrieval defaults = %+v", rc)
	}
	cc := c.ToConfidenceConfig()
	if cc.MinCasesForConfidence != 3 {
		t.Fatalf("confidence default min = %d, want 3", cc.MinCasesForConfidence)
	}
}

// #endregion fixture-tests
