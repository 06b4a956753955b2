package confidence

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func TestCaseConfidenceAnchors(t *testing.T) {
	a := NewAssessor(Config{MinCasesForConfidence: 3, CaseWeight: 0.6, LiteratureWeight: 0.4, LiteratureSaturation: 3})

	if got := a.CaseConfidence(0); got != 0 {
		t.Fatalf("confidence(0) = %v, want 0", got)
	}
	if got := a.CaseConfidence(3); !almostEqual(got, 0.5) {
		t.Fatalf("confidence(M) = %v, want 0.5", got)
	}
	if got := a.CaseConfidence(6); !almostEqual(got, 1.0) {
		t.Fatalf("confidence(2M) = %v, want 1.0", got)
	}
	if got := a.CaseConfidence(50); !almostEqual(got, 1.0) {
		t.Fatalf("confidence(n >= 2M) = %v, want 1.0", got)
	}
}

func TestCaseConfidenceMonotonic(t *testing.T) {
	a := NewAssessor(DefaultConfig())
	prev := float32(-1)
	for n := 0; n <= 20; n++ {
		c := a.CaseConfidence(n)
		if c < prev {
			t.Fatalf("confidence decreased at n=%d: %v < %v", n, c, prev)
		}
		if c < 0 || c > 1 {
			t.Fatalf("confidence out of range at n=%d: %v", n, c)
		}
		prev = c
	}
}

func TestNoJumpAtThreshold(t *testing.T) {
	a := NewAssessor(Config{MinCasesForConfidence: 4})
	below := a.CaseConfidence(3)
	at := a.CaseConfidence(4)
	if below > at {
		t.Fatalf("confidence drops crossing M: %v -> %v", below, at)
	}
	if !almostEqual(at, 0.5) {
		t.Fatalf("confidence(M) = %v, want 0.5", at)
	}
}

func TestShouldEscalateIsStrictCountGate(t *testing.T) {
	a := NewAssessor(Config{MinCasesForConfidence: 3})
	for n, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, 4: false, 100: false} {
		if got := a.ShouldEscalate(n); got != want {
			t.Fatalf("ShouldEscalate(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestGateIndependentOfBlendedConfidence(t *testing.T) {
	// Heavy literature evidence can push the blended score past 0.5 while the
	// case count is still below M. The gate must still escalate.
	a := NewAssessor(Config{MinCasesForConfidence: 3, CaseWeight: 0.3, LiteratureWeight: 0.7, LiteratureSaturation: 3})

	numSimilar := 2 // below M
	b := a.Blended(numSimilar, 5)
	if b.Blended <= 0.5 {
		t.Fatalf("test setup: blended %v should exceed 0.5", b.Blended)
	}
	if !a.ShouldEscalate(numSimilar) {
		t.Fatal("gate must escalate on count < M regardless of blended confidence")
	}
}

func TestLiteratureConfidenceSaturates(t *testing.T) {
	a := NewAssessor(DefaultConfig())
	if got := a.LiteratureConfidence(0); got != 0 {
		t.Fatalf("lit confidence(0) = %v", got)
	}
	if got := a.LiteratureConfidence(3); !almostEqual(got, 1.0) {
		t.Fatalf("lit confidence(3) = %v, want 1.0", got)
	}
	if got := a.LiteratureConfidence(10); !almostEqual(got, 1.0) {
		t.Fatalf("lit confidence(10) = %v, want 1.0", got)
	}
}

func TestBlendedWeights(t *testing.T) {
	a := NewAssessor(Config{MinCasesForConfidence: 3, CaseWeight: 0.6, LiteratureWeight: 0.4, LiteratureSaturation: 3})
	b := a.Blended(3, 3) // case=0.5, lit=1.0
	want := float32(0.5*0.6 + 1.0*0.4)
	if !almostEqual(b.Blended, want) {
		t.Fatalf("blended = %v, want %v", b.Blended, want)
	}
	if !almostEqual(b.CaseConfidence, 0.5) || !almostEqual(b.LiteratureConfidence, 1.0) {
		t.Fatalf("breakdown wrong: %+v", b)
	}
}
