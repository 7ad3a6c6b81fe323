package mastery

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// #region likelihood-tests

func TestLikelihood_Correct(t *testing.T) {
	// m*(1-slip) + (1-m)*guess = 0.3*0.9 + 0.7*0.2 = 0.41
	got := Likelihood(true, 0.3, 0.1, 0.2)
	if !almostEqual(got, 0.41) {
		t.Fatalf("expected 0.41, got %f", got)
	}
}

func TestLikelihood_Incorrect(t *testing.T) {
	// m*slip + (1-m)*(1-guess) = 0.3*0.1 + 0.7*0.8 = 0.59
	got := Likelihood(false, 0.3, 0.1, 0.2)
	if !almostEqual(got, 0.59) {
		t.Fatalf("expected 0.59, got %f", got)
	}
}

// #endregion likelihood-tests

// #region bayes-tests

func TestBayesUpdate_KnownScenario(t *testing.T) {
	// prior 0.3, likelihood 0.41:
	// 0.3*0.41 / (0.3*0.41 + 0.7*0.59) = 0.123/0.536
	got := BayesUpdate(0.3, 0.41)
	want := 0.123 / 0.536
	if !almostEqual(got, want) {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestBayesUpdate_ZeroDenominator(t *testing.T) {
	// prior 0 with likelihood 1 cancels the denominator; the prior
	// comes back unchanged.
	if got := BayesUpdate(0, 1); got != 0 {
		t.Fatalf("expected prior 0 back, got %f", got)
	}
	if got := BayesUpdate(1, 0); got != 1 {
		t.Fatalf("expected prior 1 back, got %f", got)
	}
}

func TestBayesUpdate_Clamped(t *testing.T) {
	if got := BayesUpdate(0.999, 0.999); got > MaxMastery {
		t.Fatalf("posterior %f exceeds clamp", got)
	}
	if got := BayesUpdate(0.001, 0.001); got < MinMastery {
		t.Fatalf("posterior %f below clamp", got)
	}
}

func TestBayesUpdate_CorrectNeverBelowIncorrect(t *testing.T) {
	// Holding prior/params fixed, a correct answer never yields a lower
	// posterior than an incorrect one.
	priors := []float64{0.05, 0.3, 0.5, 0.7, 0.95}
	for _, prior := range priors {
		correct := BayesUpdate(prior, Likelihood(true, prior, 0.1, 0.2))
		incorrect := BayesUpdate(prior, Likelihood(false, prior, 0.1, 0.2))
		if correct < incorrect {
			t.Fatalf("prior %f: correct posterior %f below incorrect %f", prior, correct, incorrect)
		}
	}
}

// #endregion bayes-tests

// #region boost-tests

func TestApplyLearningBoost_IncorrectUnchanged(t *testing.T) {
	for _, m := range []float64{0.01, 0.3, 0.5, 0.99} {
		if got := ApplyLearningBoost(m, false, 0.3, 120); got != m {
			t.Fatalf("incorrect answer changed mastery %f -> %f", m, got)
		}
	}
}

func TestApplyLearningBoost_CorrectArithmetic(t *testing.T) {
	// boost = 0.3 * (1-0.5) * min(15/30,1) * 0.1 = 0.0075
	got := ApplyLearningBoost(0.5, true, 0.3, 15)
	if !almostEqual(got, 0.5075) {
		t.Fatalf("expected 0.5075, got %f", got)
	}
}

func TestApplyLearningBoost_TimeSaturates(t *testing.T) {
	at30 := ApplyLearningBoost(0.5, true, 0.3, 30)
	at300 := ApplyLearningBoost(0.5, true, 0.3, 300)
	if !almostEqual(at30, at300) {
		t.Fatalf("boost should saturate at 30s: %f vs %f", at30, at300)
	}
}

func TestApplyLearningBoost_Clamped(t *testing.T) {
	if got := ApplyLearningBoost(0.99, true, 1, 1000); got > MaxMastery {
		t.Fatalf("boosted mastery %f exceeds clamp", got)
	}
}

// #endregion boost-tests
