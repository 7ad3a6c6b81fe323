package mastery

import (
	"math"
	"testing"
)

func defaultParams(string) Params {
	return Params{Slip: 0.1, Guess: 0.2}
}

// #region filter-strategy-tests

func TestFilterStrategy_FoldsSequentially(t *testing.T) {
	s := FilterStrategy{DefaultPrior: 0.3}
	attempts := []Attempt{
		{ConceptID: "loops", Correct: true},
		{ConceptID: "loops", Correct: true},
	}

	got := s.Estimate(attempts, nil, defaultParams)

	// Fold by hand.
	m := 0.3
	m = BayesUpdate(m, Likelihood(true, m, 0.1, 0.2))
	m = BayesUpdate(m, Likelihood(true, m, 0.1, 0.2))

	if math.Abs(got["loops"]-m) > 1e-12 {
		t.Fatalf("expected %f, got %f", m, got["loops"])
	}
}

func TestFilterStrategy_UsesSuppliedPrior(t *testing.T) {
	s := FilterStrategy{DefaultPrior: 0.3}
	attempts := []Attempt{{ConceptID: "loops", Correct: true}}
	priors := map[string]float64{"loops": 0.8}

	got := s.Estimate(attempts, priors, defaultParams)
	want := BayesUpdate(0.8, Likelihood(true, 0.8, 0.1, 0.2))
	if math.Abs(got["loops"]-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, got["loops"])
	}
}

func TestFilterStrategy_CarriesUnobservedPriors(t *testing.T) {
	s := FilterStrategy{DefaultPrior: 0.3}
	priors := map[string]float64{"recursion": 0.6}

	got := s.Estimate(nil, priors, defaultParams)
	if got["recursion"] != 0.6 {
		t.Fatalf("unobserved prior should carry through, got %f", got["recursion"])
	}
}

// #endregion filter-strategy-tests

// #region beta-bernoulli-tests

func TestBetaBernoulli_LaplaceMean(t *testing.T) {
	s := DefaultBetaBernoulli()
	attempts := []Attempt{
		{ConceptID: "loops", Correct: true},
		{ConceptID: "loops", Correct: true},
		{ConceptID: "loops", Correct: false},
	}

	// (2+1)/(3+1+1) = 0.6
	got := s.Estimate(attempts, nil, defaultParams)
	if math.Abs(got["loops"]-0.6) > 1e-12 {
		t.Fatalf("expected 0.6, got %f", got["loops"])
	}
}

func TestBetaBernoulli_BlendsWithPrior(t *testing.T) {
	s := DefaultBetaBernoulli()
	attempts := []Attempt{
		{ConceptID: "loops", Correct: true},
		{ConceptID: "loops", Correct: false},
	}
	priors := map[string]float64{"loops": 0.9}

	// posterior mean (1+1)/(2+2) = 0.5; weight = 2/(2+2) = 0.5
	// blended = 0.5*0.5 + 0.5*0.9 = 0.7
	got := s.Estimate(attempts, priors, defaultParams)
	if math.Abs(got["loops"]-0.7) > 1e-12 {
		t.Fatalf("expected 0.7, got %f", got["loops"])
	}
}

func TestBetaBernoulli_CarriesUnobservedPriors(t *testing.T) {
	s := DefaultBetaBernoulli()
	priors := map[string]float64{"recursion": 0.4}

	got := s.Estimate(nil, priors, defaultParams)
	if got["recursion"] != 0.4 {
		t.Fatalf("unobserved prior should carry through, got %f", got["recursion"])
	}
}

func TestStrategies_NotEquivalent(t *testing.T) {
	// The two estimators deliberately disagree; a regression that makes
	// them agree means one was replaced with the other.
	attempts := []Attempt{
		{ConceptID: "loops", Correct: true},
		{ConceptID: "loops", Correct: false},
		{ConceptID: "loops", Correct: true},
	}
	filter := FilterStrategy{DefaultPrior: 0.3}.Estimate(attempts, nil, defaultParams)
	beta := DefaultBetaBernoulli().Estimate(attempts, nil, defaultParams)

	if math.Abs(filter["loops"]-beta["loops"]) < 1e-6 {
		t.Fatalf("strategies unexpectedly agree: %f vs %f", filter["loops"], beta["loops"])
	}
}

// #endregion beta-bernoulli-tests
