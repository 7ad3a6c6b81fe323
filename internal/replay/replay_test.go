package replay

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/knowledge-tracer/internal/irt"
	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
)

func knownScenarioFixture() Fixture {
	return Fixture{
		Description: "single correct attempt from the default prior",
		StartState: &store.Snapshot{
			ConceptParams: map[string]store.SnapshotConcept{
				"loops": {
					ConceptID:      "loops",
					Beta:           0.5,
					Slip:           0.1,
					Guess:          0.2,
					Learn:          0.3,
					Transit:        0.1,
					Discrimination: 1.7,
				},
			},
		},
		Attempts: []Attempt{
			{UserID: "u1", ConceptID: "loops", Correct: true, TimeSpent: 30},
		},
	}
}

// #region run-tests

func TestRun_MatchesExpectedResults(t *testing.T) {
	fix := knownScenarioFixture()

	// posterior = 0.123/0.536 + learning boost at 30s.
	preBoost := 0.123 / 0.536
	posterior := preBoost + 0.3*(1-preBoost)*0.1

	fix.ExpectedResults = []ExpectedResult{
		{PosteriorMastery: posterior, Theta: irt.Step(0, 0.5, true, irt.DefaultDiscrimination).Theta},
	}

	summary, err := Run(fix, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.TotalAttempts != 1 || summary.Checked != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.Mismatched != 0 {
		t.Fatalf("mismatch: %s", summary.Results[0].Mismatch)
	}
}

func TestRun_ReportsMismatch(t *testing.T) {
	fix := knownScenarioFixture()
	fix.ExpectedResults = []ExpectedResult{
		{PosteriorMastery: 0.9, Theta: 0},
	}

	summary, err := Run(fix, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Mismatched != 1 || summary.Matched != 0 {
		t.Fatalf("expected 1 mismatch, got %+v", summary)
	}
	if summary.Results[0].Mismatch == "" {
		t.Fatal("mismatch reason missing")
	}
}

func TestRun_TrailingAttemptsUnchecked(t *testing.T) {
	fix := knownScenarioFixture()
	fix.Attempts = append(fix.Attempts, Attempt{UserID: "u1", ConceptID: "loops", Correct: false, TimeSpent: 10})
	// No expected results at all.

	summary, err := Run(fix, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.TotalAttempts != 2 || summary.Checked != 0 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	for _, res := range summary.Results {
		if res.Checked {
			t.Fatalf("attempt %d checked without expectation", res.Index)
		}
	}
}

func TestRun_FinalStateExported(t *testing.T) {
	summary, err := Run(knownScenarioFixture(), 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	u, ok := summary.FinalState.UserStates["u1"]
	if !ok {
		t.Fatal("final state missing user")
	}
	if math.Abs(u.ConceptMastery["loops"]-summary.Results[0].Update.PosteriorMastery) > 1e-12 {
		t.Fatalf("final state %f out of step with update %f", u.ConceptMastery["loops"], summary.Results[0].Update.PosteriorMastery)
	}
	if _, ok := summary.FinalState.ConceptParams["loops"]; !ok {
		t.Fatal("final state missing concept params")
	}
}

func TestRun_Deterministic(t *testing.T) {
	fix := knownScenarioFixture()
	for i := 0; i < 20; i++ {
		fix.Attempts = append(fix.Attempts, Attempt{
			UserID: "u1", ConceptID: "loops", Correct: i%2 == 0, TimeSpent: float64(5 * i),
		})
	}

	a, err := Run(fix, 0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(fix, 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	ua, ub := a.FinalState.UserStates["u1"], b.FinalState.UserStates["u1"]
	if ua.ConceptMastery["loops"] != ub.ConceptMastery["loops"] || ua.Theta != ub.Theta {
		t.Fatalf("replay diverged: %+v vs %+v", ua, ub)
	}
}

// #endregion run-tests

// #region fixture-io-tests

func TestFixture_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	fix := knownScenarioFixture()
	fix.ExpectedResults = []ExpectedResult{{PosteriorMastery: 0.25, Theta: 0.4}}

	if err := WriteFixture(path, fix); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Description != fix.Description {
		t.Fatalf("description mangled: %q", got.Description)
	}
	if len(got.Attempts) != 1 || got.Attempts[0] != fix.Attempts[0] {
		t.Fatalf("attempts mangled: %+v", got.Attempts)
	}
	if len(got.ExpectedResults) != 1 || got.ExpectedResults[0] != fix.ExpectedResults[0] {
		t.Fatalf("expectations mangled: %+v", got.ExpectedResults)
	}
	if got.StartState == nil || got.StartState.ConceptParams["loops"].Slip != 0.1 {
		t.Fatalf("start state mangled: %+v", got.StartState)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

// #endregion fixture-io-tests
