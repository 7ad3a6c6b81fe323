package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// #region types

// DefaultTolerance is the absolute tolerance for expected-result checks.
const DefaultTolerance = 1e-6

// Result is the outcome of replaying one attempt.
type Result struct {
	Index     int
	UserID    string
	ConceptID string
	Update    tracker.MasteryUpdate

	// Checked is true when an expected result existed for this index.
	Checked  bool
	Matched  bool
	Mismatch string
}

// Summary aggregates a replay run.
type Summary struct {
	TotalAttempts int
	Checked       int
	Matched       int
	Mismatched    int
	Results       []Result

	// FinalState is the full repository contents after the run, in
	// snapshot form.
	FinalState store.Snapshot
}

// #endregion types

// #region run

// Run replays a fixture through a fresh in-memory tracker and checks
// expected results within the given absolute tolerance (<=0 uses
// DefaultTolerance). Operates entirely in memory.
func Run(fix Fixture, tolerance float64) (Summary, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	repo := store.NewMemory()
	if fix.StartState != nil {
		if err := store.Import(repo, *fix.StartState); err != nil {
			return Summary{}, fmt.Errorf("seed start state: %w", err)
		}
	}

	cfg := tracker.DefaultConfig()
	if fix.Config != nil {
		cfg = *fix.Config
	}
	tr := tracker.New(repo, cfg)

	summary := Summary{
		TotalAttempts: len(fix.Attempts),
		Results:       make([]Result, 0, len(fix.Attempts)),
	}

	for i, att := range fix.Attempts {
		update, err := tr.UpdateMastery(att.UserID, att.ConceptID, att.Correct, att.TimeSpent)
		if err != nil {
			return Summary{}, fmt.Errorf("attempt %d: %w", i, err)
		}

		res := Result{
			Index:     i,
			UserID:    att.UserID,
			ConceptID: att.ConceptID,
			Update:    update,
		}

		if i < len(fix.ExpectedResults) {
			expected := fix.ExpectedResults[i]
			res.Checked = true
			summary.Checked++

			switch {
			case math.Abs(update.PosteriorMastery-expected.PosteriorMastery) > tolerance:
				res.Mismatch = fmt.Sprintf("posterior %.6f, expected %.6f", update.PosteriorMastery, expected.PosteriorMastery)
			case math.Abs(update.Ability-expected.Theta) > tolerance:
				res.Mismatch = fmt.Sprintf("theta %.6f, expected %.6f", update.Ability, expected.Theta)
			default:
				res.Matched = true
			}

			if res.Matched {
				summary.Matched++
			} else {
				summary.Mismatched++
			}
		}

		summary.Results = append(summary.Results, res)
	}

	final, err := store.Export(repo)
	if err != nil {
		return Summary{}, fmt.Errorf("export final state: %w", err)
	}
	summary.FinalState = final

	return summary, nil
}

// #endregion run
