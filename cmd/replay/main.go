package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/knowledge-tracer/internal/logging"
	"github.com/danielpatrickdp/knowledge-tracer/internal/replay"
	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
)

// Replays recorded attempt streams through a fresh tracker and verifies
// the model reproduces the logged trajectory. Fixture mode replays a JSON
// fixture; db mode replays a store's attempt log against itself.

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "path to tracker db (db mode)")
	tolerance := flag.Float64("tolerance", replay.DefaultTolerance, "absolute tolerance for expected-result checks")
	flag.Parse()

	if (*fixturePath == "" && *dbPath == "") || (*fixturePath != "" && *dbPath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--tolerance t]")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/tracker.db [--tolerance t]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *tolerance)
	} else {
		exitCode = runDBMode(*dbPath, *tolerance)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string, tolerance float64) int {
	fix, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	summary, err := replay.Run(fix, tolerance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	return report(summary)
}

func report(summary replay.Summary) int {
	for _, res := range summary.Results {
		status := "-"
		if res.Checked {
			if res.Matched {
				status = "ok"
			} else {
				status = "MISMATCH " + res.Mismatch
			}
		}
		fmt.Printf("%3d %s/%s mastery %.4f -> %.4f theta %.4f  %s\n",
			res.Index, res.UserID, res.ConceptID,
			res.Update.PriorMastery, res.Update.PosteriorMastery, res.Update.Ability, status)
	}

	fmt.Printf("\n%d attempts, %d checked, %d matched, %d mismatched\n",
		summary.TotalAttempts, summary.Checked, summary.Matched, summary.Mismatched)

	if summary.Mismatched > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region db-mode

// runDBMode rebuilds the attempt stream from the db's attempt log, seeds
// concept parameters from the same db, and verifies a fresh tracker
// reproduces the logged posteriors and thetas.
func runDBMode(dbPath string, tolerance float64) int {
	s, err := store.OpenSQLite(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer s.Close()

	entries, err := logging.NewAttemptLog(s.DB()).List("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read attempt log: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "attempt log is empty")
		return 1
	}

	fix, err := fixtureFromLog(s, entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build fixture: %v\n", err)
		return 1
	}

	summary, err := replay.Run(fix, tolerance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	code := report(summary)
	if code == 0 {
		if err := verifyFinalState(s, summary, tolerance); err != nil {
			fmt.Fprintf(os.Stderr, "final state check: %v\n", err)
			return 1
		}
		fmt.Println("final state matches stored state")
	}
	return code
}

// fixtureFromLog turns the attempt log into a fixture seeded with the
// db's concept parameters. Only valid when the log covers every attempt
// since the store was created.
func fixtureFromLog(s *store.SQLite, entries []logging.AttemptEntry) (replay.Fixture, error) {
	concepts, err := s.Concepts()
	if err != nil {
		return replay.Fixture{}, err
	}

	seed := store.Snapshot{
		UserStates:    map[string]store.SnapshotUser{},
		ConceptParams: map[string]store.SnapshotConcept{},
	}
	for _, p := range concepts {
		seed.ConceptParams[p.ConceptID] = store.SnapshotConcept{
			ConceptID:      p.ConceptID,
			Beta:           p.Beta,
			Slip:           p.Slip,
			Guess:          p.Guess,
			Learn:          p.Learn,
			Transit:        p.Transit,
			Discrimination: p.Discrimination,
		}
	}

	fix := replay.Fixture{
		Description: "attempt log replay",
		StartState:  &seed,
	}
	for _, e := range entries {
		fix.Attempts = append(fix.Attempts, replay.Attempt{
			UserID:    e.UserID,
			ConceptID: e.ConceptID,
			Correct:   e.Correct,
			TimeSpent: e.TimeSpent,
		})
		fix.ExpectedResults = append(fix.ExpectedResults, replay.ExpectedResult{
			PosteriorMastery: e.Posterior,
			Theta:            e.Theta,
		})
	}
	return fix, nil
}

// verifyFinalState compares the replay's final mastery and theta per user
// against what the store currently holds.
func verifyFinalState(s *store.SQLite, summary replay.Summary, tolerance float64) error {
	for userID, replayed := range summary.FinalState.UserStates {
		stored, ok, err := s.GetUser(userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %s missing from store", userID)
		}
		if math.Abs(stored.Theta-replayed.Theta) > tolerance {
			return fmt.Errorf("user %s theta %.6f, replayed %.6f", userID, stored.Theta, replayed.Theta)
		}
		for conceptID, m := range replayed.ConceptMastery {
			if math.Abs(stored.ConceptMastery[conceptID]-m) > tolerance {
				return fmt.Errorf("user %s concept %s mastery %.6f, replayed %.6f",
					userID, conceptID, stored.ConceptMastery[conceptID], m)
			}
		}
	}
	return nil
}

// #endregion db-mode
