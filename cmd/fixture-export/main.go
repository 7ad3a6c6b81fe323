package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/knowledge-tracer/internal/logging"
	"github.com/danielpatrickdp/knowledge-tracer/internal/replay"
	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
)

// Exports a tracker db's attempt log as a replay fixture with expected
// results, so a recorded trajectory becomes a regression test.

// #region main

func main() {
	dbPath := flag.String("db", "", "path to tracker db")
	outPath := flag.String("out", "", "output fixture JSON path")
	user := flag.String("user", "", "restrict export to one user")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/tracker.db --out path/to/fixture.json [--user id]")
		os.Exit(2)
	}

	if err := run(*dbPath, *outPath, *user); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, outPath, user string) error {
	s, err := store.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer s.Close()

	entries, err := logging.NewAttemptLog(s.DB()).List(user)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no attempts to export")
	}

	concepts, err := s.Concepts()
	if err != nil {
		return err
	}

	// Seed the fixture with concept parameters only: user state is
	// rebuilt from the attempts themselves.
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
		Description: fmt.Sprintf("exported from %s (%d attempts)", dbPath, len(entries)),
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

	if err := replay.WriteFixture(outPath, fix); err != nil {
		return err
	}

	fmt.Printf("exported %d attempts to %s\n", len(entries), outPath)
	return nil
}

// #endregion export
