package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// Dumps learners and concept parameters from a tracker database.

// #region main

func main() {
	dbPath := flag.String("db", "", "path to tracker db")
	user := flag.String("user", "", "show full knowledge state for one user")
	concepts := flag.Bool("concepts", false, "list concept parameters")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/tracker.db [--user id] [--concepts] [--json]")
		os.Exit(2)
	}

	s, err := store.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	switch {
	case *user != "":
		err = runUserMode(s, *user, *jsonOut)
	case *concepts:
		err = runConceptMode(s, *jsonOut)
	default:
		err = runListMode(s, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type userRow struct {
	UserID         string  `json:"user_id"`
	Theta          float64 `json:"theta"`
	ConceptCount   int     `json:"concept_count"`
	OverallMastery float64 `json:"overall_mastery"`
}

func runListMode(s *store.SQLite, jsonOut bool) error {
	users, err := s.Users()
	if err != nil {
		return err
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		row := userRow{UserID: u.UserID, Theta: u.Theta, ConceptCount: len(u.ConceptMastery)}
		if len(u.ConceptMastery) > 0 {
			sum := 0.0
			for _, m := range u.ConceptMastery {
				sum += m
			}
			row.OverallMastery = sum / float64(len(u.ConceptMastery))
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-20s %8s %9s %8s\n", "user", "theta", "concepts", "mastery")
	for _, r := range rows {
		fmt.Printf("%-20s %8.3f %9d %8.3f\n", r.UserID, r.Theta, r.ConceptCount, r.OverallMastery)
	}
	return nil
}

// #endregion list-mode

// #region user-mode

// runUserMode renders one learner's knowledge state through a read-only
// tracker so the output matches what collaborators see.
func runUserMode(s *store.SQLite, userID string, jsonOut bool) error {
	tr := tracker.New(s, tracker.DefaultConfig())
	state, err := tr.KnowledgeState(userID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(state)
	}
	fmt.Printf("user %s  theta %.3f  overall mastery %.3f  velocity %.3f\n",
		state.UserID, state.Ability, state.OverallMastery, state.LearningVelocity)
	for concept, m := range state.ConceptMastery {
		ci := state.ConfidenceIntervals[concept]
		fmt.Printf("  %-20s %.3f  [%.3f, %.3f]\n", concept, m, ci[0], ci[1])
	}
	return nil
}

// #endregion user-mode

// #region concept-mode

func runConceptMode(s *store.SQLite, jsonOut bool) error {
	concepts, err := s.Concepts()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(concepts)
	}
	fmt.Printf("%-20s %6s %6s %6s %6s %6s\n", "concept", "beta", "slip", "guess", "learn", "disc")
	for _, p := range concepts {
		fmt.Printf("%-20s %6.2f %6.2f %6.2f %6.2f %6.2f\n",
			p.ConceptID, p.Beta, p.Slip, p.Guess, p.Learn, p.Discrimination)
	}
	return nil
}

// #endregion concept-mode

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
