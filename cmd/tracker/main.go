package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/knowledge-tracer/internal/config"
	"github.com/danielpatrickdp/knowledge-tracer/internal/logging"
	"github.com/danielpatrickdp/knowledge-tracer/internal/replay"
	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// Batch ingest: streams attempt records (JSONL) through the tracker and
// reports the resulting knowledge state. The sqlite backend also records
// attempt provenance for later replay and fixture export.

// #region main

func main() {
	attemptsPath := flag.String("attempts", "", "path to attempts JSONL (one attempt object per line)")
	configPath := flag.String("config", "", "path to config YAML (default: search, env overrides apply)")
	snapshotIn := flag.String("snapshot-in", "", "seed state from a snapshot JSON before ingesting")
	snapshotOut := flag.String("snapshot-out", "", "write final state snapshot JSON")
	quiet := flag.Bool("quiet", false, "suppress per-attempt output")
	flag.Parse()

	if *attemptsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: tracker --attempts path/to/attempts.jsonl [--config cfg.yaml] [--snapshot-in snap.json] [--snapshot-out snap.json] [--quiet]")
		os.Exit(2)
	}

	if err := run(*attemptsPath, *configPath, *snapshotIn, *snapshotOut, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(attemptsPath, configPath, snapshotIn, snapshotOut string, quiet bool) error {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	repo, cleanup, recorder, err := openBackend(cfg.Store)
	if err != nil {
		return err
	}
	defer cleanup()

	if snapshotIn != "" {
		data, err := os.ReadFile(snapshotIn)
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := store.DecodeSnapshot(data)
		if err != nil {
			return err
		}
		if err := store.Import(repo, snap); err != nil {
			return err
		}
	}

	tr := tracker.New(repo, cfg.Tracker)
	if recorder != nil {
		tr.SetRecorder(recorder)
	}

	users, count, err := ingest(tr, attemptsPath, quiet)
	if err != nil {
		return err
	}
	log.Printf("ingested %d attempts for %d users", count, len(users))

	for _, userID := range users {
		state, err := tr.KnowledgeState(userID)
		if err != nil {
			return err
		}
		rendered, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("render state: %w", err)
		}
		fmt.Println(string(rendered))
	}

	if snapshotOut != "" {
		snap, err := store.Export(repo)
		if err != nil {
			return err
		}
		data, err := store.EncodeSnapshot(snap)
		if err != nil {
			return err
		}
		if err := os.WriteFile(snapshotOut, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Printf("wrote snapshot to %s", snapshotOut)
	}

	return nil
}

// openBackend wires the configured repository, a cleanup func, and the
// attempt recorder (sqlite only).
func openBackend(cfg config.StoreConfig) (store.Repository, func(), tracker.Recorder, error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := store.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, func() { s.Close() }, logging.NewAttemptLog(s.DB()), nil
	default:
		return store.NewMemory(), func() {}, nil, nil
	}
}

// #endregion run

// #region ingest

// ingest streams the JSONL file through the tracker. Returns user ids in
// first-seen order and the attempt count.
func ingest(tr *tracker.Tracker, path string, quiet bool) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open attempts: %w", err)
	}
	defer f.Close()

	var users []string
	seen := map[string]bool{}
	count := 0

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var att replay.Attempt
		if err := json.Unmarshal(raw, &att); err != nil {
			return nil, 0, fmt.Errorf("parse attempt at line %d: %w", line, err)
		}

		update, err := tr.UpdateMastery(att.UserID, att.ConceptID, att.Correct, att.TimeSpent)
		if err != nil {
			return nil, 0, fmt.Errorf("update at line %d: %w", line, err)
		}
		count++

		if !seen[att.UserID] {
			seen[att.UserID] = true
			users = append(users, att.UserID)
		}

		if !quiet {
			fmt.Printf("%s/%s correct=%t mastery %.3f -> %.3f confidence %.3f theta %.3f\n",
				att.UserID, att.ConceptID, att.Correct,
				update.PriorMastery, update.PosteriorMastery, update.Confidence, update.Ability)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read attempts: %w", err)
	}

	return users, count, nil
}

// #endregion ingest
