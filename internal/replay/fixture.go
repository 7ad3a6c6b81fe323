package replay

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
	"github.com/danielpatrickdp/knowledge-tracer/internal/tracker"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded attempt stream.
type Fixture struct {
	Description string `json:"description"`

	// Config overrides the default tracker tuning; nil keeps defaults.
	Config *tracker.Config `json:"config,omitempty"`

	// StartState seeds users and concept parameters, in the same format
	// as a persistence snapshot.
	StartState *store.Snapshot `json:"start_state,omitempty"`

	Attempts []Attempt `json:"attempts"`

	// ExpectedResults pairs with Attempts by index; shorter is allowed
	// (trailing attempts are replayed unchecked).
	ExpectedResults []ExpectedResult `json:"expected_results,omitempty"`
}

// Attempt is one recorded observation.
type Attempt struct {
	UserID    string  `json:"user_id"`
	ConceptID string  `json:"concept_id"`
	Correct   bool    `json:"correct"`
	TimeSpent float64 `json:"time_spent"`
}

// ExpectedResult captures the expected outcome of the same-index attempt.
type ExpectedResult struct {
	PosteriorMastery float64 `json:"posterior_mastery"`
	Theta            float64 `json:"theta"`
}

// #endregion fixture-types

// #region io

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fix, nil
}

// WriteFixture renders a fixture as indented JSON to path.
func WriteFixture(path string, fix Fixture) error {
	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion io
