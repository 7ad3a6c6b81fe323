package store

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Snapshot is the serializable save/restore format consumed by the
// persistence collaborator. Field names and nesting are load-bearing:
// existing snapshot files depend on them exactly.

// #region snapshot-types

// Snapshot is the top-level state export.
type Snapshot struct {
	UserStates    map[string]SnapshotUser    `json:"user_states"`
	ConceptParams map[string]SnapshotConcept `json:"concept_params"`
}

// SnapshotUser is one learner's exported state.
type SnapshotUser struct {
	UserID              string                `json:"user_id"`
	ConceptMastery      map[string]float64    `json:"concept_mastery"`
	Theta               float64               `json:"theta"`
	ConfidenceIntervals map[string][2]float64 `json:"confidence_intervals"`
}

// SnapshotConcept is one concept's exported parameters.
type SnapshotConcept struct {
	ConceptID      string  `json:"concept_id"`
	Beta           float64 `json:"beta"`
	Slip           float64 `json:"slip"`
	Guess          float64 `json:"guess"`
	Learn          float64 `json:"learn"`
	Transit        float64 `json:"transit"`
	Discrimination float64 `json:"discrimination"`
}

// #endregion snapshot-types

// #region export

// Export reads everything from the repository into a Snapshot.
func Export(repo Repository) (Snapshot, error) {
	snap := Snapshot{
		UserStates:    map[string]SnapshotUser{},
		ConceptParams: map[string]SnapshotConcept{},
	}

	users, err := repo.Users()
	if err != nil {
		return Snapshot{}, fmt.Errorf("export users: %w", err)
	}
	for _, u := range users {
		su := SnapshotUser{
			UserID:              u.UserID,
			ConceptMastery:      map[string]float64{},
			Theta:               u.Theta,
			ConfidenceIntervals: map[string][2]float64{},
		}
		for k, v := range u.ConceptMastery {
			su.ConceptMastery[k] = v
		}
		for k, ci := range u.ConfidenceIntervals {
			su.ConfidenceIntervals[k] = [2]float64{ci.Lower, ci.Upper}
		}
		snap.UserStates[u.UserID] = su
	}

	concepts, err := repo.Concepts()
	if err != nil {
		return Snapshot{}, fmt.Errorf("export concepts: %w", err)
	}
	for _, p := range concepts {
		snap.ConceptParams[p.ConceptID] = SnapshotConcept{
			ConceptID:      p.ConceptID,
			Beta:           p.Beta,
			Slip:           p.Slip,
			Guess:          p.Guess,
			Learn:          p.Learn,
			Transit:        p.Transit,
			Discrimination: p.Discrimination,
		}
	}

	return snap, nil
}

// #endregion export

// #region import

// Import loads a Snapshot into the repository, overwriting matching
// users and concepts.
func Import(repo Repository, snap Snapshot) error {
	for userID, su := range snap.UserStates {
		u := NewUserState(su.UserID)
		if u.UserID == "" {
			u.UserID = userID
		}
		u.Theta = su.Theta
		for k, v := range su.ConceptMastery {
			u.ConceptMastery[k] = v
		}
		for k, ci := range su.ConfidenceIntervals {
			u.ConfidenceIntervals[k] = Interval{Lower: ci[0], Upper: ci[1]}
		}
		if err := repo.PutUser(u); err != nil {
			return fmt.Errorf("import user %s: %w", u.UserID, err)
		}
	}

	for conceptID, sc := range snap.ConceptParams {
		p := ConceptParams{
			ConceptID:      sc.ConceptID,
			Beta:           sc.Beta,
			Slip:           sc.Slip,
			Guess:          sc.Guess,
			Learn:          sc.Learn,
			Transit:        sc.Transit,
			Discrimination: sc.Discrimination,
		}
		if p.ConceptID == "" {
			p.ConceptID = conceptID
		}
		if err := repo.PutConcept(p); err != nil {
			return fmt.Errorf("import concept %s: %w", p.ConceptID, err)
		}
	}

	return nil
}

// #endregion import

// #region encoding

// EncodeSnapshot renders a snapshot as indented JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses snapshot JSON.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.UserStates == nil {
		snap.UserStates = map[string]SnapshotUser{}
	}
	if snap.ConceptParams == nil {
		snap.ConceptParams = map[string]SnapshotConcept{}
	}
	return snap, nil
}

// #endregion encoding
