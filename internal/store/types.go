package store

// #region user-state

// Interval is a two-sided confidence bound on a mastery estimate.
type Interval struct {
	Lower float64
	Upper float64
}

// UserState is the tracked knowledge state for one learner. Created lazily
// on first attempt, mutated on every attempt, never deleted.
type UserState struct {
	UserID              string
	ConceptMastery      map[string]float64
	Theta               float64
	ConfidenceIntervals map[string]Interval
}

// NewUserState returns an empty state for a learner.
func NewUserState(userID string) UserState {
	return UserState{
		UserID:              userID,
		ConceptMastery:      map[string]float64{},
		ConfidenceIntervals: map[string]Interval{},
	}
}

// Clone returns a deep copy so callers can mutate without aliasing
// repository-held maps.
func (u UserState) Clone() UserState {
	c := UserState{
		UserID:              u.UserID,
		Theta:               u.Theta,
		ConceptMastery:      make(map[string]float64, len(u.ConceptMastery)),
		ConfidenceIntervals: make(map[string]Interval, len(u.ConfidenceIntervals)),
	}
	for k, v := range u.ConceptMastery {
		c.ConceptMastery[k] = v
	}
	for k, v := range u.ConfidenceIntervals {
		c.ConfidenceIntervals[k] = v
	}
	return c
}

// #endregion user-state

// #region concept-params

// ConceptParams holds the observation and difficulty parameters for one
// concept. Configuration rather than learner state: immutable during a
// session, recalibration happens offline.
type ConceptParams struct {
	ConceptID      string
	Beta           float64 // IRT difficulty
	Slip           float64 // P(wrong | knows)
	Guess          float64 // P(right | doesn't know)
	Learn          float64 // learning-rate scalar
	Transit        float64 // BKT transition probability (carried for snapshot compatibility)
	Discrimination float64 // IRT slope
}

// #endregion concept-params

// #region repository

// Repository is the persistence boundary for tracker state. Absence is
// reported via the bool, never as an error; errors are backend failures
// only. The in-memory implementation never errors.
type Repository interface {
	GetUser(userID string) (UserState, bool, error)
	PutUser(state UserState) error
	GetConcept(conceptID string) (ConceptParams, bool, error)
	PutConcept(params ConceptParams) error

	// Users and Concepts enumerate everything held, for snapshot export.
	Users() ([]UserState, error)
	Concepts() ([]ConceptParams, error)
}

// #endregion repository
