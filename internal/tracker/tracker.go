package tracker

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/danielpatrickdp/knowledge-tracer/internal/irt"
	"github.com/danielpatrickdp/knowledge-tracer/internal/mastery"
	"github.com/danielpatrickdp/knowledge-tracer/internal/store"
)

// #region tracker

// Tracker is the hybrid fusion engine: the only component that mutates
// user state. It combines the two-state Bayes filter with the 2PL ability
// step into a single mastery + confidence estimate per attempt.
type Tracker struct {
	repo     store.Repository
	config   Config
	recorder Recorder

	// Per-user locks serialize mutation per learner; updates for
	// different users proceed in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a tracker over the given repository.
func New(repo store.Repository, config Config) *Tracker {
	return &Tracker{
		repo:   repo,
		config: config,
		locks:  map[string]*sync.Mutex{},
	}
}

// SetRecorder attaches a provenance recorder. Recording failures are
// logged and swallowed.
func (t *Tracker) SetRecorder(r Recorder) {
	t.recorder = r
}

// Config returns the active tuning.
func (t *Tracker) Config() Config {
	return t.config
}

func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// #endregion tracker

// #region lazy-defaults

// getOrCreateUser fetches a learner, constructing an empty state on first
// reference. Absence is never an error.
func (t *Tracker) getOrCreateUser(userID string) (store.UserState, error) {
	u, ok, err := t.repo.GetUser(userID)
	if err != nil {
		return store.UserState{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		u = store.NewUserState(userID)
	}
	return u, nil
}

func (t *Tracker) defaultConcept(conceptID string) store.ConceptParams {
	return store.ConceptParams{
		ConceptID:      conceptID,
		Beta:           t.config.DefaultBeta,
		Slip:           t.config.DefaultSlip,
		Guess:          t.config.DefaultGuess,
		Learn:          t.config.DefaultLearn,
		Transit:        t.config.DefaultTransit,
		Discrimination: t.config.DefaultDiscrimination,
	}
}

// getOrCreateConcept fetches concept parameters, persisting defaults on
// first reference so later recalibration sees the concept.
func (t *Tracker) getOrCreateConcept(conceptID string) (store.ConceptParams, error) {
	p, ok, err := t.repo.GetConcept(conceptID)
	if err != nil {
		return store.ConceptParams{}, fmt.Errorf("load concept: %w", err)
	}
	if !ok {
		p = t.defaultConcept(conceptID)
		if err := t.repo.PutConcept(p); err != nil {
			return store.ConceptParams{}, fmt.Errorf("init concept: %w", err)
		}
	}
	return p, nil
}

// InitializeConcept registers explicit parameters for a concept, typically
// during catalog setup. Slip, guess, learn, transit, and discrimination
// not supplied here keep their defaults.
func (t *Tracker) InitializeConcept(conceptID string, difficulty, slip, guess float64) error {
	p := t.defaultConcept(conceptID)
	p.Beta = difficulty
	p.Slip = slip
	p.Guess = guess
	if err := t.repo.PutConcept(p); err != nil {
		return fmt.Errorf("initialize concept %s: %w", conceptID, err)
	}
	return nil
}

// #endregion lazy-defaults

// #region update-mastery

// UpdateMastery runs one full update transaction for an observed attempt.
// It never fails on unknown users or concepts; the returned error only
// surfaces storage-backend problems.
func (t *Tracker) UpdateMastery(userID, conceptID string, correct bool, timeSpent float64) (MasteryUpdate, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	user, err := t.getOrCreateUser(userID)
	if err != nil {
		return MasteryUpdate{}, err
	}
	params, err := t.getOrCreateConcept(conceptID)
	if err != nil {
		return MasteryUpdate{}, err
	}

	prior, ok := user.ConceptMastery[conceptID]
	if !ok {
		prior = t.config.DefaultPrior
	}

	likelihood := mastery.Likelihood(correct, prior, params.Slip, params.Guess)
	posterior := mastery.BayesUpdate(prior, likelihood)

	ability := irt.Step(user.Theta, params.Beta, correct, params.Discrimination)

	// Confidence is judged on the pre-boost posterior: the boost is a
	// pedagogical adjustment, not evidence.
	confidence := t.confidence(prior, posterior, timeSpent)

	posterior = mastery.ApplyLearningBoost(posterior, correct, params.Learn, timeSpent)

	user.ConceptMastery[conceptID] = posterior
	user.Theta = ability.Theta
	user.ConfidenceIntervals[conceptID] = confidenceInterval(posterior, ability.SE)

	if err := t.repo.PutUser(user); err != nil {
		return MasteryUpdate{}, fmt.Errorf("persist user: %w", err)
	}

	result := MasteryUpdate{
		ConceptID:        conceptID,
		PriorMastery:     prior,
		PosteriorMastery: posterior,
		Confidence:       confidence,
		Ability:          ability.Theta,
		StandardError:    ability.SE,
	}

	if t.recorder != nil {
		rec := AttemptRecord{
			UserID:        userID,
			ConceptID:     conceptID,
			Correct:       correct,
			TimeSpent:     timeSpent,
			Prior:         prior,
			Posterior:     posterior,
			Confidence:    confidence,
			Theta:         ability.Theta,
			StandardError: ability.SE,
		}
		if err := t.recorder.RecordAttempt(rec); err != nil {
			log.Printf("attempt record failed for %s/%s: %v", userID, conceptID, err)
		}
	}

	return result, nil
}

// confidence blends estimate stability, time invested, and distance from
// the probability boundary, clamped away from both certainty and total
// ignorance.
func (t *Tracker) confidence(prior, posterior, timeSpent float64) float64 {
	stability := 1 - math.Abs(posterior-prior)

	timeSignal := timeSpent / 60.0
	if timeSignal > 1 {
		timeSignal = 1
	}

	boundary := 2 * math.Min(posterior, 1-posterior)

	c := t.config.StabilityWeight*stability +
		t.config.TimeWeight*timeSignal +
		t.config.BoundaryWeight*boundary

	if c < t.config.MinConfidence {
		c = t.config.MinConfidence
	}
	if c > t.config.MaxConfidence {
		c = t.config.MaxConfidence
	}
	return c
}

// confidenceInterval derives a 95% interval around the stored mastery,
// clamped to the valid mastery range.
func confidenceInterval(m, se float64) store.Interval {
	margin := 1.96 * se
	lower := m - margin
	upper := m + margin
	if lower < mastery.MinMastery {
		lower = mastery.MinMastery
	}
	if upper > mastery.MaxMastery {
		upper = mastery.MaxMastery
	}
	return store.Interval{Lower: lower, Upper: upper}
}

// #endregion update-mastery

// #region predict

// PredictPerformance returns the blended probability of a correct next
// response. Read-only: unknown users and concepts resolve to defaults
// without being created.
func (t *Tracker) PredictPerformance(userID, conceptID string) (Prediction, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	user, err := t.getOrCreateUser(userID)
	if err != nil {
		return Prediction{}, err
	}
	params, ok, err := t.repo.GetConcept(conceptID)
	if err != nil {
		return Prediction{}, fmt.Errorf("load concept: %w", err)
	}
	if !ok {
		params = t.defaultConcept(conceptID)
	}

	m, ok := user.ConceptMastery[conceptID]
	if !ok {
		m = t.config.DefaultPrior
	}

	bktProb := m*(1-params.Slip) + (1-m)*params.Guess
	irtProb := irt.Probability(user.Theta, params.Beta, params.Discrimination)

	return Prediction{
		CombinedProbability: t.config.BKTWeight*bktProb + t.config.IRTWeight*irtProb,
		BKTProbability:      bktProb,
		IRTProbability:      irtProb,
		Mastery:             m,
		Ability:             user.Theta,
		Difficulty:          params.Beta,
	}, nil
}

// #endregion predict

// #region knowledge-state

// KnowledgeState aggregates everything tracked for a learner.
func (t *Tracker) KnowledgeState(userID string) (KnowledgeState, error) {
	l := t.userLock(userID)
	l.Lock()
	defer l.Unlock()

	user, err := t.getOrCreateUser(userID)
	if err != nil {
		return KnowledgeState{}, err
	}

	overall := t.config.DefaultPrior
	if len(user.ConceptMastery) > 0 {
		sum := 0.0
		for _, m := range user.ConceptMastery {
			sum += m
		}
		overall = sum / float64(len(user.ConceptMastery))
	}

	velocity := (user.Theta + 3) / 6
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 1 {
		velocity = 1
	}

	state := KnowledgeState{
		UserID:              userID,
		ConceptMastery:      map[string]float64{},
		OverallMastery:      overall,
		Ability:             user.Theta,
		ConfidenceIntervals: map[string][2]float64{},
		LearningVelocity:    velocity,
		ConceptCount:        len(user.ConceptMastery),
	}
	for k, v := range user.ConceptMastery {
		state.ConceptMastery[k] = v
	}
	for k, ci := range user.ConfidenceIntervals {
		state.ConfidenceIntervals[k] = [2]float64{ci.Lower, ci.Upper}
	}
	return state, nil
}

// #endregion knowledge-state

// #region batch-estimate

// strategy resolves the configured batch estimator.
func (t *Tracker) strategy() mastery.Strategy {
	switch t.config.Strategy {
	case "beta_bernoulli":
		return mastery.DefaultBetaBernoulli()
	default:
		return mastery.FilterStrategy{DefaultPrior: t.config.DefaultPrior}
	}
}

// EstimateMastery estimates per-concept mastery from a window of recent
// attempts using the configured strategy, without touching stored state.
// priors may be nil.
func (t *Tracker) EstimateMastery(userID string, attempts []Attempt, priors map[string]float64) (map[string]float64, error) {
	obs := make([]mastery.Attempt, len(attempts))
	for i, a := range attempts {
		obs[i] = mastery.Attempt{ConceptID: a.ConceptID, Correct: a.Correct}
	}

	params := func(conceptID string) mastery.Params {
		p, ok, err := t.repo.GetConcept(conceptID)
		if err != nil || !ok {
			return mastery.Params{Slip: t.config.DefaultSlip, Guess: t.config.DefaultGuess}
		}
		return mastery.Params{Slip: p.Slip, Guess: p.Guess}
	}

	return t.strategy().Estimate(obs, priors, params), nil
}

// #endregion batch-estimate
