package tracker

import "github.com/danielpatrickdp/knowledge-tracer/internal/irt"

// #region config

// Config holds every tuning constant of the hybrid tracker. The blend and
// confidence weights are empirical defaults, exposed here so they can be
// tuned without code changes.
type Config struct {
	// Prediction blend: fixed weights favoring the interpretable
	// BKT-style signal over the IRT curve. Should sum to 1.
	BKTWeight float64 `koanf:"bkt_weight" json:"bkt_weight"`
	IRTWeight float64 `koanf:"irt_weight" json:"irt_weight"`

	// Confidence combination weights: estimate stability, time invested,
	// distance from the 0/1 boundary. Should sum to 1.
	StabilityWeight float64 `koanf:"stability_weight" json:"stability_weight"`
	TimeWeight      float64 `koanf:"time_weight" json:"time_weight"`
	BoundaryWeight  float64 `koanf:"boundary_weight" json:"boundary_weight"`

	// Confidence never claims certainty or total ignorance.
	MinConfidence float64 `koanf:"min_confidence" json:"min_confidence"`
	MaxConfidence float64 `koanf:"max_confidence" json:"max_confidence"`

	// DefaultPrior is the mastery assumed for a concept with no evidence.
	// Deliberately 0.3 (likely novice), not 0.5.
	DefaultPrior float64 `koanf:"default_prior" json:"default_prior"`

	// Defaults for lazily created concepts.
	DefaultBeta           float64 `koanf:"default_beta" json:"default_beta"`
	DefaultSlip           float64 `koanf:"default_slip" json:"default_slip"`
	DefaultGuess          float64 `koanf:"default_guess" json:"default_guess"`
	DefaultLearn          float64 `koanf:"default_learn" json:"default_learn"`
	DefaultTransit        float64 `koanf:"default_transit" json:"default_transit"`
	DefaultDiscrimination float64 `koanf:"default_discrimination" json:"default_discrimination"`

	// Strategy selects the batch estimator: "bayes_filter" or
	// "beta_bernoulli". The two are not algebraically equivalent.
	Strategy string `koanf:"strategy" json:"strategy"`
}

// DefaultConfig returns the documented default tuning.
func DefaultConfig() Config {
	return Config{
		BKTWeight:             0.6,
		IRTWeight:             0.4,
		StabilityWeight:       0.4,
		TimeWeight:            0.3,
		BoundaryWeight:        0.3,
		MinConfidence:         0.1,
		MaxConfidence:         0.95,
		DefaultPrior:          0.3,
		DefaultBeta:           0.0,
		DefaultSlip:           0.1,
		DefaultGuess:          0.2,
		DefaultLearn:          0.3,
		DefaultTransit:        0.1,
		DefaultDiscrimination: irt.DefaultDiscrimination,
		Strategy:              "bayes_filter",
	}
}

// #endregion config

// #region mastery-update

// MasteryUpdate is the transient result of one update transaction.
type MasteryUpdate struct {
	ConceptID        string  `json:"concept_id"`
	PriorMastery     float64 `json:"prior_mastery"`
	PosteriorMastery float64 `json:"posterior_mastery"`
	Confidence       float64 `json:"confidence"`
	Ability          float64 `json:"ability"`
	StandardError    float64 `json:"standard_error"`
}

// #endregion mastery-update

// #region prediction

// Prediction bundles the blended and component probabilities of a correct
// next response.
type Prediction struct {
	CombinedProbability float64 `json:"combined_probability"`
	BKTProbability      float64 `json:"bkt_probability"`
	IRTProbability      float64 `json:"irt_probability"`
	Mastery             float64 `json:"mastery"`
	Ability             float64 `json:"ability"`
	Difficulty          float64 `json:"difficulty"`
}

// #endregion prediction

// #region knowledge-state

// KnowledgeState summarizes a learner across all tracked concepts.
type KnowledgeState struct {
	UserID              string                `json:"user_id"`
	ConceptMastery      map[string]float64    `json:"concept_mastery"`
	OverallMastery      float64               `json:"overall_mastery"`
	Ability             float64               `json:"ability"`
	ConfidenceIntervals map[string][2]float64 `json:"confidence_intervals"`

	// LearningVelocity is (theta+3)/6 clipped to [0,1]: a crude
	// ability-to-unit rescaling standing in for a real trend estimate.
	LearningVelocity float64 `json:"learning_velocity"`
	ConceptCount     int     `json:"concept_count"`
}

// #endregion knowledge-state

// #region attempt

// Attempt is one observed response in a batch-estimation window.
type Attempt struct {
	ConceptID string  `json:"concept"`
	Correct   bool    `json:"correct"`
	TimeSpent float64 `json:"time_spent,omitempty"`
}

// #endregion attempt

// #region recorder

// AttemptRecord is the provenance entry written after each update.
type AttemptRecord struct {
	UserID        string
	ConceptID     string
	Correct       bool
	TimeSpent     float64
	Prior         float64
	Posterior     float64
	Confidence    float64
	Theta         float64
	StandardError float64
}

// Recorder receives attempt provenance. Failures are logged, never
// surfaced to the caller of UpdateMastery.
type Recorder interface {
	RecordAttempt(rec AttemptRecord) error
}

// #endregion recorder
