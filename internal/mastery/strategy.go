package mastery

// #region types

// Attempt is one observed response used for batch estimation.
type Attempt struct {
	ConceptID string
	Correct   bool
}

// Params carries the per-concept observation parameters a strategy needs.
type Params struct {
	Slip  float64
	Guess float64
}

// Strategy estimates per-concept mastery from a window of attempts.
// The two implementations are not algebraically equivalent and are kept
// as separately selectable estimators.
type Strategy interface {
	Name() string

	// Estimate returns a mastery value per concept seen in attempts.
	// priors supplies optional starting estimates; concepts present in
	// priors but absent from attempts are carried through unchanged.
	// params resolves slip/guess for a concept (never fails, defaults
	// are the caller's concern).
	Estimate(attempts []Attempt, priors map[string]float64, params func(conceptID string) Params) map[string]float64
}

// #endregion types

// #region filter-strategy

// FilterStrategy folds each concept's attempts through the two-state
// Bayes filter, starting from the supplied prior (or DefaultPrior).
type FilterStrategy struct {
	DefaultPrior float64
}

// Name implements Strategy.
func (s FilterStrategy) Name() string { return "bayes_filter" }

// Estimate implements Strategy.
func (s FilterStrategy) Estimate(attempts []Attempt, priors map[string]float64, params func(string) Params) map[string]float64 {
	out := make(map[string]float64, len(priors))
	for _, att := range attempts {
		m, ok := out[att.ConceptID]
		if !ok {
			m, ok = priors[att.ConceptID]
			if !ok {
				m = s.DefaultPrior
			}
		}
		p := params(att.ConceptID)
		m = BayesUpdate(m, Likelihood(att.Correct, m, p.Slip, p.Guess))
		out[att.ConceptID] = m
	}
	for concept, prior := range priors {
		if _, ok := out[concept]; !ok {
			out[concept] = prior
		}
	}
	return out
}

// #endregion filter-strategy

// #region beta-bernoulli-strategy

// BetaBernoulliStrategy is the simpler fallback estimator: a literal
// Beta(α,β)-Bernoulli posterior mean over the attempt counts,
//
//	(successes + α) / (trials + α + β)
//
// optionally blended toward a supplied prior with weight n/(n+K) on the
// observed posterior, so sparse evidence defers to the prior.
type BetaBernoulliStrategy struct {
	Alpha  float64 // pseudo-successes, default 1 (Laplace)
	Beta   float64 // pseudo-failures, default 1
	BlendK float64 // prior blending constant, default 2
}

// DefaultBetaBernoulli returns the uninformative-prior configuration.
func DefaultBetaBernoulli() BetaBernoulliStrategy {
	return BetaBernoulliStrategy{Alpha: 1, Beta: 1, BlendK: 2}
}

// Name implements Strategy.
func (s BetaBernoulliStrategy) Name() string { return "beta_bernoulli" }

// Estimate implements Strategy. params is unused: this estimator works on
// raw counts and has no slip/guess notion.
func (s BetaBernoulliStrategy) Estimate(attempts []Attempt, priors map[string]float64, params func(string) Params) map[string]float64 {
	type counts struct {
		successes int
		trials    int
	}
	stats := make(map[string]*counts)
	for _, att := range attempts {
		c, ok := stats[att.ConceptID]
		if !ok {
			c = &counts{}
			stats[att.ConceptID] = c
		}
		if att.Correct {
			c.successes++
		}
		c.trials++
	}

	out := make(map[string]float64, len(stats))
	for concept, c := range stats {
		n := float64(c.trials)
		postMean := (float64(c.successes) + s.Alpha) / (n + s.Alpha + s.Beta)
		if prior, ok := priors[concept]; ok {
			weight := n / (n + s.BlendK)
			out[concept] = weight*postMean + (1-weight)*prior
		} else {
			out[concept] = postMean
		}
	}
	for concept, prior := range priors {
		if _, ok := out[concept]; !ok {
			out[concept] = prior
		}
	}
	return out
}

// #endregion beta-bernoulli-strategy
