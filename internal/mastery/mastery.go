package mastery

// Two-state Bayesian filter over a binary knows/doesn't-know latent variable.
// This is the per-attempt mastery model used by the hybrid tracker. The
// slip/guess parameters absorb the mismatch between knowing a concept and
// answering correctly.

// #region clamps

// Mastery probabilities never reach the degenerate endpoints.
const (
	MinMastery = 0.01
	MaxMastery = 0.99
)

// Clamp bounds a mastery probability to [MinMastery, MaxMastery].
func Clamp(m float64) float64 {
	if m < MinMastery {
		return MinMastery
	}
	if m > MaxMastery {
		return MaxMastery
	}
	return m
}

// #endregion clamps

// #region likelihood

// Likelihood returns the probability of the observed response given the
// current mastery estimate and the concept's slip/guess parameters.
//
//	correct:   P(obs) = m*(1-slip) + (1-m)*guess
//	incorrect: P(obs) = m*slip     + (1-m)*(1-guess)
func Likelihood(correct bool, mastery, slip, guess float64) float64 {
	if correct {
		return mastery*(1-slip) + (1-mastery)*guess
	}
	return mastery*slip + (1-mastery)*(1-guess)
}

// #endregion likelihood

// #region bayes-update

// BayesUpdate computes the posterior P(knows|obs) from the prior and the
// observation likelihood. When the denominator degenerates to zero (only
// possible at a 0/1 prior with a cancelling likelihood) the prior is
// returned unchanged.
func BayesUpdate(prior, likelihood float64) float64 {
	numerator := prior * likelihood
	denominator := prior*likelihood + (1-prior)*(1-likelihood)
	if denominator == 0 {
		return prior
	}
	return Clamp(numerator / denominator)
}

// #endregion bayes-update

// #region learning-boost

// ApplyLearningBoost adds a small mastery gain after a correct answer,
// proportional to the remaining mastery gap and the time invested
// (saturating at 30 seconds). Incorrect answers pass through untouched:
// downward movement happens only through BayesUpdate.
func ApplyLearningBoost(mastery float64, correct bool, learnRate, timeSpent float64) float64 {
	if !correct {
		return mastery
	}
	timeFactor := timeSpent / 30.0
	if timeFactor > 1 {
		timeFactor = 1
	}
	boost := learnRate * (1 - mastery) * timeFactor * 0.1
	return Clamp(mastery + boost)
}

// #endregion learning-boost
