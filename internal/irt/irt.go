package irt

import "math"

// Online 2PL (two-parameter logistic) ability estimation. Each observation
// applies a single Newton-Raphson step rather than re-fitting the full
// history, so theta drifts smoothly attempt by attempt.

// #region constants

// Theta is clamped to a conventional working range.
const (
	MinTheta = -3.0
	MaxTheta = 3.0
)

// DefaultDiscrimination is the common IRT scaling factor.
const DefaultDiscrimination = 1.7

// minInformation floors Fisher information to avoid division blow-up at
// extreme probabilities.
const minInformation = 1e-6

// #endregion constants

// #region probability

// Probability returns the 2PL probability of a correct response,
// P(correct) = 1 / (1 + exp(-a*(theta - beta))).
func Probability(theta, beta, discrimination float64) float64 {
	z := discrimination * (theta - beta)
	return 1 / (1 + math.Exp(-z))
}

// #endregion probability

// #region update

// Update is the result of one ability step.
type Update struct {
	Theta       float64 // updated ability, clamped to [MinTheta, MaxTheta]
	SE          float64 // standard error, 1/sqrt(information)
	Probability float64 // P(correct) under the pre-update theta
}

// Step applies one Newton-Raphson update of theta against an item with
// difficulty beta.
func Step(theta, beta float64, correct bool, discrimination float64) Update {
	p := Probability(theta, beta, discrimination)

	information := discrimination * discrimination * p * (1 - p)
	if information < minInformation {
		information = minInformation
	}

	observed := 0.0
	if correct {
		observed = 1.0
	}
	residual := observed - p

	next := theta + residual/information
	if next < MinTheta {
		next = MinTheta
	}
	if next > MaxTheta {
		next = MaxTheta
	}

	return Update{
		Theta:       next,
		SE:          1 / math.Sqrt(information),
		Probability: p,
	}
}

// #endregion update
