package eval

import "math"

// Learning-impact metrics over pre/post test scores and mastery
// trajectories. Used by offline analysis, not by the online tracker.

// #region gain

// ComputeGain reports absolute gain, Hake's normalized gain, and Cohen's d
// over paired pre/post scores in [0,1]. Pairs beyond the shorter slice are
// ignored.
func ComputeGain(preScores, postScores []float64) GainReport {
	n := len(preScores)
	if len(postScores) < n {
		n = len(postScores)
	}
	if n == 0 {
		return GainReport{}
	}

	absGain := 0.0
	for i := 0; i < n; i++ {
		absGain += postScores[i] - preScores[i]
	}
	absGain /= float64(n)

	// Hake's gain g = (post - pre) / (1 - pre), skipping saturated pres.
	normSum, normCount := 0.0, 0
	for i := 0; i < n; i++ {
		if preScores[i] < 1.0 {
			normSum += (postScores[i] - preScores[i]) / (1.0 - preScores[i])
			normCount++
		}
	}
	normGain := 0.0
	if normCount > 0 {
		normGain = normSum / float64(normCount)
	}

	effectSize := 0.0
	if n > 1 {
		pooled := math.Sqrt((variance(preScores[:n]) + variance(postScores[:n])) / 2)
		if pooled > 0 {
			effectSize = absGain / pooled
		}
	}

	return GainReport{
		AbsoluteGain:   absGain,
		NormalizedGain: normGain,
		EffectSize:     effectSize,
		NStudents:      n,
	}
}

// variance is the population variance.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}

// #endregion gain

// #region time-to-mastery

// AttemptsToMastery returns the 1-indexed attempt at which the mastery
// trajectory first reaches threshold, or 0 if it never does.
func AttemptsToMastery(trajectory []float64, threshold float64) int {
	for i, m := range trajectory {
		if m >= threshold {
			return i + 1
		}
	}
	return 0
}

// #endregion time-to-mastery

// #region retention

// RetentionRate is the fraction of learners whose last activity falls
// within the retention window.
func RetentionRate(lastActiveDaysAgo []int, windowDays int) float64 {
	if len(lastActiveDaysAgo) == 0 {
		return 0
	}
	retained := 0
	for _, days := range lastActiveDaysAgo {
		if days <= windowDays {
			retained++
		}
	}
	return float64(retained) / float64(len(lastActiveDaysAgo))
}

// #endregion retention
