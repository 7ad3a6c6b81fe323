package eval

import (
	"math"
	"sort"
)

// Offline metrics over held-out (label, prediction) pairs. All functions
// are pure and deterministic; mismatched slice lengths are truncated to
// the shorter side rather than rejected.

// #region auc

// AUC computes the ROC area under the curve via the rank statistic, with
// average-rank tie handling. Returns 0.5 when yTrue holds fewer than two
// distinct classes: the metric is undefined there and callers needing to
// detect that case must check class balance themselves.
func AUC(yTrue []int, yPred []float64) float64 {
	n := minLen(yTrue, yPred)

	positives := 0
	for _, y := range yTrue[:n] {
		if y == 1 {
			positives++
		}
	}
	negatives := n - positives
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return yPred[idx[a]] < yPred[idx[b]] })

	// Average ranks over tie groups, accumulate rank sum of positives.
	rankSum := 0.0
	i := 0
	for i < n {
		j := i
		for j < n && yPred[idx[j]] == yPred[idx[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if yTrue[idx[k]] == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	p := float64(positives)
	return (rankSum - p*(p+1)/2) / (p * float64(negatives))
}

// #endregion auc

// #region brier

// BrierScore is the mean squared error between predicted probabilities
// and binary labels. Lower is better.
func BrierScore(yTrue []int, yPred []float64) float64 {
	n := minLen(yTrue, yPred)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := yPred[i] - float64(yTrue[i])
		sum += d * d
	}
	return sum / float64(n)
}

// #endregion brier

// #region accuracy

// Accuracy thresholds predictions and compares against labels.
// Predictions at or above the threshold count as positive.
func Accuracy(yTrue []int, yPred []float64, threshold float64) float64 {
	n := minLen(yTrue, yPred)
	if n == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < n; i++ {
		predicted := 0
		if yPred[i] >= threshold {
			predicted = 1
		}
		if predicted == yTrue[i] {
			hits++
		}
	}
	return float64(hits) / float64(n)
}

// #endregion accuracy

// #region calibration

// Calibration buckets predictions into nBins equal-width bins over [0,1]
// and reports per-bin mean prediction, empirical accuracy, and count,
// plus the occupancy-weighted Expected Calibration Error. A prediction of
// exactly 1.0 lands in the last bin.
func Calibration(yTrue []int, yPred []float64, nBins int) CalibrationReport {
	n := minLen(yTrue, yPred)
	report := CalibrationReport{}
	if n == 0 || nBins <= 0 {
		return report
	}

	width := 1.0 / float64(nBins)
	sums := make([]float64, nBins)
	hits := make([]float64, nBins)
	counts := make([]int, nBins)

	for i := 0; i < n; i++ {
		b := int(yPred[i] / width)
		if b >= nBins {
			b = nBins - 1
		}
		if b < 0 {
			b = 0
		}
		sums[b] += yPred[i]
		hits[b] += float64(yTrue[i])
		counts[b]++
	}

	for b := 0; b < nBins; b++ {
		if counts[b] == 0 {
			continue
		}
		mean := sums[b] / float64(counts[b])
		acc := hits[b] / float64(counts[b])
		report.BinMeans = append(report.BinMeans, mean)
		report.BinAccuracies = append(report.BinAccuracies, acc)
		report.BinCounts = append(report.BinCounts, counts[b])
		report.ECE += float64(counts[b]) / float64(n) * math.Abs(acc-mean)
	}
	return report
}

// #endregion calibration

// #region evaluate

// DefaultThreshold is the conventional accuracy decision boundary.
const DefaultThreshold = 0.5

// DefaultBins is the conventional calibration bin count.
const DefaultBins = 10

// EvaluateModel computes every metric over one prediction set.
func EvaluateModel(yTrue []int, yPred []float64) Report {
	return Report{
		AUC:         AUC(yTrue, yPred),
		BrierScore:  BrierScore(yTrue, yPred),
		Accuracy:    Accuracy(yTrue, yPred, DefaultThreshold),
		Calibration: Calibration(yTrue, yPred, DefaultBins),
	}
}

// #endregion evaluate

func minLen(yTrue []int, yPred []float64) int {
	if len(yTrue) < len(yPred) {
		return len(yTrue)
	}
	return len(yPred)
}
