package eval

import (
	"math/rand"
	"sort"
)

// #region compare

// CompareModels evaluates both prediction sets and reports per-metric
// improvement of model B over model A. The Brier delta is flipped so a
// positive improvement always means B is better.
func CompareModels(aTrue []int, aPred []float64, bTrue []int, bPred []float64) Comparison {
	metricsA := EvaluateModel(aTrue, aPred)
	metricsB := EvaluateModel(bTrue, bPred)
	return Comparison{
		ModelA: metricsA,
		ModelB: metricsB,
		Improvement: map[string]float64{
			"auc":         metricsB.AUC - metricsA.AUC,
			"brier_score": metricsA.BrierScore - metricsB.BrierScore,
			"accuracy":    metricsB.Accuracy - metricsA.Accuracy,
		},
	}
}

// #endregion compare

// #region bootstrap

// BootstrapCI computes a percentile bootstrap confidence interval for the
// mean of data. The RNG is injected so runs are reproducible.
func BootstrapCI(data []float64, nBootstrap int, confidence float64, rng *rand.Rand) (lower, upper float64) {
	if len(data) == 0 || nBootstrap <= 0 {
		return 0, 0
	}

	means := make([]float64, nBootstrap)
	for b := 0; b < nBootstrap; b++ {
		sum := 0.0
		for range data {
			sum += data[rng.Intn(len(data))]
		}
		means[b] = sum / float64(len(data))
	}
	sort.Float64s(means)

	lower = percentile(means, (1-confidence)/2*100)
	upper = percentile(means, (1+confidence)/2*100)
	return lower, upper
}

// percentile interpolates the p-th percentile of sorted data.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// #endregion bootstrap
