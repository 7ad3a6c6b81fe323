package eval

// #region calibration-report

// CalibrationReport carries reliability-diagram data plus the scalar ECE.
// Only non-empty bins appear; the three slices are index-aligned.
type CalibrationReport struct {
	BinMeans      []float64 `json:"bin_means"`
	BinAccuracies []float64 `json:"bin_accuracies"`
	BinCounts     []int     `json:"bin_counts"`
	ECE           float64   `json:"ece"`
}

// #endregion calibration-report

// #region report

// Report bundles all knowledge-tracing metrics for one prediction set.
type Report struct {
	AUC         float64           `json:"auc"`
	BrierScore  float64           `json:"brier_score"`
	Accuracy    float64           `json:"accuracy"`
	Calibration CalibrationReport `json:"calibration"`
}

// #endregion report

// #region comparison

// Comparison reports two models side by side with the per-metric
// improvement of B over A (Brier is sign-flipped: lower is better).
type Comparison struct {
	ModelA      Report             `json:"model_a"`
	ModelB      Report             `json:"model_b"`
	Improvement map[string]float64 `json:"improvement"`
}

// #endregion comparison

// #region gain-report

// GainReport summarizes pre/post learning gains over a cohort.
type GainReport struct {
	AbsoluteGain   float64 `json:"absolute_gain"`
	NormalizedGain float64 `json:"normalized_gain"` // Hake's gain
	EffectSize     float64 `json:"effect_size"`     // Cohen's d
	NStudents      int     `json:"n_students"`
}

// #endregion gain-report
