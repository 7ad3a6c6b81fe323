package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/danielpatrickdp/knowledge-tracer/internal/eval"
)

// Offline model evaluation over logged prediction/label pairs.
// Input format: {"y_true": [0,1,...], "y_pred": [0.3,0.8,...]}

// #region main

func main() {
	inputPath := flag.String("input", "", "path to test data JSON")
	jsonOut := flag.Bool("json", false, "emit the full report as JSON")
	flag.Parse()

	// Positional form mirrors the flag for notebook-style use.
	path := *inputPath
	if path == "" && flag.NArg() == 1 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: evaluate --input test_data.json [--json]")
		fmt.Fprintln(os.Stderr, `expected format: {"y_true": [...], "y_pred": [...]}`)
		os.Exit(2)
	}

	if err := run(path, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

type testData struct {
	YTrue []int     `json:"y_true"`
	YPred []float64 `json:"y_pred"`
}

func run(path string, jsonOut bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var data testData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if len(data.YTrue) != len(data.YPred) {
		return fmt.Errorf("y_true has %d entries, y_pred has %d", len(data.YTrue), len(data.YPred))
	}

	report := eval.EvaluateModel(data.YTrue, data.YPred)

	if jsonOut {
		rendered, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(rendered))
		return nil
	}

	fmt.Println("Knowledge Tracing Evaluation Results")
	fmt.Printf("AUC:                        %.4f\n", report.AUC)
	fmt.Printf("Brier Score:                %.4f\n", report.BrierScore)
	fmt.Printf("Accuracy:                   %.4f\n", report.Accuracy)
	fmt.Printf("Expected Calibration Error: %.4f\n", report.Calibration.ECE)
	return nil
}

// #endregion run
