// Package testutil provides shared test infrastructure for the ASU simulator:
// the golden dataset of hand-computed runs and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one deterministic run: stroke patients arrive every
// StrokeGap days and stay TreatmentDays; the other classes never arrive
// before the horizon.
type GoldenTestCase struct {
	Name          string        `json:"name"`
	Beds          int           `json:"beds"`
	StrokeGap     float64       `json:"stroke_gap"`
	TreatmentDays float64       `json:"treatment_days"`
	Period        float64       `json:"period"`
	WarmUp        float64       `json:"warm_up"`
	ExcludeWarmUp bool          `json:"exclude_warm_up"`
	QueueTimes    []float64     `json:"queue_times"`
	Metrics       GoldenMetrics `json:"metrics"`
}

// GoldenMetrics are the expected summary values. A nil pointer means the
// metric must be undefined.
type GoldenMetrics struct {
	// Exact match metrics (integers)
	TotalArrivals int `json:"total_arrivals"`
	Discharged    int `json:"discharged"`

	TrimmedMeanQueueHrs *float64 `json:"trimmed_mean_queue_hrs"`
	WithinTargetPct     *float64 `json:"admitted_within_4hrs_pct"`
	UtilizationPct      *float64 `json:"bed_utilisation_pct"`
	MeanTimeInUnitDays  *float64 `json:"mean_time_in_unit_days"`
	MeanSojournDays     *float64 `json:"mean_sojourn_days"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertOptionalFloat64 checks a value that may be undefined. want == nil
// requires defined to be false.
func AssertOptionalFloat64(t *testing.T, name string, want *float64, got float64, defined bool, relTol float64) {
	t.Helper()
	if want == nil {
		if defined {
			t.Errorf("%s: got %v, want undefined", name, got)
		}
		return
	}
	if !defined {
		t.Errorf("%s: got undefined, want %v", name, *want)
		return
	}
	AssertFloat64Equal(t, name, *want, got, relTol)
}
