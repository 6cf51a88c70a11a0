package replication

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/trace"
)

// ConfidenceLevel of the interval reported by Aggregate.
const ConfidenceLevel = 0.95

// Row is the result of one replication.
type Row struct {
	Rep         int               `json:"rep" yaml:"rep"`
	Key         sim.SimulationKey `json:"random_number_set" yaml:"random_number_set"`
	asu.Summary `yaml:",inline"`

	// Trace is set only when the runner was built WithTrace.
	Trace *trace.SimulationTrace `json:"-" yaml:"-"`
}

// ResultsTable holds one row per replication, ordered by Rep starting at 1.
type ResultsTable struct {
	Rows []Row `json:"rows" yaml:"rows"`
}

// Columns returns the metric names of every row, in report order.
func (t *ResultsTable) Columns() []string {
	return asu.MetricNames()
}

// Column returns one metric across all rows, in row order.
func (t *ResultsTable) Column(name string) []asu.Metric {
	out := make([]asu.Metric, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values()[name]
	}
	return out
}

// MetricSummary aggregates one column across replications. N counts the
// defined cells the statistics were computed from.
type MetricSummary struct {
	Name   string     `json:"name" yaml:"name"`
	N      int        `json:"n" yaml:"n"`
	Mean   asu.Metric `json:"mean" yaml:"mean"`
	StdDev asu.Metric `json:"std_dev" yaml:"std_dev"`
	CILow  asu.Metric `json:"ci_low" yaml:"ci_low"`
	CIHigh asu.Metric `json:"ci_high" yaml:"ci_high"`
}

// Aggregate returns the mean, sample standard deviation and Student-t
// confidence interval of every column, skipping undefined cells. With a
// single defined cell only the mean is defined.
func (t *ResultsTable) Aggregate() []MetricSummary {
	cols := t.Columns()
	out := make([]MetricSummary, 0, len(cols))
	for _, name := range cols {
		out = append(out, summarizeColumn(name, t.Column(name)))
	}
	return out
}

// Lookup returns the aggregate of one column.
func (t *ResultsTable) Lookup(name string) (MetricSummary, bool) {
	for _, c := range t.Columns() {
		if c == name {
			return summarizeColumn(name, t.Column(name)), true
		}
	}
	return MetricSummary{}, false
}

func summarizeColumn(name string, cells []asu.Metric) MetricSummary {
	xs := make([]float64, 0, len(cells))
	for _, c := range cells {
		if c.Defined {
			xs = append(xs, c.Value)
		}
	}
	ms := MetricSummary{Name: name, N: len(xs)}
	switch len(xs) {
	case 0:
		return ms
	case 1:
		ms.Mean = asu.Value(xs[0])
		return ms
	}
	mean, std := stat.MeanStdDev(xs, nil)
	ms.Mean = asu.Value(mean)
	ms.StdDev = asu.Value(std)

	tq := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(xs) - 1)}.Quantile(1 - (1-ConfidenceLevel)/2)
	half := tq * std / math.Sqrt(float64(len(xs)))
	ms.CILow = asu.Value(mean - half)
	ms.CIHigh = asu.Value(mean + half)
	return ms
}
