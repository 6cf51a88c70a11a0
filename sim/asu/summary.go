package asu

import (
	"slices"

	"github.com/inference-sim/asu-sim/sim/workload"
)

const (
	// HoursPerDay converts the model's time unit to reporting hours.
	HoursPerDay = 24.0
	// AdmissionTargetHrs is the queue-time threshold of the within-target metric.
	AdmissionTargetHrs = 4.0
	// TrimTopPercent is the share of longest waits dropped by the trimmed mean.
	TrimTopPercent = 10
)

// Metric names, in report order.
const (
	MetricTotalArrivals    = "total_arrivals"
	MetricTrimmedMeanQueue = "trimmed_mean_queue_hrs"
	MetricWithinTarget     = "admitted_within_4hrs_pct"
	MetricUtilization      = "bed_utilisation_pct"
	MetricMeanTimeInUnit   = "mean_time_in_unit_days"
	MetricMeanSojourn      = "mean_sojourn_days"
	MetricDischarged       = "discharged"
)

// MetricArrivals is the name of a class's arrival-count metric.
func MetricArrivals(c workload.Class) string {
	return string(c) + "_arrivals"
}

// MetricNames lists every metric of a Summary in report order.
func MetricNames() []string {
	names := []string{MetricTotalArrivals}
	for _, c := range workload.Classes {
		names = append(names, MetricArrivals(c))
	}
	return append(names,
		MetricTrimmedMeanQueue,
		MetricWithinTarget,
		MetricUtilization,
		MetricMeanTimeInUnit,
		MetricMeanSojourn,
		MetricDischarged,
	)
}

// SummaryConfig carries the run parameters the metrics are normalized by.
type SummaryConfig struct {
	Beds             int
	CollectionPeriod float64
	WarmUp           float64
	Horizon          float64
	// ExcludeWarmUp drops patients with ArrivalTime < WarmUp.
	ExcludeWarmUp bool
}

// Summary is one replication's row of metrics.
type Summary struct {
	TotalArrivals int                    `json:"total_arrivals" yaml:"total_arrivals"`
	Arrivals      map[workload.Class]int `json:"arrivals" yaml:"arrivals"`
	Discharged    int                    `json:"discharged" yaml:"discharged"`

	// TrimmedMeanQueueHrs is the mean queue time of the shortest 90% of waits.
	TrimmedMeanQueueHrs Metric `json:"trimmed_mean_queue_hrs" yaml:"trimmed_mean_queue_hrs"`
	// WithinTargetPct is the share of patients admitted within 4 hours.
	WithinTargetPct Metric `json:"admitted_within_4hrs_pct" yaml:"admitted_within_4hrs_pct"`
	// UtilizationPct is total sampled treatment time over beds × collection period.
	UtilizationPct Metric `json:"bed_utilisation_pct" yaml:"bed_utilisation_pct"`
	// MeanTimeInUnitDays is total treatment time over patient count. It
	// excludes queue time; see MeanSojournDays for the end-to-end figure.
	MeanTimeInUnitDays Metric `json:"mean_time_in_unit_days" yaml:"mean_time_in_unit_days"`
	// MeanSojournDays is the mean of queue plus treatment time over
	// discharged patients.
	MeanSojournDays Metric `json:"mean_sojourn_days" yaml:"mean_sojourn_days"`
}

// Values returns the summary as metrics keyed by MetricNames.
func (s Summary) Values() map[string]Metric {
	out := map[string]Metric{
		MetricTotalArrivals:    Value(float64(s.TotalArrivals)),
		MetricTrimmedMeanQueue: s.TrimmedMeanQueueHrs,
		MetricWithinTarget:     s.WithinTargetPct,
		MetricUtilization:      s.UtilizationPct,
		MetricMeanTimeInUnit:   s.MeanTimeInUnitDays,
		MetricMeanSojourn:      s.MeanSojournDays,
		MetricDischarged:       Value(float64(s.Discharged)),
	}
	for _, c := range workload.Classes {
		out[MetricArrivals(c)] = Value(float64(s.Arrivals[c]))
	}
	return out
}

// Summarize computes one row of metrics from a patient log.
// With zero patients every ratio metric is Undefined.
func Summarize(log []*Patient, cfg SummaryConfig) Summary {
	s := Summary{Arrivals: make(map[workload.Class]int, len(workload.Classes))}
	for _, c := range workload.Classes {
		s.Arrivals[c] = 0
	}

	waitsHrs := make([]float64, 0, len(log))
	var treatTotal, sojournTotal float64
	within := 0
	for _, p := range log {
		if cfg.ExcludeWarmUp && p.ArrivalTime < cfg.WarmUp {
			continue
		}
		s.TotalArrivals++
		s.Arrivals[p.Class]++

		w := p.Wait(cfg.Horizon) * HoursPerDay
		waitsHrs = append(waitsHrs, w)
		if w <= AdmissionTargetHrs {
			within++
		}
		if p.Admitted {
			treatTotal += p.TreatmentDuration
		}
		if soj, ok := p.Sojourn(); ok {
			s.Discharged++
			sojournTotal += soj
		}
	}

	if s.TotalArrivals == 0 {
		return s
	}
	n := float64(s.TotalArrivals)
	s.TrimmedMeanQueueHrs = TrimmedMean(waitsHrs, TrimTopPercent)
	s.WithinTargetPct = Value(float64(within) / n * 100)
	s.UtilizationPct = Ratio(treatTotal*100, float64(cfg.Beds)*cfg.CollectionPeriod)
	s.MeanTimeInUnitDays = Value(treatTotal / n)
	s.MeanSojournDays = Ratio(sojournTotal, float64(s.Discharged))
	return s
}

// TrimmedMean sorts values ascending, drops the top dropTopPercent of them
// (by count, rounded down) and averages the rest. Undefined for no values.
func TrimmedMean(values []float64, dropTopPercent int) Metric {
	if len(values) == 0 {
		return Undefined
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	keep := len(sorted) - len(sorted)*dropTopPercent/100
	if keep <= 0 {
		return Undefined
	}
	sum := 0.0
	for _, v := range sorted[:keep] {
		sum += v
	}
	return Value(sum / float64(keep))
}
