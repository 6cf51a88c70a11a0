package replication

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// SweepConfig is a range of bed counts and the share of patients that must
// be admitted within the 4-hour target.
type SweepConfig struct {
	MinBeds   int     `yaml:"min_beds" json:"min_beds"`
	MaxBeds   int     `yaml:"max_beds" json:"max_beds"`
	TargetPct float64 `yaml:"target_pct" json:"target_pct"`
}

// Validate checks the bed range and the target percentage.
func (c SweepConfig) Validate() error {
	if c.MinBeds < 1 {
		return fmt.Errorf("%w: min beds must be >= 1, got %d", workload.ErrInvalidParameter, c.MinBeds)
	}
	if c.MaxBeds < c.MinBeds {
		return fmt.Errorf("%w: max beds %d is below min beds %d", workload.ErrInvalidParameter, c.MaxBeds, c.MinBeds)
	}
	if math.IsNaN(c.TargetPct) || c.TargetPct <= 0 || c.TargetPct > 100 {
		return fmt.Errorf("%w: target percentage must be in (0, 100], got %v", workload.ErrInvalidParameter, c.TargetPct)
	}
	return nil
}

// SweepPoint is the replication set of one bed count.
type SweepPoint struct {
	Beds         int           `json:"beds" yaml:"beds"`
	WithinTarget MetricSummary `json:"admitted_within_4hrs_pct" yaml:"admitted_within_4hrs_pct"`
	MeetsTarget  bool          `json:"meets_target" yaml:"meets_target"`
	Table        *ResultsTable `json:"-" yaml:"-"`
}

// SweepResult lists every point in bed order. Recommended is the smallest
// bed count meeting the target, or 0 if none does.
type SweepResult struct {
	Target float64 `json:"target_pct" yaml:"target_pct"`
	// RandomNumberSet is the root seed every point ran with.
	RandomNumberSet int64        `json:"random_number_set" yaml:"random_number_set"`
	Points          []SweepPoint `json:"points" yaml:"points"`
	Recommended     int          `json:"recommended_beds" yaml:"recommended_beds"`
}

// Sweep runs the full replication set of scn for each bed count in the
// range. Every point reuses the same random-number set, so points differ
// only by capacity; an unseeded scenario draws one root for the whole sweep.
func (r *Runner) Sweep(ctx context.Context, scn workload.Scenario, cfg SweepConfig) (*SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !scn.Seeded() {
		root := int64(sim.RandomSimulationKey())
		scn = scn.WithRandomNumberSet(&root)
	}
	res := &SweepResult{Target: cfg.TargetPct, RandomNumberSet: *scn.RandomNumberSet, Points: make([]SweepPoint, 0, cfg.MaxBeds-cfg.MinBeds+1)}
	for beds := cfg.MinBeds; beds <= cfg.MaxBeds; beds++ {
		point := scn.Clone()
		point.Beds = beds
		table, err := r.Run(ctx, point)
		if err != nil {
			return nil, fmt.Errorf("sweep at %d beds: %w", beds, err)
		}
		within, _ := table.Lookup(asu.MetricWithinTarget)
		meets := within.Mean.Defined && within.Mean.Value >= cfg.TargetPct
		logrus.Infof("sweep: beds=%d within-4h mean=%s meets=%v", beds, within.Mean, meets)
		res.Points = append(res.Points, SweepPoint{Beds: beds, WithinTarget: within, MeetsTarget: meets, Table: table})
		if meets && res.Recommended == 0 {
			res.Recommended = beds
		}
	}
	return res, nil
}
