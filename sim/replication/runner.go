package replication

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// Option configures a Runner.
type Option func(*Runner)

// WithObserver reports replication lifecycle events to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTrace attaches a patient trace at the given level to every row.
func WithTrace(level trace.TraceLevel) Option {
	return func(r *Runner) { r.traceLevel = level }
}

// Runner executes replication sets. A Runner holds no per-run state and may
// be reused.
type Runner struct {
	cfg        RunConfig
	observer   Observer
	traceLevel trace.TraceLevel

	// newModel builds the model of one replication.
	newModel func(workload.Scenario, ...asu.Option) (*asu.Model, error)
}

// NewRunner validates cfg and returns a Runner for it.
func NewRunner(cfg RunConfig, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:        cfg,
		observer:   NopObserver{},
		traceLevel: trace.TraceLevelNone,
		newModel:   asu.NewModel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() RunConfig {
	return r.cfg
}

// ReplicationScenario returns the scenario replication rep (1-based) runs
// with: the root random-number set plus rep-1, or unseeded when the root
// is unseeded.
func ReplicationScenario(scn workload.Scenario, rep int) workload.Scenario {
	if !scn.Seeded() {
		return scn.WithRandomNumberSet(nil)
	}
	seed := int64(sim.NewSimulationKey(*scn.RandomNumberSet).Offset(rep - 1))
	return scn.WithRandomNumberSet(&seed)
}

// Run executes every replication of scn and returns the rows in
// replication order. scn is validated before any replication starts.
//
// ctx only gates the start of replications; a replication that has
// started always runs to its horizon. On failure no table is returned.
func (r *Runner) Run(ctx context.Context, scn workload.Scenario) (*ResultsTable, error) {
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	scn = scn.Clone()

	n := r.cfg.Replications
	rows := make([]Row, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.workers())

	logrus.Infof("running %d replications (beds=%d, horizon=%.1f, workers=%d)",
		n, scn.Beds, r.cfg.WarmUp+r.cfg.CollectionPeriod, r.cfg.workers())
	for i := 1; i <= n; i++ {
		repScn := ReplicationScenario(scn, i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("replication %d not started: %w", i, err)
			}
			row, err := r.runOne(i, repScn)
			if err != nil {
				return err
			}
			rows[i-1] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ResultsTable{Rows: rows}, nil
}

func (r *Runner) runOne(rep int, scn workload.Scenario) (row Row, err error) {
	start := time.Now()
	r.observer.ReplicationStarted(rep)
	defer func() {
		if v := recover(); v != nil {
			err = &RunError{Rep: rep, Err: panicError(v)}
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{"rep": rep}).Errorf("replication failed: %v", err)
			r.observer.ReplicationFailed(rep, err)
			return
		}
		wall := time.Since(start)
		logrus.WithFields(logrus.Fields{"rep": rep, "seed": int64(row.Key), "duration": wall}).Info("replication finished")
		r.observer.ReplicationFinished(rep, wall, row.Summary)
	}()

	var opts []asu.Option
	var st *trace.SimulationTrace
	if tc := (trace.TraceConfig{Level: r.traceLevel}); tc.Enabled() {
		st = trace.NewSimulationTrace(tc)
		opts = append(opts, asu.WithTrace(st))
	}
	m, err := r.newModel(scn, opts...)
	if err != nil {
		return Row{}, &RunError{Rep: rep, Err: err}
	}
	if err := m.Run(r.cfg.CollectionPeriod, r.cfg.WarmUp); err != nil {
		return Row{}, &RunError{Rep: rep, Err: err}
	}
	return Row{Rep: rep, Key: m.Key(), Summary: m.Summary(r.cfg.ExcludeWarmUp), Trace: st}, nil
}
