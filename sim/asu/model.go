package asu

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// ErrAlreadyRun is returned by a second call to Model.Run.
var ErrAlreadyRun = errors.New("model has already run")

// Option configures a Model.
type Option func(*Model)

// WithTrace records patient events into st.
func WithTrace(st *trace.SimulationTrace) Option {
	return func(m *Model) { m.trace = st }
}

// ArrivalCounts are incremented at arrival, not at discharge.
type ArrivalCounts struct {
	Total   int
	ByClass map[workload.Class]int
}

// Model is one run of the ASU: one scheduler, one bed pool and one arrival
// generator per class.
type Model struct {
	scenario  workload.Scenario
	sampling  *workload.Sampling
	sched     *sim.Scheduler
	beds      *sim.Resource
	trace     *trace.SimulationTrace
	generated bool

	patients   []*Patient
	arrivals   ArrivalCounts
	discharged int

	warmUp           float64
	collectionPeriod float64
}

// NewModel validates scn and builds an unstarted model with its own seeded
// distributions. scn is copied; later changes to it do not affect the model.
func NewModel(scn workload.Scenario, opts ...Option) (*Model, error) {
	scn = scn.Clone()
	sampling, err := scn.Sampling()
	if err != nil {
		return nil, err
	}
	sched := sim.NewScheduler()
	m := &Model{
		scenario: scn,
		sampling: sampling,
		sched:    sched,
		beds:     sim.NewResource(sched, "beds", scn.Beds),
		arrivals: ArrivalCounts{ByClass: make(map[workload.Class]int, len(workload.Classes))},
		patients: make([]*Patient, 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ValidateRunLength checks a collection period and warm-up pair.
func ValidateRunLength(collectionPeriod, warmUp float64) error {
	if math.IsNaN(collectionPeriod) || math.IsInf(collectionPeriod, 0) || collectionPeriod <= 0 {
		return fmt.Errorf("%w: collection period must be a positive finite number, got %v", workload.ErrInvalidParameter, collectionPeriod)
	}
	if math.IsNaN(warmUp) || math.IsInf(warmUp, 0) || warmUp < 0 {
		return fmt.Errorf("%w: warm-up must be a non-negative finite number, got %v", workload.ErrInvalidParameter, warmUp)
	}
	return nil
}

// Run starts the three arrival generators and runs the scheduler until
// warmUp + collectionPeriod. A model runs once.
func (m *Model) Run(collectionPeriod, warmUp float64) error {
	if err := ValidateRunLength(collectionPeriod, warmUp); err != nil {
		return err
	}
	if m.generated {
		return ErrAlreadyRun
	}
	m.generated = true
	m.warmUp = warmUp
	m.collectionPeriod = collectionPeriod

	for _, c := range workload.Classes {
		m.sched.Start(&arrivalGenerator{model: m, class: c, gaps: m.sampling.Arrivals[c]})
	}
	logrus.Debugf("model run: key=%d beds=%d horizon=%.2f (warm-up %.2f)", m.sampling.Key, m.beds.Capacity(), m.Horizon(), warmUp)
	m.sched.RunUntil(m.Horizon())
	logrus.Debugf("model run done: %d arrivals, %d discharged, %d still waiting", m.arrivals.Total, m.discharged, m.beds.QueueLen())
	return nil
}

// arrive creates the next patient of class c and starts its pathway.
func (m *Model) arrive(s *sim.Scheduler, c workload.Class) {
	m.arrivals.Total++
	m.arrivals.ByClass[c]++
	p := &Patient{ID: m.arrivals.Total, Class: c, ArrivalTime: s.Now()}
	m.patients = append(m.patients, p)
	logrus.Debugf("[t=%010.4f] patient %d (%s) arrives", s.Now(), p.ID, c)
	m.record(s, p, trace.EventArrival)
	s.Start(&treatment{model: m, patient: p, durations: m.sampling.Treatments[c]})
}

func (m *Model) record(s *sim.Scheduler, p *Patient, kind trace.EventKind) {
	if m.trace == nil {
		return
	}
	r := trace.PatientRecord{
		PatientID:   p.ID,
		Class:       string(p.Class),
		Kind:        kind,
		Clock:       s.Now(),
		BedsInUse:   m.beds.InUse(),
		QueueLength: m.beds.QueueLen(),
	}
	if kind != trace.EventArrival {
		r.QueueTime = p.QueueTime
		r.TreatmentTime = p.TreatmentDuration
	}
	m.trace.Record(r)
}

// Patients returns every patient created during the run, in arrival order,
// whether or not their pathway completed before the horizon.
func (m *Model) Patients() []*Patient {
	return m.patients
}

// Arrivals returns the per-class and total arrival counters.
func (m *Model) Arrivals() ArrivalCounts {
	return m.arrivals
}

// Discharged returns the number of patients whose treatment ended.
func (m *Model) Discharged() int {
	return m.discharged
}

// Key returns the random-number key the run was seeded with.
func (m *Model) Key() sim.SimulationKey {
	return m.sampling.Key
}

// Scenario returns the model's own copy of its scenario.
func (m *Model) Scenario() workload.Scenario {
	return m.scenario
}

// Beds returns the bed pool.
func (m *Model) Beds() *sim.Resource {
	return m.beds
}

// Horizon returns warm-up plus collection period.
func (m *Model) Horizon() float64 {
	return m.warmUp + m.collectionPeriod
}

// Summary reduces the patient log to one row. With excludeWarmUp, patients
// that arrived before the end of the warm-up are left out.
func (m *Model) Summary(excludeWarmUp bool) Summary {
	return Summarize(m.patients, SummaryConfig{
		Beds:             m.beds.Capacity(),
		CollectionPeriod: m.collectionPeriod,
		WarmUp:           m.warmUp,
		Horizon:          m.Horizon(),
		ExcludeWarmUp:    excludeWarmUp,
	})
}
