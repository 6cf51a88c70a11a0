package asu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/asu-sim/sim/internal/testutil"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

func seed(v int64) *int64 { return &v }

// strokeOnly returns a deterministic scenario in which only stroke patients
// arrive, every gap days, each staying treat days.
func strokeOnly(beds int, gap, treat float64) workload.Scenario {
	s := workload.Scenario{Beds: beds, Classes: map[workload.Class]workload.ClassSpec{}}
	for _, c := range workload.Classes {
		s.Classes[c] = workload.ClassSpec{
			Arrival:   workload.ConstantSpec(1e6),
			Treatment: workload.ConstantSpec(treat),
		}
	}
	s.Classes[workload.Stroke] = workload.ClassSpec{
		Arrival:   workload.ConstantSpec(gap),
		Treatment: workload.ConstantSpec(treat),
	}
	return s.WithRandomNumberSet(seed(1))
}

func runModel(t *testing.T, scn workload.Scenario, period, warmUp float64, opts ...Option) *Model {
	t.Helper()
	m, err := NewModel(scn, opts...)
	require.NoError(t, err)
	require.NoError(t, m.Run(period, warmUp))
	return m
}

func TestModel_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			m := runModel(t, strokeOnly(tc.Beds, tc.StrokeGap, tc.TreatmentDays), tc.Period, tc.WarmUp)

			var queued []float64
			for _, p := range m.Patients() {
				if p.Admitted {
					queued = append(queued, p.QueueTime)
				}
			}
			require.Len(t, queued, len(tc.QueueTimes))
			for i, want := range tc.QueueTimes {
				testutil.AssertFloat64Equal(t, "queue_time", want, queued[i], 1e-12)
			}

			got := m.Summary(tc.ExcludeWarmUp)
			want := tc.Metrics
			assert.Equal(t, want.TotalArrivals, got.TotalArrivals, "total_arrivals")
			assert.Equal(t, want.Discharged, got.Discharged, "discharged")
			testutil.AssertOptionalFloat64(t, MetricTrimmedMeanQueue, want.TrimmedMeanQueueHrs, got.TrimmedMeanQueueHrs.Value, got.TrimmedMeanQueueHrs.Defined, 1e-9)
			testutil.AssertOptionalFloat64(t, MetricWithinTarget, want.WithinTargetPct, got.WithinTargetPct.Value, got.WithinTargetPct.Defined, 1e-9)
			testutil.AssertOptionalFloat64(t, MetricUtilization, want.UtilizationPct, got.UtilizationPct.Value, got.UtilizationPct.Defined, 1e-9)
			testutil.AssertOptionalFloat64(t, MetricMeanTimeInUnit, want.MeanTimeInUnitDays, got.MeanTimeInUnitDays.Value, got.MeanTimeInUnitDays.Defined, 1e-9)
			testutil.AssertOptionalFloat64(t, MetricMeanSojourn, want.MeanSojournDays, got.MeanSojournDays.Value, got.MeanSojournDays.Defined, 1e-9)
		})
	}
}

func TestModel_Conservation(t *testing.T) {
	m := runModel(t, workload.DefaultScenario().WithRandomNumberSet(seed(7)), 365, 0)

	counts := m.Arrivals()
	require.Len(t, m.Patients(), counts.Total)
	sum := 0
	for _, c := range workload.Classes {
		sum += counts.ByClass[c]
	}
	assert.Equal(t, counts.Total, sum)
	assert.Positive(t, counts.ByClass[workload.Stroke])

	for i, p := range m.Patients() {
		assert.Equal(t, i+1, p.ID, "ids follow arrival order")
		if i > 0 {
			assert.GreaterOrEqual(t, p.ArrivalTime, m.Patients()[i-1].ArrivalTime)
		}
		if p.Admitted {
			assert.GreaterOrEqual(t, p.QueueTime, 0.0)
			assert.Positive(t, p.TreatmentDuration)
		}
		if p.Discharged {
			assert.True(t, p.Admitted)
			assert.LessOrEqual(t, p.DischargeTime, m.Horizon())
		}
	}
	assert.LessOrEqual(t, m.Beds().InUse(), m.Beds().Capacity())
}

func TestModel_SameSeedIsDeterministic(t *testing.T) {
	scn := workload.DefaultScenario().WithRandomNumberSet(seed(42))
	a := runModel(t, scn, 200, 10)
	b := runModel(t, scn, 200, 10)

	require.Equal(t, len(a.Patients()), len(b.Patients()))
	for i := range a.Patients() {
		assert.Equal(t, *a.Patients()[i], *b.Patients()[i])
	}
	assert.Equal(t, a.Summary(true), b.Summary(true))
}

func TestModel_DifferentSeedsDiffer(t *testing.T) {
	a := runModel(t, workload.DefaultScenario().WithRandomNumberSet(seed(1)), 200, 0)
	b := runModel(t, workload.DefaultScenario().WithRandomNumberSet(seed(2)), 200, 0)
	assert.NotEqual(t, a.Patients()[0].ArrivalTime, b.Patients()[0].ArrivalTime)
}

func TestModel_ChangingOneClassLeavesOthersUntouched(t *testing.T) {
	base := workload.DefaultScenario().WithRandomNumberSet(seed(9))
	base.Beds = 1000
	changed := base.Clone()
	changed.Classes[workload.TIA] = workload.ClassSpec{
		Arrival:   workload.ExponentialSpec(2),
		Treatment: workload.LognormalSpec(5, 1),
	}

	strokes := func(m *Model) []Patient {
		var out []Patient
		for _, p := range m.Patients() {
			if p.Class == workload.Stroke {
				cp := *p
				cp.ID = 0
				out = append(out, cp)
			}
		}
		return out
	}
	a := runModel(t, base, 100, 0)
	b := runModel(t, changed, 100, 0)
	assert.Equal(t, strokes(a), strokes(b))
}

func TestModel_UnlimitedBedsNeverQueue(t *testing.T) {
	scn := workload.DefaultScenario().WithRandomNumberSet(seed(3))
	scn.Beds = 100000
	m := runModel(t, scn, 365, 0)

	require.NotEmpty(t, m.Patients())
	for _, p := range m.Patients() {
		require.True(t, p.Admitted)
		assert.Zero(t, p.QueueTime)
	}
	s := m.Summary(true)
	assert.Equal(t, Value(0), s.TrimmedMeanQueueHrs)
	assert.Equal(t, Value(100), s.WithinTargetPct)
	assert.Equal(t, 0, m.Beds().PeakQueueLen())
}

func TestModel_NoArrivals_RatiosUndefined(t *testing.T) {
	m := runModel(t, strokeOnly(1, 50, 1), 10, 0)

	require.Empty(t, m.Patients())
	s := m.Summary(true)
	assert.Zero(t, s.TotalArrivals)
	assert.Equal(t, map[workload.Class]int{workload.Stroke: 0, workload.TIA: 0, workload.Neuro: 0}, s.Arrivals)
	for name, v := range s.Values() {
		switch name {
		case MetricTrimmedMeanQueue, MetricWithinTarget, MetricUtilization, MetricMeanTimeInUnit, MetricMeanSojourn:
			assert.False(t, v.Defined, name)
		default:
			assert.Equal(t, Value(0), v, name)
		}
	}
}

func TestModel_PatientsWaitingAtHorizonAreKept(t *testing.T) {
	m := runModel(t, strokeOnly(1, 1, 100), 5, 0)

	require.Len(t, m.Patients(), 5)
	assert.True(t, m.Patients()[0].Admitted)
	for _, p := range m.Patients()[1:] {
		assert.False(t, p.Admitted)
		assert.Equal(t, 5-p.ArrivalTime, p.Wait(m.Horizon()))
	}
	assert.Equal(t, 4, m.Beds().QueueLen())
	assert.Zero(t, m.Discharged())
}

func TestModel_Run_RejectsBadRunLength(t *testing.T) {
	tests := []struct {
		name           string
		period, warmUp float64
	}{
		{"zero period", 0, 0},
		{"negative period", -1, 0},
		{"nan period", math.NaN(), 0},
		{"infinite period", math.Inf(1), 0},
		{"negative warm-up", 10, -1},
		{"nan warm-up", 10, math.NaN()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewModel(workload.DefaultScenario())
			require.NoError(t, err)
			err = m.Run(tc.period, tc.warmUp)
			assert.ErrorIs(t, err, workload.ErrInvalidParameter)
		})
	}
}

func TestModel_RunTwice(t *testing.T) {
	m := runModel(t, strokeOnly(1, 1, 1), 3, 0)
	err := m.Run(3, 0)
	assert.True(t, errors.Is(err, ErrAlreadyRun))
}

func TestNewModel_InvalidScenario(t *testing.T) {
	scn := workload.DefaultScenario()
	scn.Beds = 0
	_, err := NewModel(scn)
	assert.ErrorIs(t, err, workload.ErrInvalidParameter)
}

func TestNewModel_CopiesScenario(t *testing.T) {
	scn := strokeOnly(1, 1, 1)
	m, err := NewModel(scn)
	require.NoError(t, err)
	scn.Beds = 5
	scn.Classes[workload.Stroke].Arrival.Params["value"] = 9
	assert.Equal(t, 1, m.Scenario().Beds)
	assert.Equal(t, 1.0, m.Scenario().Classes[workload.Stroke].Arrival.Params["value"])
}

func TestModel_WithTrace(t *testing.T) {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelPatients})
	m := runModel(t, strokeOnly(1, 1, 2.5), 10, 0, WithTrace(st))

	sum := trace.Summarize(st)
	assert.Equal(t, len(m.Patients()), sum.Arrivals)
	assert.Equal(t, 4, sum.Admissions)
	assert.Equal(t, m.Discharged(), sum.Discharges)

	recs := st.ForPatient(2)
	require.Len(t, recs, 3)
	assert.Equal(t, []trace.EventKind{trace.EventArrival, trace.EventAdmitted, trace.EventDischarged},
		[]trace.EventKind{recs[0].Kind, recs[1].Kind, recs[2].Kind})
	assert.Equal(t, 1.5, recs[1].QueueTime)
	assert.Equal(t, 3.5, recs[1].Clock)
	assert.Equal(t, 6.0, recs[2].Clock)
}
