package replication

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

func seed(v int64) *int64 { return &v }

func shortRun(reps int) RunConfig {
	return RunConfig{Replications: reps, CollectionPeriod: 60, WarmUp: 5, ExcludeWarmUp: true, Jobs: 4}
}

// strokeEvery is a deterministic scenario: a stroke patient every gap days,
// each treated for treat days, and no other arrivals.
func strokeEvery(beds int, gap, treat float64) workload.Scenario {
	s := workload.Scenario{Beds: beds, Classes: map[workload.Class]workload.ClassSpec{}}
	for _, c := range workload.Classes {
		s.Classes[c] = workload.ClassSpec{Arrival: workload.ConstantSpec(1e6), Treatment: workload.ConstantSpec(treat)}
	}
	s.Classes[workload.Stroke] = workload.ClassSpec{Arrival: workload.ConstantSpec(gap), Treatment: workload.ConstantSpec(treat)}
	return s.WithRandomNumberSet(seed(1))
}

func TestRunner_TenReplicationsInOrder(t *testing.T) {
	// GIVEN a seeded scenario and ten replications on four workers
	r, err := NewRunner(shortRun(10))
	require.NoError(t, err)

	// WHEN the set runs
	table, err := r.Run(context.Background(), workload.DefaultScenario().WithRandomNumberSet(seed(100)))
	require.NoError(t, err)

	// THEN rows are indexed 1..10 and carry root+index-1 as their key
	require.Len(t, table.Rows, 10)
	for i, row := range table.Rows {
		assert.Equal(t, i+1, row.Rep)
		assert.Equal(t, sim.SimulationKey(100+i), row.Key)
		assert.Nil(t, row.Trace)
	}
}

func TestRunner_ResultsIndependentOfWorkerCount(t *testing.T) {
	scn := workload.DefaultScenario().WithRandomNumberSet(seed(5))

	serialCfg := shortRun(6)
	serialCfg.Jobs = 1
	serial, err := NewRunner(serialCfg)
	require.NoError(t, err)
	parallel, err := NewRunner(shortRun(6))
	require.NoError(t, err)

	a, err := serial.Run(context.Background(), scn)
	require.NoError(t, err)
	b, err := parallel.Run(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunner_ReplicationsUseDistinctStreams(t *testing.T) {
	r, err := NewRunner(shortRun(4))
	require.NoError(t, err)
	table, err := r.Run(context.Background(), workload.DefaultScenario().WithRandomNumberSet(seed(1)))
	require.NoError(t, err)

	seen := map[asu.Metric]int{}
	for _, row := range table.Rows {
		seen[row.MeanTimeInUnitDays]++
	}
	assert.Len(t, seen, 4, "every replication must draw its own sequence")
}

func TestRunner_UnseededReplicationsDrawFreshKeys(t *testing.T) {
	r, err := NewRunner(shortRun(3))
	require.NoError(t, err)
	table, err := r.Run(context.Background(), workload.DefaultScenario())
	require.NoError(t, err)

	keys := map[sim.SimulationKey]bool{}
	for _, row := range table.Rows {
		keys[row.Key] = true
	}
	assert.Len(t, keys, 3)
}

func TestReplicationScenario(t *testing.T) {
	base := workload.DefaultScenario().WithRandomNumberSet(seed(10))
	assert.Equal(t, int64(10), *ReplicationScenario(base, 1).RandomNumberSet)
	assert.Equal(t, int64(13), *ReplicationScenario(base, 4).RandomNumberSet)
	assert.Equal(t, int64(10), *base.RandomNumberSet, "base must not change")
	assert.False(t, ReplicationScenario(workload.DefaultScenario(), 2).Seeded())
}

func TestRunner_PanicAbortsSet(t *testing.T) {
	r, err := NewRunner(shortRun(5))
	require.NoError(t, err)
	r.newModel = func(scn workload.Scenario, opts ...asu.Option) (*asu.Model, error) {
		if *scn.RandomNumberSet == 3 {
			panic(&sim.ContractViolation{Op: "test", Detail: "boom"})
		}
		return asu.NewModel(scn, opts...)
	}

	table, err := r.Run(context.Background(), workload.DefaultScenario().WithRandomNumberSet(seed(1)))
	assert.Nil(t, table, "no partial table on failure")
	require.ErrorIs(t, err, ErrReplicationFailed)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, 3, runErr.Rep)
	var cv *sim.ContractViolation
	assert.ErrorAs(t, err, &cv)
	assert.Equal(t, "boom", cv.Detail)
}

func TestRunner_ModelErrorAbortsSet(t *testing.T) {
	cause := errors.New("no beds today")
	r, err := NewRunner(shortRun(3))
	require.NoError(t, err)
	r.newModel = func(workload.Scenario, ...asu.Option) (*asu.Model, error) { return nil, cause }

	_, err = r.Run(context.Background(), workload.DefaultScenario())
	assert.ErrorIs(t, err, ErrReplicationFailed)
	assert.ErrorIs(t, err, cause)
}

func TestRunner_InvalidInputsRejectedBeforeRunning(t *testing.T) {
	_, err := NewRunner(RunConfig{Replications: 0, CollectionPeriod: 10})
	assert.ErrorIs(t, err, workload.ErrInvalidParameter)
	_, err = NewRunner(RunConfig{Replications: 1, CollectionPeriod: 0})
	assert.ErrorIs(t, err, workload.ErrInvalidParameter)

	obs := &recordingObserver{}
	r, err := NewRunner(shortRun(2), WithObserver(obs))
	require.NoError(t, err)
	bad := workload.DefaultScenario()
	bad.Beds = -1
	_, err = r.Run(context.Background(), bad)
	assert.ErrorIs(t, err, workload.ErrInvalidParameter)
	assert.Zero(t, obs.started, "nothing may start for an invalid scenario")
}

func TestRunner_CancelledContextStartsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := &recordingObserver{}
	r, err := NewRunner(shortRun(3), WithObserver(obs))
	require.NoError(t, err)
	_, err = r.Run(ctx, workload.DefaultScenario())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, obs.started)
}

func TestRunner_WithTrace(t *testing.T) {
	r, err := NewRunner(RunConfig{Replications: 2, CollectionPeriod: 10}, WithTrace(trace.TraceLevelPatients))
	require.NoError(t, err)
	table, err := r.Run(context.Background(), strokeEvery(1, 1, 2.5))
	require.NoError(t, err)

	for _, row := range table.Rows {
		require.NotNil(t, row.Trace)
		assert.Equal(t, row.TotalArrivals, trace.Summarize(row.Trace).Arrivals)
	}
}

type recordingObserver struct {
	mu                       sync.Mutex
	started, finished, fails int
	reps                     []int
}

func (o *recordingObserver) ReplicationStarted(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) ReplicationFinished(rep int, _ time.Duration, _ asu.Summary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished++
	o.reps = append(o.reps, rep)
}

func (o *recordingObserver) ReplicationFailed(int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fails++
}

func TestRunner_NotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	r, err := NewRunner(shortRun(4), WithObserver(obs))
	require.NoError(t, err)
	_, err = r.Run(context.Background(), workload.DefaultScenario().WithRandomNumberSet(seed(2)))
	require.NoError(t, err)

	assert.Equal(t, 4, obs.started)
	assert.Equal(t, 4, obs.finished)
	assert.Zero(t, obs.fails)
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, obs.reps)
}
