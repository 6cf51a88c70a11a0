// Package sim provides the discrete-event simulation kernel for the ASU model.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: Process, the resumable unit of work, and the pending wake-up record
//   - scheduler.go: the virtual clock and the run loop
//   - resource.go: the capacity-limited FIFO Resource and its Lease
//   - rng.go: SimulationKey and sub-stream seed derivation
//
// # Architecture
//
// The kernel is single-threaded and cooperative. A Process runs until it
// schedules its next wake-up with Scheduler.ScheduleAfter, parks itself on a
// Resource, or finishes. Exactly one process is active at any virtual instant,
// so kernel state is never locked. Same-time wake-ups run in submission order,
// which is what makes a seeded run replay bit-for-bit.
//
// The domain lives in sub-packages:
//   - sim/workload/: distributions, Scenario, YAML loading
//   - sim/asu/: patients, arrival generators, the model run and its summary
//   - sim/replication/: independent replications and the results table
//   - sim/trace/: optional per-patient event trace
package sim
