// Package asu models an acute stroke unit: three classes of patients arrive
// independently and compete for a fixed pool of beds.
//
// One Model is one replication. It wires a sim.Scheduler, a bed
// sim.Resource and one arrival generator per class, runs to the horizon
// (warm-up plus collection period) and keeps every patient it created in its
// log. Summarize reduces that log to one row of metrics.
//
// Time is in days throughout; queue-time metrics are reported in hours.
package asu
