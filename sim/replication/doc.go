// Package replication runs independent replications of the ASU model and
// collects their summaries into an ordered ResultsTable.
//
// Replications share nothing mutable: each one derives its own Scenario
// copy and seeds, builds its own Model, and writes its row into a slot
// reserved for its index. Rows therefore come out in replication order
// whatever order the workers finish in.
//
// The first failing replication aborts the set. Runner.Run returns a
// *RunError that matches ErrReplicationFailed and carries the cause.
package replication
