package replication

import (
	"fmt"
	"runtime"

	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// Run defaults.
const (
	DefaultReplications     = 5
	DefaultCollectionPeriod = 365.0
	DefaultWarmUp           = 0.0
)

// RunConfig describes one replication set. Times are in days.
type RunConfig struct {
	Replications     int     `yaml:"replications" json:"replications"`
	CollectionPeriod float64 `yaml:"collection_period" json:"collection_period"`
	WarmUp           float64 `yaml:"warm_up" json:"warm_up"`
	// ExcludeWarmUp leaves patients arriving during the warm-up out of every
	// row's statistics.
	ExcludeWarmUp bool `yaml:"exclude_warm_up" json:"exclude_warm_up"`
	// Jobs bounds the replications executing at once; 0 or less means
	// GOMAXPROCS.
	Jobs int `yaml:"jobs" json:"jobs"`
}

// DefaultRunConfig returns the base-case run: five replications of one year.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Replications:     DefaultReplications,
		CollectionPeriod: DefaultCollectionPeriod,
		WarmUp:           DefaultWarmUp,
		ExcludeWarmUp:    true,
	}
}

// Validate reports the first invalid field, wrapping workload.ErrInvalidParameter.
func (c RunConfig) Validate() error {
	if c.Replications < 1 {
		return fmt.Errorf("%w: replications must be >= 1, got %d", workload.ErrInvalidParameter, c.Replications)
	}
	return asu.ValidateRunLength(c.CollectionPeriod, c.WarmUp)
}

// workers returns the effective worker limit, never more than the
// replication count.
func (c RunConfig) workers() int {
	n := c.Jobs
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, c.Replications))
}
