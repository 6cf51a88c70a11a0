package workload

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/asu-sim/sim"
)

// Distribution is a seeded sampler bound to fixed parameters.
// Two instances with the same seed and parameters produce identical sequences.
type Distribution interface {
	// Sample returns the next draw. Always strictly positive.
	Sample() float64
	// Mean returns the target mean of the distribution.
	Mean() float64
	// Seed returns the seed the instance was built from.
	Seed() int64
}

// Exponential draws exponentially distributed values with the given mean.
type Exponential struct {
	mean float64
	seed int64
	dist distuv.Exponential
}

// NewExponential creates an Exponential. mean must be positive and finite.
func NewExponential(mean float64, seed int64) (*Exponential, error) {
	if err := validateFinitePositive("exponential.mean", mean); err != nil {
		return nil, err
	}
	return &Exponential{
		mean: mean,
		seed: seed,
		dist: distuv.Exponential{Rate: 1 / mean, Src: sim.NewSource(seed)},
	}, nil
}

func (e *Exponential) Sample() float64 { return e.dist.Rand() }
func (e *Exponential) Mean() float64   { return e.mean }
func (e *Exponential) Seed() int64     { return e.seed }

// Lognormal draws log-normally distributed values whose own mean and
// standard deviation are the configured ones.
type Lognormal struct {
	mean, stdDev float64
	seed         int64
	dist         distuv.LogNormal
}

// NewLognormal creates a Lognormal. mean must be positive, stdDev non-negative.
func NewLognormal(mean, stdDev float64, seed int64) (*Lognormal, error) {
	if err := validateFinitePositive("lognormal.mean", mean); err != nil {
		return nil, err
	}
	if math.IsNaN(stdDev) || math.IsInf(stdDev, 0) || stdDev < 0 {
		return nil, fmt.Errorf("%w: lognormal.std_dev must be a finite non-negative number, got %f", ErrInvalidParameter, stdDev)
	}
	mu, sigma := NormalMomentsFromLognormal(mean, stdDev*stdDev)
	return &Lognormal{
		mean:   mean,
		stdDev: stdDev,
		seed:   seed,
		dist:   distuv.LogNormal{Mu: mu, Sigma: sigma, Src: sim.NewSource(seed)},
	}, nil
}

// NormalMomentsFromLognormal returns mu and sigma of the normal distribution
// underlying a lognormal with mean m and variance v.
func NormalMomentsFromLognormal(m, v float64) (mu, sigma float64) {
	phi := math.Sqrt(v + m*m)
	mu = math.Log(m * m / phi)
	sigma = math.Sqrt(math.Log(v/(m*m) + 1))
	return mu, sigma
}

func (l *Lognormal) Sample() float64 { return l.dist.Rand() }
func (l *Lognormal) Mean() float64   { return l.mean }
func (l *Lognormal) Seed() int64     { return l.seed }

// StdDev returns the configured standard deviation.
func (l *Lognormal) StdDev() float64 { return l.stdDev }

// Underlying returns the parameters of the underlying normal distribution.
func (l *Lognormal) Underlying() (mu, sigma float64) { return l.dist.Mu, l.dist.Sigma }

// Constant always returns the same value. Used for deterministic scenarios.
type Constant struct {
	value float64
	seed  int64
}

// NewConstant creates a Constant. value must be positive and finite.
func NewConstant(value float64, seed int64) (*Constant, error) {
	if err := validateFinitePositive("constant.value", value); err != nil {
		return nil, err
	}
	return &Constant{value: value, seed: seed}, nil
}

func (c *Constant) Sample() float64 { return c.value }
func (c *Constant) Mean() float64   { return c.value }
func (c *Constant) Seed() int64     { return c.seed }

// Distribution type names accepted in DistSpec.Type.
const (
	DistExponential = "exponential"
	DistLognormal   = "lognormal"
	DistConstant    = "constant"
)

var validDistTypes = map[string]bool{
	DistExponential: true, DistLognormal: true, DistConstant: true,
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("%w: distribution requires parameter %q", ErrInvalidParameter, k)
		}
	}
	return nil
}

// NewDistribution creates a Distribution from a DistSpec and a derived seed.
func NewDistribution(spec DistSpec, seed int64) (Distribution, error) {
	switch spec.Type {
	case DistExponential:
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return NewExponential(spec.Params["mean"], seed)

	case DistLognormal:
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		return NewLognormal(spec.Params["mean"], spec.Params["std_dev"], seed)

	case DistConstant:
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return NewConstant(spec.Params["value"], seed)

	default:
		return nil, fmt.Errorf("%w: unknown distribution type %q", ErrInvalidParameter, spec.Type)
	}
}
