package workload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/asu-sim/sim"
)

// ErrInvalidParameter marks every configuration error detected before a run.
var ErrInvalidParameter = errors.New("invalid parameter")

// Class is a patient arrival class.
type Class string

const (
	Stroke Class = "stroke"
	TIA    Class = "tia"
	Neuro  Class = "neuro"
)

// Classes lists every class in its canonical order. Generators, streams and
// result columns all follow this order.
var Classes = []Class{Stroke, TIA, Neuro}

// IsValidClass reports whether c is a known class.
func IsValidClass(c Class) bool {
	for _, k := range Classes {
		if k == c {
			return true
		}
	}
	return false
}

// DistSpec parameterizes a distribution.
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// ExponentialSpec is shorthand for an exponential DistSpec.
func ExponentialSpec(mean float64) DistSpec {
	return DistSpec{Type: DistExponential, Params: map[string]float64{"mean": mean}}
}

// LognormalSpec is shorthand for a lognormal DistSpec.
func LognormalSpec(mean, stdDev float64) DistSpec {
	return DistSpec{Type: DistLognormal, Params: map[string]float64{"mean": mean, "std_dev": stdDev}}
}

// ConstantSpec is shorthand for a constant DistSpec.
func ConstantSpec(value float64) DistSpec {
	return DistSpec{Type: DistConstant, Params: map[string]float64{"value": value}}
}

func (d DistSpec) clone() DistSpec {
	return DistSpec{Type: d.Type, Params: maps.Clone(d.Params)}
}

// ClassSpec holds the arrival and treatment distributions of one class.
type ClassSpec struct {
	Arrival   DistSpec `yaml:"arrival" json:"arrival"`
	Treatment DistSpec `yaml:"treatment" json:"treatment"`
}

// Scenario is the run configuration of the ASU model. Time is in days.
//
// A Scenario is a value: every replication derives its own copy with
// WithRandomNumberSet and materializes its own seeded distributions with
// Sampling, so one Scenario can feed any number of parallel runs.
type Scenario struct {
	Beds    int                 `yaml:"beds" json:"beds"`
	Classes map[Class]ClassSpec `yaml:"classes" json:"classes"`
	// RandomNumberSet is the root seed. nil means unseeded.
	RandomNumberSet *int64 `yaml:"random_number_set,omitempty" json:"random_number_set,omitempty"`
}

// Base-case parameters.
const (
	DefaultBeds = 10
)

var (
	defaultIATMeans   = map[Class]float64{Stroke: 1.2, TIA: 9.5, Neuro: 3.5}
	defaultTreatMeans = map[Class]float64{Stroke: 7.4, TIA: 1.8, Neuro: 2.0}
	defaultTreatStds  = map[Class]float64{Stroke: 8.5, TIA: 2.3, Neuro: 2.5}
)

// DefaultScenario returns the base-case, unseeded scenario: exponential
// inter-arrival times and lognormal treatment times per class.
func DefaultScenario() Scenario {
	s := Scenario{Beds: DefaultBeds, Classes: make(map[Class]ClassSpec, len(Classes))}
	for _, c := range Classes {
		s.Classes[c] = ClassSpec{
			Arrival:   ExponentialSpec(defaultIATMeans[c]),
			Treatment: LognormalSpec(defaultTreatMeans[c], defaultTreatStds[c]),
		}
	}
	return s
}

// Clone returns a deep copy.
func (s Scenario) Clone() Scenario {
	out := Scenario{Beds: s.Beds, Classes: make(map[Class]ClassSpec, len(s.Classes))}
	for c, cs := range s.Classes {
		out.Classes[c] = ClassSpec{Arrival: cs.Arrival.clone(), Treatment: cs.Treatment.clone()}
	}
	if s.RandomNumberSet != nil {
		seed := *s.RandomNumberSet
		out.RandomNumberSet = &seed
	}
	return out
}

// WithRandomNumberSet returns a copy of s using the given root seed
// (nil for unseeded).
func (s Scenario) WithRandomNumberSet(seed *int64) Scenario {
	out := s.Clone()
	out.RandomNumberSet = nil
	if seed != nil {
		v := *seed
		out.RandomNumberSet = &v
	}
	return out
}

// Seeded reports whether the scenario carries a root seed.
func (s Scenario) Seeded() bool {
	return s.RandomNumberSet != nil
}

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Classes and distributions missing from the file keep their base case.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// scenarioFile is the on-disk form of a Scenario. Pointers tell an absent
// key apart from an explicit zero.
type scenarioFile struct {
	Beds            *int                `yaml:"beds"`
	Classes         map[Class]classFile `yaml:"classes"`
	RandomNumberSet *int64              `yaml:"random_number_set"`
}

type classFile struct {
	Arrival   *DistSpec `yaml:"arrival"`
	Treatment *DistSpec `yaml:"treatment"`
}

// ParseScenario parses a YAML scenario document on top of DefaultScenario
// and validates the result. A distribution given in the file replaces the
// base case whole, so it must name its type.
func ParseScenario(data []byte) (*Scenario, error) {
	var file scenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	s := DefaultScenario()
	if file.Beds != nil {
		s.Beds = *file.Beds
	}
	for c, cf := range file.Classes {
		if !IsValidClass(c) {
			return nil, fmt.Errorf("%w: unknown class %q; valid: stroke, tia, neuro", ErrInvalidParameter, c)
		}
		merged := s.Classes[c]
		if cf.Arrival != nil {
			if cf.Arrival.Type == "" {
				return nil, fmt.Errorf("%w: %s.arrival: distribution type is required", ErrInvalidParameter, c)
			}
			merged.Arrival = cf.Arrival.clone()
		}
		if cf.Treatment != nil {
			if cf.Treatment.Type == "" {
				return nil, fmt.Errorf("%w: %s.treatment: distribution type is required", ErrInvalidParameter, c)
			}
			merged.Treatment = cf.Treatment.clone()
		}
		s.Classes[c] = merged
	}
	s.RandomNumberSet = file.RandomNumberSet
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every parameter. All failures wrap ErrInvalidParameter.
func (s Scenario) Validate() error {
	if s.Beds < 1 {
		return fmt.Errorf("%w: beds must be >= 1, got %d", ErrInvalidParameter, s.Beds)
	}
	for c := range s.Classes {
		if !IsValidClass(c) {
			return fmt.Errorf("%w: unknown class %q; valid: stroke, tia, neuro", ErrInvalidParameter, c)
		}
	}
	for _, c := range Classes {
		cs, ok := s.Classes[c]
		if !ok {
			return fmt.Errorf("%w: class %q has no distributions", ErrInvalidParameter, c)
		}
		if err := validateDistSpec(string(c)+".arrival", cs.Arrival); err != nil {
			return err
		}
		if err := validateDistSpec(string(c)+".treatment", cs.Treatment); err != nil {
			return err
		}
	}
	return nil
}

func validateDistSpec(prefix string, d DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%w: %s: unknown distribution type %q; valid: exponential, lognormal, constant", ErrInvalidParameter, prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%w: %s.params.%s must be a finite number, got %f", ErrInvalidParameter, prefix, name, val)
		}
	}
	// Constructing with a throwaway seed runs the per-type parameter checks.
	if _, err := NewDistribution(d, 0); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidParameter, name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %f", ErrInvalidParameter, name, val)
	}
	return nil
}

// === Sampling ===

// ArrivalStream is the sub-stream label of a class's arrival distribution.
// Each distribution instance owns one labeled sub-stream of the root seed,
// so changing one class never perturbs another's draws.
func ArrivalStream(c Class) string { return "arrivals/" + string(c) }

// TreatmentStream is the sub-stream label of a class's treatment distribution.
func TreatmentStream(c Class) string { return "treatment/" + string(c) }

// Sampling is the set of concrete, seeded distributions of one model run.
type Sampling struct {
	Key        sim.SimulationKey
	Arrivals   map[Class]Distribution
	Treatments map[Class]Distribution
}

// Sampling validates s and materializes its distributions. An unseeded
// scenario draws a fresh random key on every call.
func (s Scenario) Sampling() (*Sampling, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	key := sim.RandomSimulationKey()
	if s.RandomNumberSet != nil {
		key = sim.NewSimulationKey(*s.RandomNumberSet)
	}
	rng := sim.NewPartitionedRNG(key)

	out := &Sampling{
		Key:        key,
		Arrivals:   make(map[Class]Distribution, len(Classes)),
		Treatments: make(map[Class]Distribution, len(Classes)),
	}
	for _, c := range Classes {
		cs := s.Classes[c]
		arr, err := NewDistribution(cs.Arrival, rng.SeedFor(ArrivalStream(c)))
		if err != nil {
			return nil, fmt.Errorf("%s.arrival: %w", c, err)
		}
		treat, err := NewDistribution(cs.Treatment, rng.SeedFor(TreatmentStream(c)))
		if err != nil {
			return nil, fmt.Errorf("%s.treatment: %w", c, err)
		}
		out.Arrivals[c] = arr
		out.Treatments[c] = treat
	}
	return out, nil
}
