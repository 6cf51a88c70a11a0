package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inference-sim/asu-sim/sim/replication"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// classFlags are the per-class distribution parameters, in days.
type classFlags struct {
	iat       float64 // Mean inter-arrival time (exponential)
	treatMean float64 // Mean treatment time (lognormal)
	treatStd  float64 // Stdev of treatment time (lognormal)
}

// scenarioFlags build a workload.Scenario. Values from --scenario are the
// base; flags the user set explicitly override them.
type scenarioFlags struct {
	path     string
	beds     int
	seed     int64
	unseeded bool
	classes  map[workload.Class]*classFlags
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	base := workload.DefaultScenario()
	cmd.Flags().StringVar(&f.path, "scenario", "", "YAML scenario file; explicitly set flags override its values")
	cmd.Flags().IntVar(&f.beds, "beds", base.Beds, "Number of ASU beds")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Root random number set; replication i uses seed+i-1")
	cmd.Flags().BoolVar(&f.unseeded, "unseeded", false, "Draw fresh random numbers for every replication")

	f.classes = make(map[workload.Class]*classFlags, len(workload.Classes))
	for _, c := range workload.Classes {
		cf := &classFlags{}
		spec := base.Classes[c]
		cmd.Flags().Float64Var(&cf.iat, string(c)+"-iat", spec.Arrival.Params["mean"], fmt.Sprintf("Mean days between %s arrivals", c))
		cmd.Flags().Float64Var(&cf.treatMean, string(c)+"-treat-mean", spec.Treatment.Params["mean"], fmt.Sprintf("Mean %s treatment days", c))
		cmd.Flags().Float64Var(&cf.treatStd, string(c)+"-treat-std", spec.Treatment.Params["std_dev"], fmt.Sprintf("Stdev of %s treatment days", c))
		f.classes[c] = cf
	}
}

// build returns the scenario to run and validates it.
func (f *scenarioFlags) build(cmd *cobra.Command) (workload.Scenario, error) {
	scn := workload.DefaultScenario()
	if f.path != "" {
		loaded, err := workload.LoadScenario(f.path)
		if err != nil {
			return workload.Scenario{}, err
		}
		scn = *loaded
	}

	changed := cmd.Flags().Changed
	if changed("beds") {
		scn.Beds = f.beds
	}
	for _, c := range workload.Classes {
		cf := f.classes[c]
		spec := scn.Classes[c]
		if changed(string(c) + "-iat") {
			spec.Arrival = workload.ExponentialSpec(cf.iat)
		}
		meanSet, stdSet := changed(string(c)+"-treat-mean"), changed(string(c)+"-treat-std")
		if meanSet || stdSet {
			mean, std := cf.treatMean, cf.treatStd
			// Keep the file's value for whichever half was not given.
			if spec.Treatment.Type == workload.DistLognormal {
				if !meanSet {
					mean = spec.Treatment.Params["mean"]
				}
				if !stdSet {
					std = spec.Treatment.Params["std_dev"]
				}
			}
			spec.Treatment = workload.LognormalSpec(mean, std)
		}
		scn.Classes[c] = spec
	}

	switch {
	case f.unseeded && changed("seed"):
		return workload.Scenario{}, fmt.Errorf("%w: --seed and --unseeded are mutually exclusive", workload.ErrInvalidParameter)
	case f.unseeded:
		scn = scn.WithRandomNumberSet(nil)
	case changed("seed"):
		scn = scn.WithRandomNumberSet(&f.seed)
	}

	if err := scn.Validate(); err != nil {
		return workload.Scenario{}, err
	}
	return scn, nil
}

// runFlags build a replication.RunConfig.
type runFlags struct {
	cfg replication.RunConfig
}

func (f *runFlags) register(cmd *cobra.Command) {
	def := replication.DefaultRunConfig()
	cmd.Flags().IntVar(&f.cfg.Replications, "reps", def.Replications, "Number of independent replications")
	cmd.Flags().Float64Var(&f.cfg.CollectionPeriod, "period", def.CollectionPeriod, "Results collection period in days")
	cmd.Flags().Float64Var(&f.cfg.WarmUp, "warm-up", def.WarmUp, "Warm-up days simulated before results collection")
	cmd.Flags().BoolVar(&f.cfg.ExcludeWarmUp, "exclude-warm-up", def.ExcludeWarmUp, "Leave patients arriving during the warm-up out of the statistics")
	cmd.Flags().IntVar(&f.cfg.Jobs, "jobs", def.Jobs, "Replications run in parallel (0 = GOMAXPROCS)")
}

func (f *runFlags) config() replication.RunConfig {
	return f.cfg
}
