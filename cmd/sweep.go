package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/inference-sim/asu-sim/sim/replication"
)

type sweepOptions struct {
	commonFlags
	sweep replication.SweepConfig
}

func newSweepCmd() *cobra.Command {
	opts := &sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find the smallest bed count that admits the target share of patients within 4 hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd)
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&opts.sweep.MinBeds, "min-beds", 5, "Smallest bed count to try")
	cmd.Flags().IntVar(&opts.sweep.MaxBeds, "max-beds", 20, "Largest bed count to try")
	cmd.Flags().Float64Var(&opts.sweep.TargetPct, "target-pct", 90, "Required mean percentage of patients admitted within 4 hours")
	return cmd
}

func (o *sweepOptions) execute(cmd *cobra.Command) error {
	if err := setUp(); err != nil {
		return err
	}
	if err := o.sweep.Validate(); err != nil {
		return err
	}
	scn, err := o.scenario.build(cmd)
	if err != nil {
		return err
	}

	runnerOpts, stop, err := observe(metricsAddr)
	if err != nil {
		return err
	}
	defer stop()
	runner, err := replication.NewRunner(o.run.config(), runnerOpts...)
	if err != nil {
		return err
	}
	res, err := runner.Sweep(context.Background(), scn, o.sweep)
	if err != nil {
		return err
	}
	return writeSweep(cmd.OutOrStdout(), output, res)
}
