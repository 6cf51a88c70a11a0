package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/asu-sim/sim/replication"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

type runOptions struct {
	commonFlags
	traceLevel string // Patient trace verbosity
	traceFile  string // Write per-patient event records to this JSON file
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a replication set and print one row per replication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute(cmd)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.traceLevel, "trace-level", string(trace.TraceLevelNone), "Patient trace level (none, patients); patients is implied by --trace-file")
	cmd.Flags().StringVar(&opts.traceFile, "trace-file", "", "Write every patient's arrival, admission and discharge events to this JSON file")
	return cmd
}

func (o *runOptions) execute(cmd *cobra.Command) error {
	if err := setUp(); err != nil {
		return err
	}
	scn, err := o.scenario.build(cmd)
	if err != nil {
		return err
	}
	cfg := o.run.config()
	level, err := o.resolveTraceLevel(cmd)
	if err != nil {
		return err
	}

	runnerOpts, stop, err := observe(metricsAddr)
	if err != nil {
		return err
	}
	defer stop()
	runnerOpts = append(runnerOpts, replication.WithTrace(level))
	runner, err := replication.NewRunner(cfg, runnerOpts...)
	if err != nil {
		return err
	}

	logrus.Infof("Starting %d replications: beds=%d, period=%.1f, warm-up=%.1f", cfg.Replications, scn.Beds, cfg.CollectionPeriod, cfg.WarmUp)
	startTime := time.Now()
	table, err := runner.Run(context.Background(), scn)
	if err != nil {
		return err
	}
	logrus.Infof("Replications complete in %s", time.Since(startTime))

	if o.traceFile != "" {
		if err := writeTraceFile(o.traceFile, table); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	return writeResults(cmd.OutOrStdout(), output, table)
}

// resolveTraceLevel checks --trace-level against --trace-file. A trace file
// without an explicit level records patients.
func (o *runOptions) resolveTraceLevel(cmd *cobra.Command) (trace.TraceLevel, error) {
	if !trace.IsValidTraceLevel(o.traceLevel) {
		return "", fmt.Errorf("%w: unknown trace level %q; valid: none, patients", workload.ErrInvalidParameter, o.traceLevel)
	}
	level := trace.TraceLevel(o.traceLevel)
	if o.traceFile != "" && !cmd.Flags().Changed("trace-level") {
		level = trace.TraceLevelPatients
	}
	switch {
	case level == trace.TraceLevelNone && o.traceFile != "":
		return "", fmt.Errorf("%w: --trace-file needs --trace-level patients", workload.ErrInvalidParameter)
	case level != trace.TraceLevelNone && o.traceFile == "":
		return "", fmt.Errorf("%w: --trace-level %s needs --trace-file", workload.ErrInvalidParameter, level)
	}
	return level, nil
}
