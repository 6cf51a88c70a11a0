package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by every subcommand
	logLevel    string // Log verbosity level
	output      string // Results format: table, json or yaml
	metricsAddr string // Listen address of the /metrics endpoint; empty disables it
)

// rootCmd is the base command for the CLI
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "asu-sim",
		Short:         "Discrete-event simulator for acute stroke unit bed capacity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	root.PersistentFlags().StringVarP(&output, "output", "o", formatTable, "Results format (table, json, yaml)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")
	root.AddCommand(newRunCmd(), newSweepCmd(), newSchemaCmd())
	return root
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commonFlags are the per-command flags of every subcommand that runs
// replications. Each command owns its set so explicit overrides are read
// from that command's flags alone.
type commonFlags struct {
	scenario scenarioFlags
	run      runFlags
}

func (f *commonFlags) register(cmd *cobra.Command) {
	f.scenario.register(cmd)
	f.run.register(cmd)
}

// setUp applies the log level and validates the output format.
func setUp() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	if !isValidFormat(output) {
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	}
	return nil
}
