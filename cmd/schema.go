package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/inference-sim/asu-sim/sim/workload"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of --scenario files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(workload.ScenarioSchema())
		},
	}
}
