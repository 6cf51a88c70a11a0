package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/asu-sim/sim/asu"
	"github.com/inference-sim/asu-sim/sim/replication"
	"github.com/inference-sim/asu-sim/sim/trace"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func isValidFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatYAML
}

// runReport is the structured form of a run's results.
type runReport struct {
	Rows    []replication.Row           `json:"rows" yaml:"rows"`
	Summary []replication.MetricSummary `json:"summary" yaml:"summary"`
}

// writeResults renders one row per replication followed by the
// cross-replication summary.
func writeResults(w io.Writer, format string, table *replication.ResultsTable) error {
	switch format {
	case formatJSON, formatYAML:
		return encode(w, format, runReport{Rows: table.Rows, Summary: table.Aggregate()})
	}

	cols := table.Columns()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "rep\t")
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for _, row := range table.Rows {
		fmt.Fprintf(tw, "%d\t", row.Rep)
		values := row.Values()
		for _, c := range cols {
			fmt.Fprintf(tw, "%s\t", formatMetric(values[c]))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return writeAggregate(w, table.Aggregate())
}

func writeAggregate(w io.Writer, agg []replication.MetricSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "metric\tn\tmean\tstd_dev\t95% CI")
	for _, m := range agg {
		ci := "undefined"
		if m.CILow.Defined {
			ci = fmt.Sprintf("[%s, %s]", m.CILow, m.CIHigh)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", m.Name, m.N, m.Mean, m.StdDev, ci)
	}
	return tw.Flush()
}

func writeSweep(w io.Writer, format string, res *replication.SweepResult) error {
	if format != formatTable {
		return encode(w, format, res)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "beds\tmean %s\t95%% CI\tmeets %.1f%%\n", asu.MetricWithinTarget, res.Target)
	for _, p := range res.Points {
		ci := "undefined"
		if p.WithinTarget.CILow.Defined {
			ci = fmt.Sprintf("[%s, %s]", p.WithinTarget.CILow, p.WithinTarget.CIHigh)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%v\n", p.Beds, p.WithinTarget.Mean, ci, p.MeetsTarget)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.Recommended == 0 {
		_, err := fmt.Fprintln(w, "\nNo bed count in the range meets the target.")
		return err
	}
	_, err := fmt.Fprintf(w, "\nRecommended beds: %d\n", res.Recommended)
	return err
}

// formatMetric renders counts without decimals.
func formatMetric(m asu.Metric) string {
	if m.Defined && m.Value == float64(int64(m.Value)) {
		return strconv.FormatInt(int64(m.Value), 10)
	}
	return m.String()
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// tracedReplication is one replication's patient events in a trace file.
type tracedReplication struct {
	Rep     int                   `json:"rep"`
	Summary *trace.TraceSummary   `json:"summary"`
	Records []trace.PatientRecord `json:"records"`
}

func writeTraceFile(path string, table *replication.ResultsTable) error {
	out := make([]tracedReplication, 0, len(table.Rows))
	for _, row := range table.Rows {
		if row.Trace == nil {
			continue
		}
		out = append(out, tracedReplication{Rep: row.Rep, Summary: trace.Summarize(row.Trace), Records: row.Trace.Records})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
