package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Arrivals      int
	Admissions    int
	Discharges    int
	ByClass       map[string]int // class → arrivals
	MeanQueueTime float64        // over admission records
	MaxQueueTime  float64
	PeakQueue     int
	PeakBedsInUse int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ByClass: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	totalQueue := 0.0
	for _, r := range st.Records {
		switch r.Kind {
		case EventArrival:
			summary.Arrivals++
			summary.ByClass[r.Class]++
		case EventAdmitted:
			summary.Admissions++
			totalQueue += r.QueueTime
			if r.QueueTime > summary.MaxQueueTime {
				summary.MaxQueueTime = r.QueueTime
			}
		case EventDischarged:
			summary.Discharges++
		}
		summary.PeakQueue = max(summary.PeakQueue, r.QueueLength)
		summary.PeakBedsInUse = max(summary.PeakBedsInUse, r.BedsInUse)
	}
	if summary.Admissions > 0 {
		summary.MeanQueueTime = totalQueue / float64(summary.Admissions)
	}

	return summary
}
