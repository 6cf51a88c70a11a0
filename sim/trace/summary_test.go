package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPatients})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.Arrivals != 0 || summary.Admissions != 0 || summary.Discharges != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.MeanQueueTime != 0 || summary.MaxQueueTime != 0 {
		t.Error("expected 0 queue times")
	}
	if len(summary.ByClass) != 0 {
		t.Error("expected empty class distribution")
	}
}

func TestSummarize_NilTrace_Safe(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil || summary.ByClass == nil {
		t.Fatal("expected a usable zero summary for nil trace")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with two patients, one still waiting
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelPatients})
	st.Record(PatientRecord{PatientID: 1, Class: "stroke", Kind: EventArrival, Clock: 0.5, BedsInUse: 1})
	st.Record(PatientRecord{PatientID: 1, Class: "stroke", Kind: EventAdmitted, Clock: 0.5, QueueTime: 0, BedsInUse: 1})
	st.Record(PatientRecord{PatientID: 2, Class: "tia", Kind: EventArrival, Clock: 0.7, BedsInUse: 1, QueueLength: 1})
	st.Record(PatientRecord{PatientID: 1, Class: "stroke", Kind: EventDischarged, Clock: 1.0, BedsInUse: 1})
	st.Record(PatientRecord{PatientID: 2, Class: "tia", Kind: EventAdmitted, Clock: 1.0, QueueTime: 0.3, BedsInUse: 1})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts and queue statistics reflect the records
	if summary.Arrivals != 2 || summary.Admissions != 2 || summary.Discharges != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/2/1", summary.Arrivals, summary.Admissions, summary.Discharges)
	}
	if summary.ByClass["stroke"] != 1 || summary.ByClass["tia"] != 1 {
		t.Errorf("by class = %v", summary.ByClass)
	}
	if summary.MeanQueueTime != 0.15 {
		t.Errorf("mean queue time = %v, want 0.15", summary.MeanQueueTime)
	}
	if summary.MaxQueueTime != 0.3 {
		t.Errorf("max queue time = %v, want 0.3", summary.MaxQueueTime)
	}
	if summary.PeakQueue != 1 || summary.PeakBedsInUse != 1 {
		t.Errorf("peaks = %d/%d, want 1/1", summary.PeakQueue, summary.PeakBedsInUse)
	}
}
