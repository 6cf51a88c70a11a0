package trace

// TraceLevel controls the verbosity of patient tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPatients captures arrival, admission and discharge of every patient.
	TraceLevelPatients TraceLevel = "patients"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelPatients: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelPatients
}

// SimulationTrace collects patient records during one model run.
type SimulationTrace struct {
	Config  TraceConfig
	Records []PatientRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		Records: make([]PatientRecord, 0),
	}
}

// Record appends a patient record. A nil trace or a disabled level drops it.
func (st *SimulationTrace) Record(record PatientRecord) {
	if st == nil || !st.Config.Enabled() {
		return
	}
	st.Records = append(st.Records, record)
}

// ForPatient returns the records of one patient in recording order.
func (st *SimulationTrace) ForPatient(id int) []PatientRecord {
	if st == nil {
		return nil
	}
	var out []PatientRecord
	for _, r := range st.Records {
		if r.PatientID == id {
			out = append(out, r)
		}
	}
	return out
}
