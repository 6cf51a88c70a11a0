// Package trace provides per-patient event recording for a single model run.
// It depends on neither sim/ nor sim/asu/ and holds plain data only.
package trace

// EventKind names the point in a patient's pathway a record was taken at.
type EventKind string

const (
	// EventArrival is recorded when a patient is created.
	EventArrival EventKind = "arrival"
	// EventAdmitted is recorded when a bed is granted.
	EventAdmitted EventKind = "admitted"
	// EventDischarged is recorded when treatment ends and the bed is released.
	EventDischarged EventKind = "discharged"
)

// PatientRecord captures one event in a patient's pathway.
type PatientRecord struct {
	PatientID int       `json:"patient_id"`
	Class     string    `json:"class"`
	Kind      EventKind `json:"kind"`
	Clock     float64   `json:"clock"`
	// QueueTime is set on admission records, TreatmentTime on admission and
	// discharge records.
	QueueTime     float64 `json:"queue_time,omitempty"`
	TreatmentTime float64 `json:"treatment_time,omitempty"`
	BedsInUse     int     `json:"beds_in_use"`
	QueueLength   int     `json:"queue_length"`
}
