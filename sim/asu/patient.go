package asu

import (
	"fmt"

	"github.com/inference-sim/asu-sim/sim/workload"
)

// Patient is one entry in a model's patient log.
//
// QueueTime and TreatmentDuration are set exactly once, when a bed is granted;
// a patient still waiting at the horizon has Admitted == false.
type Patient struct {
	ID                int            `json:"id"`
	Class             workload.Class `json:"class"`
	ArrivalTime       float64        `json:"arrival_time"`
	QueueTime         float64        `json:"queue_time"`
	TreatmentDuration float64        `json:"treatment_duration"`
	Admitted          bool           `json:"admitted"`
	Discharged        bool           `json:"discharged"`
	DischargeTime     float64        `json:"discharge_time,omitempty"`
}

// admit records the bed grant at now and the sampled treatment duration.
func (p *Patient) admit(now, duration float64) {
	if p.Admitted {
		panic(fmt.Sprintf("patient %d admitted twice", p.ID))
	}
	p.Admitted = true
	p.QueueTime = now - p.ArrivalTime
	p.TreatmentDuration = duration
}

func (p *Patient) discharge(now float64) {
	p.Discharged = true
	p.DischargeTime = now
}

// Wait returns the patient's queue time, or for a patient still waiting at
// horizon the time it has waited so far.
func (p *Patient) Wait(horizon float64) float64 {
	if p.Admitted {
		return p.QueueTime
	}
	return max(horizon-p.ArrivalTime, 0)
}

// Sojourn returns queue time plus treatment time. ok is false until the
// patient has been discharged.
func (p *Patient) Sojourn() (sojourn float64, ok bool) {
	if !p.Discharged {
		return 0, false
	}
	return p.QueueTime + p.TreatmentDuration, true
}

func (p *Patient) String() string {
	return fmt.Sprintf("Patient{ID: %d, Class: %s, Arrival: %.4f, Queue: %.4f, Treatment: %.4f}",
		p.ID, p.Class, p.ArrivalTime, p.QueueTime, p.TreatmentDuration)
}
