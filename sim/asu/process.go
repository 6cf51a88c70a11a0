package asu

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/asu-sim/sim"
	"github.com/inference-sim/asu-sim/sim/trace"
	"github.com/inference-sim/asu-sim/sim/workload"
)

// arrivalGenerator is the infinite arrival loop of one class: sample a gap,
// sleep for it, create a patient, repeat.
type arrivalGenerator struct {
	model   *Model
	class   workload.Class
	gaps    workload.Distribution
	waiting bool // true while sleeping towards the next arrival
}

func (g *arrivalGenerator) Resume(s *sim.Scheduler) {
	if g.waiting {
		g.model.arrive(s, g.class)
	}
	g.waiting = true
	s.ScheduleAfter(g.gaps.Sample(), g)
}

type treatmentStage int

const (
	stageRequestBed treatmentStage = iota
	stageAdmit
	stageDischarge
)

// treatment is the pathway of one patient: acquire a bed, hold it for a
// sampled treatment time, release it.
type treatment struct {
	model     *Model
	patient   *Patient
	durations workload.Distribution
	lease     *sim.Lease
	stage     treatmentStage
}

func (t *treatment) Resume(s *sim.Scheduler) {
	// The bed is released on every exit from the pathway, including a
	// panic in a later stage; suspensions are not exits.
	suspended := false
	defer func() {
		if !suspended {
			t.lease.Release()
		}
	}()

	switch t.stage {
	case stageRequestBed:
		t.lease = t.model.beds.Request(t)
		t.stage = stageAdmit
		if !t.lease.Held() {
			suspended = true
			return
		}
		fallthrough

	case stageAdmit:
		t.patient.admit(s.Now(), t.durations.Sample())
		logrus.Debugf("[t=%010.4f] patient %d (%s) admitted; queue time %.4f", s.Now(), t.patient.ID, t.patient.Class, t.patient.QueueTime)
		t.model.record(s, t.patient, trace.EventAdmitted)
		t.stage = stageDischarge
		s.ScheduleAfter(t.patient.TreatmentDuration, t)
		suspended = true

	case stageDischarge:
		t.lease.Release()
		t.patient.discharge(s.Now())
		t.model.discharged++
		t.model.record(s, t.patient, trace.EventDischarged)
	}
}
