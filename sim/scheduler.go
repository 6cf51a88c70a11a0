package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Scheduler is the single-threaded cooperative DES kernel: it owns the
// virtual clock and the ordered set of pending wake-ups.
type Scheduler struct {
	clock    float64
	queue    *eventHeap
	nextSeq  uint64
	executed uint64
	dropped  int
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: newEventHeap(),
	}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() float64 {
	return s.clock
}

// ScheduleAfter enqueues a wake-up of p at Now()+delay.
// A negative or NaN delay is a ContractViolation.
func (s *Scheduler) ScheduleAfter(delay float64, p Process) {
	if math.IsNaN(delay) || delay < 0 {
		violate("ScheduleAfter", "delay must be >= 0, got %v", delay)
	}
	if p == nil {
		violate("ScheduleAfter", "process must not be nil")
	}
	s.nextSeq++
	s.queue.schedule(event{time: s.clock + delay, seq: s.nextSeq, target: p})
}

// Start schedules p to run at the current instant, after every wake-up
// already pending for this instant.
func (s *Scheduler) Start(p Process) {
	s.ScheduleAfter(0, p)
}

// RunUntil resumes pending processes in (time, submission) order until the
// queue is empty or the next wake-up lies beyond horizon. Wake-ups beyond
// horizon are discarded; their processes are abandoned. On return the clock
// reads horizon.
func (s *Scheduler) RunUntil(horizon float64) {
	if math.IsNaN(horizon) || horizon < s.clock {
		violate("RunUntil", "horizon %v is before the clock %v", horizon, s.clock)
	}
	for {
		next, ok := s.queue.peek()
		if !ok || next.time > horizon {
			break
		}
		ev, _ := s.queue.popNext()
		// the heap never yields a wake-up earlier than the clock
		if ev.time < s.clock {
			violate("RunUntil", "clock went backwards: %v < %v", ev.time, s.clock)
		}
		s.clock = ev.time
		s.executed++
		logrus.Tracef("[t=%010.4f] resuming %T", s.clock, ev.target)
		ev.target.Resume(s)
	}
	s.dropped += s.queue.discard()
	if !math.IsInf(horizon, 1) {
		s.clock = horizon
	}
	logrus.Debugf("[t=%010.4f] run ended: %d wake-ups executed, %d abandoned", s.clock, s.executed, s.dropped)
}

// Pending returns the number of wake-ups waiting to run.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Executed returns the number of wake-ups run so far.
func (s *Scheduler) Executed() uint64 {
	return s.executed
}

// Abandoned returns the number of wake-ups discarded at a horizon.
func (s *Scheduler) Abandoned() int {
	return s.dropped
}
