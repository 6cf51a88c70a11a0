package sim

// Process is a resumable unit of work driven by the Scheduler.
//
// Resume runs without interruption until the process either schedules its
// next wake-up (Scheduler.ScheduleAfter), parks on a Resource, or finishes.
// Local state that must survive a suspension lives on the implementing type.
type Process interface {
	Resume(s *Scheduler)
}

// ProcessFunc adapts a plain function to Process. Useful for single-step
// callbacks and tests.
type ProcessFunc func(s *Scheduler)

// Resume calls f(s).
func (f ProcessFunc) Resume(s *Scheduler) { f(s) }

// event is a pending wake-up.
// Ordering: time ascending, then insertion sequence ascending.
type event struct {
	time   float64
	seq    uint64
	target Process
}

func (e event) before(o event) bool {
	if e.time != o.time {
		return e.time < o.time
	}
	return e.seq < o.seq
}
