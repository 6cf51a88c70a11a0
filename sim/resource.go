// Implements the Resource, a capacity-limited pool of identical units with a
// strict FIFO wait list.

package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

type leaseState int

const (
	leaseWaiting leaseState = iota
	leaseHeld
	leaseReleased
)

// Lease is one request for a unit of a Resource. It is held once granted
// and must be released exactly once; Release on an already-released lease
// is a no-op, so a deferred Release next to an explicit one is safe.
type Lease struct {
	res         *Resource
	holder      Process
	state       leaseState
	requestedAt float64
	grantedAt   float64
}

// Held reports whether the lease currently owns a unit.
func (l *Lease) Held() bool {
	return l != nil && l.state == leaseHeld
}

// RequestedAt returns the virtual time the request was submitted.
func (l *Lease) RequestedAt() float64 {
	return l.requestedAt
}

// GrantedAt returns the virtual time the unit was granted. Only meaningful
// once the lease has been held.
func (l *Lease) GrantedAt() float64 {
	return l.grantedAt
}

// Release returns the unit, or withdraws the request if it is still queued.
// Safe on a nil lease.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	switch l.state {
	case leaseHeld:
		l.state = leaseReleased
		l.res.release()
	case leaseWaiting:
		l.state = leaseReleased
		l.res.withdraw(l)
	}
}

// Resource models C identical units (beds). Requests are granted strictly
// in submission order; there is no priority and no preemption.
type Resource struct {
	name      string
	sched     *Scheduler
	capacity  int
	inUse     int
	waitQ     []*Lease // FIFO queue of requests waiting for a unit
	peakQueue int
	grants    uint64
}

// NewResource creates a Resource with the given capacity bound to s.
// A capacity below 1 is a ContractViolation; scenarios validate it earlier.
func NewResource(s *Scheduler, name string, capacity int) *Resource {
	if capacity < 1 {
		violate("NewResource", "capacity must be >= 1, got %d", capacity)
	}
	return &Resource{
		name:     name,
		sched:    s,
		capacity: capacity,
	}
}

// Request asks for one unit on behalf of p.
//
// If a unit is free the returned lease is already held and p simply keeps
// running. Otherwise the lease is appended to the wait list, p must return
// from Resume, and the scheduler resumes p at the instant a unit is handed
// to it.
func (r *Resource) Request(p Process) *Lease {
	l := &Lease{res: r, holder: p, requestedAt: r.sched.Now()}
	if r.inUse < r.capacity {
		r.grant(l)
		return l
	}
	r.waitQ = append(r.waitQ, l)
	r.peakQueue = max(r.peakQueue, len(r.waitQ))
	logrus.Debugf("[t=%010.4f] %s full (%d/%d), queued request #%d", r.sched.Now(), r.name, r.inUse, r.capacity, len(r.waitQ))
	return l
}

func (r *Resource) grant(l *Lease) {
	r.inUse++
	if r.inUse > r.capacity {
		violate("Resource.grant", "%s in use %d exceeds capacity %d", r.name, r.inUse, r.capacity)
	}
	l.state = leaseHeld
	l.grantedAt = r.sched.Now()
	r.grants++
}

func (r *Resource) release() {
	if r.inUse == 0 {
		violate("Resource.release", "%s released with no unit in use", r.name)
	}
	r.inUse--
	if len(r.waitQ) == 0 {
		return
	}
	head := r.waitQ[0]
	r.waitQ[0] = nil
	r.waitQ = r.waitQ[1:]
	r.grant(head)
	logrus.Debugf("[t=%010.4f] %s handed to queued request (waited %.4f)", r.sched.Now(), r.name, head.grantedAt-head.requestedAt)
	r.sched.Start(head.holder)
}

func (r *Resource) withdraw(l *Lease) {
	i := slices.Index(r.waitQ, l)
	if i < 0 {
		violate("Resource.withdraw", "%s has no queued request %p", r.name, l)
	}
	r.waitQ = slices.Delete(r.waitQ, i, i+1)
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return r.name
}

// Capacity returns the fixed number of units.
func (r *Resource) Capacity() int {
	return r.capacity
}

// InUse returns the number of units currently held.
func (r *Resource) InUse() int {
	return r.inUse
}

// QueueLen returns the number of requests waiting.
func (r *Resource) QueueLen() int {
	return len(r.waitQ)
}

// PeakQueueLen returns the longest wait list seen.
func (r *Resource) PeakQueueLen() int {
	return r.peakQueue
}

// Grants returns the number of units handed out so far.
func (r *Resource) Grants() uint64 {
	return r.grants
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s[%d/%d, %d waiting]", r.name, r.inUse, r.capacity, len(r.waitQ))
}
