package chore

// Scheduler owns a ring of chores ordered by ascending target time. The
// scheduler is itself the ring's anchor node: its embedded chore is the
// sentinel the ring is threaded through, and it is never dispatched.
//
// All methods must be called from a single logical thread of control; see
// the package documentation.
type Scheduler struct {
	// ring is the anchor node. ring.next is the earliest-due chore.
	ring Chore

	clock Clock

	// base is the external clock reading captured at construction.
	// rebased accumulates the wrap guard's corrections; both participate in
	// now() with plain wrapping uint32 arithmetic.
	base    uint32
	rebased uint32
	wraps   uint32

	guard Chore
}

// New returns a scheduler reading time from clock. A nil clock selects
// WallClock. The internal wrap guard chore is registered immediately, armed
// at the 2^30 ms boundary.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = WallClock
	}
	s := &Scheduler{clock: clock}
	s.ring.next = &s.ring
	s.ring.prev = &s.ring
	s.base = clock()

	// The guard's target is fixed at the wrap boundary, not derived from
	// the clock, so it always sorts behind every ordinary chore.
	s.guard.runner = RunnerFunc(s.rebase)
	s.guard.target = wrapSpan
	s.insert(&s.guard)
	return s
}

// Now returns the current scheduler-relative time in milliseconds. The
// subtraction chain wraps correctly even when the raw counter itself wraps
// at 2^32.
func (s *Scheduler) Now() uint32 {
	return s.clock() - s.base - s.rebased
}

// Schedule enters a detached chore into the ring. The chore's target time is
// set to now plus its interval. Scheduling a chore that is already owned by
// any scheduler fails with ErrAlreadyScheduled and changes nothing.
func (s *Scheduler) Schedule(c *Chore) error {
	if c.owner != nil {
		return ErrAlreadyScheduled
	}
	c.target = s.Now() + c.interval
	s.insert(c)
	return nil
}

// AbortChore unlinks a chore from this scheduler's ring and clears its
// ownership. It fails with ErrNotScheduled if the chore is detached or owned
// by a different scheduler.
func (s *Scheduler) AbortChore(c *Chore) error {
	if c.owner != s {
		return ErrNotScheduled
	}
	// Mid-dispatch the chore is owned but briefly unlinked.
	if c.linked() {
		c.unlink()
	}
	c.owner = nil
	return nil
}

// RunScheduler performs one dispatch pass: it activates every chore whose
// target time has passed, earliest first, rescheduling each from its
// previous target time. It returns once the earliest remaining chore is not
// yet due. A rescheduled chore whose new target is still due fires again
// within the same pass, so a zero-interval chore re-fires until the clock
// advances; callers own that trade-off.
func (s *Scheduler) RunScheduler() {
	for s.ring.next != &s.ring {
		// Signed delta keeps "already due" robust across the wrap
		// boundary without extra branching.
		head := s.ring.next
		delta := int32(head.target - s.Now())
		if delta > graceMS {
			return
		}

		head.unlink()
		if head.owner == nil {
			// Orphaned: aborted between insertion and activation.
			// Drop without activating.
			continue
		}
		head.activate()
		s.reschedule(head)
	}
}

// reschedule re-enters a just-activated chore, advancing its target by its
// interval from the previous target so lateness never accumulates. A chore
// orphaned during its own activation is dropped instead.
func (s *Scheduler) reschedule(c *Chore) {
	if c.owner != s {
		return
	}
	c.target += c.interval
	s.insert(c)
}

// insert links c in ascending target-time order: immediately before the
// first node with a strictly greater target, or at the tail. The strict
// comparison keeps equal-time chores in insertion order.
func (s *Scheduler) insert(c *Chore) {
	c.owner = s
	for n := s.ring.next; n != &s.ring; n = n.next {
		if c.target < n.target {
			c.insertBefore(n)
			return
		}
	}
	c.insertBefore(&s.ring)
}

// Len returns the number of linked chores, including the internal wrap
// guard.
func (s *Scheduler) Len() int {
	n := 0
	for c := s.ring.next; c != &s.ring; c = c.next {
		n++
	}
	return n
}

// Close detaches every linked chore, the wrap guard included, leaving them
// all unowned. The scheduler must not be used afterwards. Callers are
// responsible for not closing while an activation is in flight.
func (s *Scheduler) Close() {
	for s.ring.next != &s.ring {
		c := s.ring.next
		c.unlink()
		c.owner = nil
	}
}
