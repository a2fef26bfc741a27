package chore

import "errors"

var (
	// ErrAlreadyScheduled is returned by Schedule when the chore is linked
	// into a scheduler (this one or any other).
	ErrAlreadyScheduled = errors.New("chore: already scheduled")

	// ErrNotScheduled is returned by Abort and AbortChore when the chore is
	// not owned by the scheduler being asked to remove it.
	ErrNotScheduled = errors.New("chore: not scheduled")
)

// Runner is the activation capability a chore carries. Activate performs one
// unit of periodic work; it must not block and must not call back into the
// owning scheduler's RunScheduler.
type Runner interface {
	Activate()
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func()

// Activate implements Runner.
func (f RunnerFunc) Activate() { f() }

const (
	// intervalMask bounds intervals to 28 bits (~74.5 hours) so that a
	// target time can never outrun the wrap guard's correction range.
	intervalMask = 0x0fffffff

	// targetMask keeps the low 30 significant bits of a target time. The
	// top two bits are guard headroom: the wrap guard clears them when it
	// rebases the ring.
	targetMask = 0x3fffffff

	// wrapSpan is the rebase quantum, the midpoint of the 32-bit range.
	wrapSpan = uint32(1) << 30

	// graceMS is the dispatch grace threshold: a chore due within 1 ms is
	// treated as due now, so it is not missed by the current tick.
	graceMS = 1
)

// Chore is a recurring unit of work. It is an intrusive node: the scheduler
// links it directly into its ring, so a chore can belong to at most one
// scheduler at a time.
//
// The zero value is a detached chore with a zero interval; the interval must
// be set before scheduling for the chore to recur meaningfully.
type Chore struct {
	runner Runner

	owner *Scheduler

	// target is the next due time in scheduler-relative milliseconds.
	// Meaningful only while linked.
	target   uint32
	interval uint32

	next, prev *Chore
}

// NewChore returns a detached chore with the given recurrence interval in
// milliseconds. The interval is masked to 28 bits.
func NewChore(intervalMS uint32, r Runner) *Chore {
	return &Chore{runner: r, interval: intervalMS & intervalMask}
}

// SetInterval stores a new recurrence interval in milliseconds, masked to 28
// bits. It does not move the chore within its current schedule; the new
// interval takes effect on the next reschedule.
func (c *Chore) SetInterval(ms uint32) { c.interval = ms & intervalMask }

// Interval returns the stored recurrence interval in milliseconds.
func (c *Chore) Interval() uint32 { return c.interval }

// Scheduled reports whether the chore is currently owned by a scheduler.
func (c *Chore) Scheduled() bool { return c.owner != nil }

// Target returns the chore's target time in scheduler-relative milliseconds.
// It is meaningful only while the chore is owned by a scheduler; compare it
// against that scheduler's Now.
func (c *Chore) Target() uint32 { return c.target }

// Abort removes the chore from whichever scheduler currently owns it.
// It returns ErrNotScheduled if the chore is detached. Routing through the
// owner makes cross-scheduler misuse structurally impossible.
func (c *Chore) Abort() error {
	if c.owner == nil {
		return ErrNotScheduled
	}
	return c.owner.AbortChore(c)
}

func (c *Chore) activate() {
	if c.runner != nil {
		c.runner.Activate()
	}
}

// insertBefore links c into the ring immediately before at.
func (c *Chore) insertBefore(at *Chore) {
	c.next = at
	c.prev = at.prev
	at.prev.next = c
	at.prev = c
}

// unlink removes c from the ring. Ownership is not touched here; that is the
// scheduler's business.
func (c *Chore) unlink() {
	c.prev.next = c.next
	c.next.prev = c.prev
	c.next = nil
	c.prev = nil
}

func (c *Chore) linked() bool { return c.next != nil }
