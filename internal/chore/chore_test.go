package chore

import "testing"

func TestIntervalMasked(t *testing.T) {
	t.Parallel()
	c := NewChore(0xffffffff, nil)
	if got := c.Interval(); got != intervalMask {
		t.Fatalf("Interval() = %#x, want %#x", got, uint32(intervalMask))
	}
	c.SetInterval(0x10000001)
	if got := c.Interval(); got != 1 {
		t.Fatalf("Interval() after SetInterval = %d, want 1", got)
	}
}

func TestSetIntervalDoesNotMoveScheduledChore(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(0)
	s := New(clk.Now)

	a := NewChore(100, nil)
	b := NewChore(200, nil)
	if err := s.Schedule(a); err != nil {
		t.Fatalf("Schedule(a): %v", err)
	}
	if err := s.Schedule(b); err != nil {
		t.Fatalf("Schedule(b): %v", err)
	}

	// Shrinking b's interval must not reorder the ring until b is next
	// rescheduled.
	b.SetInterval(10)
	if s.ring.next != a {
		t.Fatal("ring head changed after SetInterval")
	}
	if b.target != 200 {
		t.Fatalf("b.target = %d, want 200", b.target)
	}
}

func TestAbortDetached(t *testing.T) {
	t.Parallel()
	c := NewChore(10, nil)
	if err := c.Abort(); err != ErrNotScheduled {
		t.Fatalf("Abort() = %v, want ErrNotScheduled", err)
	}
}

func TestAbortRoutesToOwner(t *testing.T) {
	t.Parallel()
	clk := newFakeClock(0)
	s := New(clk.Now)
	other := New(clk.Now)

	c := NewChore(10, nil)
	if err := s.Schedule(c); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// The wrong scheduler must refuse without touching the ring.
	if err := other.AbortChore(c); err != ErrNotScheduled {
		t.Fatalf("AbortChore(foreign) = %v, want ErrNotScheduled", err)
	}
	if !c.Scheduled() || s.Len() != 2 {
		t.Fatal("foreign abort mutated state")
	}

	if err := c.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if c.Scheduled() {
		t.Fatal("chore still owned after Abort")
	}
	if err := c.Abort(); err != ErrNotScheduled {
		t.Fatalf("second Abort = %v, want ErrNotScheduled", err)
	}
}
