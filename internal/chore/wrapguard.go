package chore

// The wrap guard is an ordinary chore that corrects the time base once per
// 2^30 ms (~12.4 days). It is armed at the boundary value itself rather than
// at a clock-derived target, so it always sorts behind every ordinary chore
// and is reached exactly once per span. Running it through the normal
// dispatch loop (not as a special case) means the ordering invariant covers
// it like any other chore.

// rebase is the wrap guard's activation: it clears the guard headroom bits
// of every linked chore's target, shifting the whole ring down by 2^30 ms,
// and advances the scheduler's own correction by the same amount so now()
// moves with it. The guard itself is unlinked while this runs; its target
// stays at the boundary value, which in the corrected timeline is again one
// full span away.
func (s *Scheduler) rebase() {
	for n := s.ring.next; n != &s.ring; n = n.next {
		n.target &= targetMask
	}
	s.rebased += wrapSpan
	s.wraps++
}

// Wraps returns how many times the wrap guard has rebased the ring since
// construction. Together with the 2^30 ms span it reconstructs absolute
// elapsed time from any stored target.
func (s *Scheduler) Wraps() uint32 { return s.wraps }
