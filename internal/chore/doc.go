// Package chore implements a cooperative, time-ordered scheduler for
// recurring chores.
//
// # Overview
//
// A Chore is a recurring unit of work with a millisecond interval and an
// activation capability (Runner). A Scheduler keeps its chores in a circular
// doubly-linked ring, sorted by ascending target time, and is itself the
// ring's anchor node. The caller drives dispatch from its own loop:
//
//	s := chore.New(nil)
//	c := chore.NewChore(100, chore.RunnerFunc(func() { /* work */ }))
//	_ = s.Schedule(c)
//	for {
//		s.RunScheduler()
//		// ... other loop work
//	}
//
// RunScheduler activates every chore whose target time has passed, in
// ascending target-time order, and reschedules each one by adding its
// interval to its previous target time. Rescheduling from the previous
// target rather than from "now" keeps the long-run average period equal to
// the interval exactly; dispatch latency never accumulates as drift.
//
// # Time base
//
// The scheduler reads an external monotonic millisecond counter (Clock) and
// keeps all target times relative to its construction time. Times are 32-bit
// and the usable range is bounded at 2^30 ms (~12.4 days): an internal wrap
// guard chore fires once per 2^30 ms boundary and rebases every outstanding
// target time in place, so purely relative arithmetic keeps working forever.
// Due-ness is decided with a signed 32-bit subtraction, which stays correct
// across the rebase boundary without extra branching.
//
// # Concurrency
//
// The package is single-threaded by design: there is no locking, no internal
// goroutine and no timer. Schedule, AbortChore and RunScheduler must all be
// called from the same logical thread of control. Calling RunScheduler from
// inside an activation is not supported.
package chore
