// Package loop runs the chore ring as a long-lived service.
//
// # Overview
//
// The core scheduler (internal/chore) is cooperative and caller-driven: it
// only dispatches when someone calls RunScheduler. This package is that
// caller. It owns one chore.Scheduler, wakes up on a configurable poll
// period and runs a dispatch pass, so registered chores fire at their own
// millisecond cadence with dispatch latency bounded by the poll period.
//
// Chores are registered under a logical name (e.g. "blink:led0"). Names are
// intended to be stable and human readable so that chores can be replaced
// (upserted) and removed deterministically.
//
// # Interval formats
//
// Register accepts several interval syntaxes:
//
//   - Go duration strings: "250ms", "2h30m".
//   - Cron "@every" descriptors: "@every 55m".
//   - Interval HH:MM: "00:50" means every 50 minutes.
//
// To force interpretation, callers may prefix the string with "every:".
// Calendar cron expressions are rejected: the ring schedules fixed
// recurrence intervals, not wall-clock calendars.
//
// # Concurrency
//
// The ring itself is single-threaded; every interaction with it happens
// under the service mutex, so the driving goroutine and callers of
// Register/Deregister/Snapshot serialize into the one logical control
// thread the core requires. Activations run inline on the driving goroutine
// and must not block.
//
// # Lifecycle
//
// The Service can be started/stopped at runtime (e.g. via config hot
// reload). Registering chores while stopped is supported: definitions are
// stored and applied on the next start.
package loop
