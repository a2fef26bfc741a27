package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free JSONL backend
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	MaxRows     int           // prune threshold; 0 means default
}

// ActivationEntry records one dispatched chore activation.
// Keep it compact and schema-stable.
type ActivationEntry struct {
	At     time.Time
	Name   string
	Target uint32 // scheduler-relative target time, ms
	Wraps  uint32 // scheduler wrap count at dispatch
	LateMS int64  // dispatch lateness vs target
	Took   time.Duration
}
