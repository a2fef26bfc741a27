package loop

import (
	"sync"
	"time"

	"chored/internal/chore"
)

// Config controls the loop service.
type Config struct {
	Enabled     bool
	Poll        time.Duration // dispatch pass period (default 1ms)
	HistorySize int           // in-memory activation history cap (default 200)
	OverrunWarn bool          // warn when an activation outruns its interval
}

// HistoryItem records one activation as observed by the service.
type HistoryItem struct {
	Name  string
	At    time.Time
	Late  time.Duration // dispatch lateness vs the chore's target
	Took  time.Duration
	Wraps uint32
}

// choreDef is a registered chore definition. Definitions survive Stop/Start:
// the underlying ring node is recreated on every start.
type choreDef struct {
	name  string
	spec  string // raw interval spec as given
	every time.Duration
	run   chore.Runner

	c      *chore.Chore // nil while the service is stopped
	runs   uint64
	lastAt time.Time
}

// ChoreInfo describes one registered chore in a Snapshot.
type ChoreInfo struct {
	Name      string
	Spec      string
	Every     time.Duration
	Scheduled bool
	DueIn     time.Duration // until next activation; negative if overdue
	Runs      uint64
	LastAt    time.Time
}

// Snapshot is a point-in-time view of the service for introspection.
type Snapshot struct {
	Enabled bool
	Running bool
	Poll    time.Duration
	NowMS   uint32 // scheduler clock at snapshot time
	Wraps   uint32
	Dropped uint64 // persistence records dropped due to backpressure
	Chores  []ChoreInfo
	History []HistoryItem
}

type history struct {
	mu    sync.Mutex
	items []HistoryItem
}

func (h *history) add(it HistoryItem, cap int) {
	if cap <= 0 {
		cap = 200
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, it)
	if len(h.items) > cap {
		h.items = h.items[len(h.items)-cap:]
	}
}

func (h *history) list() []HistoryItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryItem, len(h.items))
	copy(out, h.items)
	return out
}
