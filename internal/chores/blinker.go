package chores

import (
	"os"

	logx "chored/pkg/logx"
)

// Blinker toggles a binary state on every activation and mirrors it to a
// file in the "0"/"1" convention of sysfs GPIO value nodes. With an empty
// path it only logs the toggle.
type Blinker struct {
	log  logx.Logger
	path string

	on     bool
	writes uint64
	failed bool
}

func NewBlinker(log logx.Logger, path string) *Blinker {
	return &Blinker{log: log, path: path}
}

// State reports the current toggle state.
func (b *Blinker) State() bool { return b.on }

// Activate implements chore.Runner.
func (b *Blinker) Activate() {
	b.on = !b.on
	if b.path == "" {
		b.log.Debug("blink", logx.Bool("on", b.on))
		return
	}

	v := []byte("0")
	if b.on {
		v = []byte("1")
	}
	if err := os.WriteFile(b.path, v, 0o644); err != nil {
		// Log the first failure only; a missing GPIO node would otherwise
		// flood at blink cadence.
		if !b.failed {
			b.failed = true
			b.log.Warn("blink write failed", logx.String("path", b.path), logx.Err(err))
		}
		return
	}
	b.failed = false
	b.writes++
}
