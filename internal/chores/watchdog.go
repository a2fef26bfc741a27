package chores

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "chored/pkg/logx"
)

// Watchdog pings the systemd watchdog. Register it at half the WatchdogSec
// window reported by WatchdogInterval.
type Watchdog struct {
	log logx.Logger
}

func NewWatchdog(log logx.Logger) *Watchdog {
	return &Watchdog{log: log}
}

// WatchdogInterval returns the recommended ping interval (half the unit's
// WatchdogSec), or 0 when the process does not run under a systemd watchdog.
func WatchdogInterval() time.Duration {
	window, err := daemon.SdWatchdogEnabled(false)
	if err != nil || window <= 0 {
		return 0
	}
	return window / 2
}

// Activate implements chore.Runner.
func (w *Watchdog) Activate() {
	ack, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
	if err != nil {
		w.log.Warn("watchdog notify failed", logx.Err(err))
		return
	}
	if !ack {
		w.log.Debug("watchdog notify unsupported (no NOTIFY_SOCKET)")
	}
}
