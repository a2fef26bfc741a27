package chores

import (
	"time"

	logx "chored/pkg/logx"
)

// Heartbeat logs a liveness line on every activation.
type Heartbeat struct {
	log     logx.Logger
	msg     string
	started time.Time
	beats   uint64
}

func NewHeartbeat(log logx.Logger, msg string) *Heartbeat {
	if msg == "" {
		msg = "heartbeat"
	}
	return &Heartbeat{log: log, msg: msg, started: time.Now()}
}

// Activate implements chore.Runner.
func (h *Heartbeat) Activate() {
	h.beats++
	h.log.Info(h.msg,
		logx.Uint64("beats", h.beats),
		logx.Duration("uptime", time.Since(h.started).Round(time.Second)),
	)
}
