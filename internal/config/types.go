package config

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Loop controls the dispatch loop service driving the chore ring.
	Loop LoopConfig `json:"loop"`

	Storage  *StorageConfig `json:"storage,omitempty"`
	Watchdog WatchdogConfig `json:"watchdog,omitempty"`
	Debug    DebugConfig    `json:"debug,omitempty"`

	// Chores declares the recurring chores registered at startup (and kept
	// in sync on reload).
	Chores []ChoreConfig `json:"chores"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoopConfig controls the dispatch loop service.
//
// All durations are Go duration strings (e.g. "500us", "1ms", "10ms").
//
// Defaults (when fields are omitted/zero):
//   - poll: "1ms"
//   - history_size: 200
type LoopConfig struct {
	Enabled bool `json:"enabled"`

	// Poll is how often the loop wakes up to run a dispatch pass. It bounds
	// dispatch latency, not chore cadence; cadence comes from each chore's
	// own interval.
	Poll string `json:"poll,omitempty"`

	HistorySize int `json:"history_size,omitempty"`

	// OverrunWarn enables rate-limited warnings when an activation runs
	// longer than the chore's own interval.
	OverrunWarn bool `json:"overrun_warn,omitempty"`
}

// ChoreConfig declares one recurring chore.
//
// Every accepts a Go duration ("250ms"), an "@every 2s" descriptor, or a
// compact HH:MM interval ("01:30" = every 90 minutes).
type ChoreConfig struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // "log" | "blink"

	Every string `json:"every"`

	// Message is logged by "log" chores.
	Message string `json:"message,omitempty"`

	// Path is the file a "blink" chore writes its 0/1 state to (GPIO
	// value style). Empty means log-only.
	Path string `json:"path,omitempty"`
}

// StorageConfig controls the optional activation-history persistence.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./chored.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	MaxRows     int    `json:"max_rows,omitempty"`
}

// DebugConfig controls the debug HTTP server (pprof, /statusz).
// Non-loopback addrs require a token.
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default 127.0.0.1:6060
	Token   string `json:"token,omitempty"`
}

// WatchdogConfig controls the systemd watchdog chore. When enabled and the
// process runs under a systemd unit with WatchdogSec set, a chore pings the
// watchdog at half the configured window.
type WatchdogConfig struct {
	Enabled bool `json:"enabled"`
}
