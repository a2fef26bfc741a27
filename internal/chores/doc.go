// Package chores provides the built-in chore runners registered by the
// daemon: a heartbeat logger, a file-backed blinker (GPIO-value style), and
// a systemd watchdog pinger. Config-declared chores are built from these via
// FromConfig.
package chores
