package main

import (
	"fmt"

	"chored/internal/chores"
	"chored/internal/config"
	"chored/internal/services/loop"
	logx "chored/pkg/logx"
)

// watchdogName is reserved; config chores may not use it.
const watchdogName = "systemd-watchdog"

// registrar reconciles the loop service's chore set against a config
// snapshot, deregistering chores that a reload removed.
type registrar struct {
	svc   *loop.Service
	log   logx.Logger
	known map[string]struct{}
}

func newRegistrar(svc *loop.Service, log logx.Logger) *registrar {
	return &registrar{svc: svc, log: log, known: make(map[string]struct{})}
}

func (r *registrar) apply(cfg *config.Config) error {
	want := make(map[string]struct{}, len(cfg.Chores)+1)
	for _, cc := range cfg.Chores {
		if cc.Name == watchdogName {
			return fmt.Errorf("chore name %q is reserved", cc.Name)
		}
		run, err := chores.FromConfig(cc, r.log)
		if err != nil {
			return fmt.Errorf("chore %q: %w", cc.Name, err)
		}
		if err := r.svc.Register(cc.Name, cc.Every, run); err != nil {
			return fmt.Errorf("chore %q: %w", cc.Name, err)
		}
		want[cc.Name] = struct{}{}
	}

	if cfg.Watchdog.Enabled {
		if iv := chores.WatchdogInterval(); iv > 0 {
			spec := iv.String()
			if err := r.svc.Register(watchdogName, spec, chores.NewWatchdog(r.log)); err != nil {
				return fmt.Errorf("watchdog: %w", err)
			}
			want[watchdogName] = struct{}{}
		} else {
			r.log.Debug("watchdog enabled but WATCHDOG_USEC not set; skipping")
		}
	}

	for name := range r.known {
		if _, ok := want[name]; !ok {
			r.svc.Deregister(name)
			r.log.Info("chore removed", logx.String("chore", name))
		}
	}
	r.known = want
	return nil
}
