package config

import (
	"reflect"
	"sort"
	"strings"

	logx "chored/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections and
// (2) safe structured attrs for logging.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 10)

	// Logging
	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file", newCfg.Logging.File.Enabled),
		)
	}

	// Loop
	if !reflect.DeepEqual(oldCfg.Loop, newCfg.Loop) {
		changed = append(changed, "loop")
		attrs = append(attrs,
			logx.Bool("loop.enabled", newCfg.Loop.Enabled),
			logx.String("loop.poll", strings.TrimSpace(newCfg.Loop.Poll)),
		)
	}

	// Storage
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		driver := ""
		if newCfg.Storage != nil {
			driver = newCfg.Storage.Driver
		}
		attrs = append(attrs, logx.String("storage.driver", driver))
	}

	// Debug
	if oldCfg.Debug != newCfg.Debug {
		changed = append(changed, "debug")
		attrs = append(attrs,
			logx.Bool("debug.enabled", newCfg.Debug.Enabled),
			logx.String("debug.addr", newCfg.Debug.Addr),
		)
	}

	// Watchdog
	if oldCfg.Watchdog != newCfg.Watchdog {
		changed = append(changed, "watchdog")
		attrs = append(attrs, logx.Bool("watchdog.enabled", newCfg.Watchdog.Enabled))
	}

	// Chores: report names whose declaration changed, plus adds/removes.
	if delta := choreDelta(oldCfg.Chores, newCfg.Chores); len(delta) > 0 {
		changed = append(changed, "chores")
		attrs = append(attrs,
			logx.Int("chores.count", len(newCfg.Chores)),
			logx.String("chores.changed", strings.Join(delta, ",")),
		)
	}

	return changed, attrs
}

func choreDelta(oldChores, newChores []ChoreConfig) []string {
	byName := func(cs []ChoreConfig) map[string]ChoreConfig {
		m := make(map[string]ChoreConfig, len(cs))
		for _, c := range cs {
			m[c.Name] = c
		}
		return m
	}
	om, nm := byName(oldChores), byName(newChores)

	var delta []string
	for name, nc := range nm {
		oc, ok := om[name]
		if !ok || oc != nc {
			delta = append(delta, name)
		}
	}
	for name := range om {
		if _, ok := nm[name]; !ok {
			delta = append(delta, name+"(removed)")
		}
	}
	sort.Strings(delta)
	return delta
}
