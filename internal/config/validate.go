package config

import (
	"fmt"
	"strings"
)

// Validate checks cross-field consistency that the strict decoder cannot
// express. It is installed as the manager's validator hook so a bad reload
// never reaches the running services.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := ParseDurationField("loop.poll", cfg.Loop.Poll); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(cfg.Chores))
	for i, c := range cfg.Chores {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("chores[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("chores[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}

		switch strings.ToLower(strings.TrimSpace(c.Kind)) {
		case "log", "blink":
		default:
			return fmt.Errorf("chores[%d] %q: unknown kind %q", i, name, c.Kind)
		}
		if strings.TrimSpace(c.Every) == "" {
			return fmt.Errorf("chores[%d] %q: every is required", i, name)
		}
	}

	if cfg.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
		case "", "none", "file", "sqlite":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", cfg.Storage.Driver)
		}
		if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
			return err
		}
	}

	return nil
}
