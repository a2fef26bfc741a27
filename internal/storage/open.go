package storage

import (
	"context"
	"fmt"
	"strings"

	logx "chored/pkg/logx"
)

// Store is the minimal persistence API used by the loop service.
type Store interface {
	AppendActivation(ctx context.Context, e ActivationEntry) error
	RecentActivations(ctx context.Context, name string, limit int) ([]ActivationEntry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
