package chores

import (
	"fmt"
	"strings"

	"chored/internal/chore"
	"chored/internal/config"
	logx "chored/pkg/logx"
)

// FromConfig builds the runner for one declared chore.
func FromConfig(cc config.ChoreConfig, log logx.Logger) (chore.Runner, error) {
	switch strings.ToLower(strings.TrimSpace(cc.Kind)) {
	case "log":
		return NewHeartbeat(log.With(logx.String("chore", cc.Name)), cc.Message), nil
	case "blink":
		return NewBlinker(log.With(logx.String("chore", cc.Name)), cc.Path), nil
	default:
		return nil, fmt.Errorf("chores: unknown kind %q for %q", cc.Kind, cc.Name)
	}
}
