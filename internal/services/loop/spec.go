package loop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrCalendarSpec is returned for cron calendar expressions: the ring
// schedules fixed recurrence intervals, not wall-clock calendars.
var ErrCalendarSpec = errors.New("loop: calendar cron expressions are not supported; use a duration or @every")

var descriptorParser = cron.NewParser(cron.Descriptor)

// ParseEvery parses an interval spec into a recurrence period.
// It returns the period and the syntax that matched ("duration", "every",
// "hhmm").
func ParseEvery(raw string) (time.Duration, string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "every:")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("loop: empty interval spec")
	}

	if strings.HasPrefix(s, "@") {
		sched, err := descriptorParser.Parse(s)
		if err != nil {
			return 0, "", fmt.Errorf("loop: invalid descriptor %q: %w", raw, err)
		}
		cd, ok := sched.(cron.ConstantDelaySchedule)
		if !ok {
			// "@hourly" and friends parse to calendar schedules.
			return 0, "", ErrCalendarSpec
		}
		return cd.Delay, "every", nil
	}

	// Calendar cron specs have fields; catch them before duration parsing
	// so the error says why rather than "invalid duration".
	if strings.ContainsAny(s, " \t") {
		return 0, "", ErrCalendarSpec
	}

	if h, m, err := parseHHMM(s); err == nil {
		d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
		if d <= 0 {
			return 0, "", fmt.Errorf("loop: interval %q must be positive", raw)
		}
		return d, "hhmm", nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, "", fmt.Errorf("loop: invalid interval %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, "", fmt.Errorf("loop: interval %q must be positive", raw)
	}
	return d, "duration", nil
}

func parseHHMM(s string) (hour int, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

// intervalMS converts a period to the core's millisecond unit, clamping into
// the representable 28-bit range.
func intervalMS(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	const maxIntervalMS = 0x0fffffff
	if ms > maxIntervalMS {
		ms = maxIntervalMS
	}
	return uint32(ms)
}
