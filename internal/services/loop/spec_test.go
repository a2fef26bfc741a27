package loop

import (
	"errors"
	"testing"
	"time"
)

func TestParseEveryVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		raw    string
		source string
		every  time.Duration
	}{
		{name: "duration", raw: "250ms", source: "duration", every: 250 * time.Millisecond},
		{name: "long duration", raw: "2h30m", source: "duration", every: 2*time.Hour + 30*time.Minute},
		{name: "prefixed", raw: "every:45s", source: "duration", every: 45 * time.Second},
		{name: "descriptor", raw: "@every 55m", source: "every", every: 55 * time.Minute},
		{name: "hhmm", raw: "01:30", source: "hhmm", every: 90 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			every, source, err := ParseEvery(tt.raw)
			if err != nil {
				t.Fatalf("ParseEvery(%q) error: %v", tt.raw, err)
			}
			if source != tt.source {
				t.Fatalf("source = %s, want %s", source, tt.source)
			}
			if every != tt.every {
				t.Fatalf("every = %v, want %v", every, tt.every)
			}
		})
	}
}

func TestParseEveryRejectsCalendar(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"*/5 * * * *", "@hourly", "0 0 * * *"} {
		if _, _, err := ParseEvery(raw); !errors.Is(err, ErrCalendarSpec) {
			t.Fatalf("ParseEvery(%q) = %v, want ErrCalendarSpec", raw, err)
		}
	}
}

func TestParseEveryInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-spec", "-5s", "24:00"} {
		if _, _, err := ParseEvery(raw); err == nil {
			t.Fatalf("ParseEvery(%q) succeeded, want error", raw)
		}
	}
}

func TestIntervalMSClamps(t *testing.T) {
	t.Parallel()
	if got := intervalMS(250 * time.Millisecond); got != 250 {
		t.Fatalf("intervalMS = %d, want 250", got)
	}
	if got := intervalMS(100 * 24 * time.Hour); got != 0x0fffffff {
		t.Fatalf("intervalMS = %#x, want clamp to %#x", got, 0x0fffffff)
	}
}
