package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "chored.yaml", `
logging:
  level: debug
  console: true
loop:
  enabled: true
  poll: 2ms
chores:
  - name: beat
    kind: log
    every: 250ms
    message: hi
`)
	m := NewManager(p)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Loop.Enabled || cfg.Loop.Poll != "2ms" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Chores) != 1 || cfg.Chores[0].Name != "beat" || cfg.Chores[0].Every != "250ms" {
		t.Fatalf("unexpected chores: %+v", cfg.Chores)
	}
	if got := m.Get(); got != cfg {
		t.Fatalf("Get returned %p, want committed %p", got, cfg)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "chored.json", `{"loop":{"enabled":true},"chores":[]}`)
	cfg, err := NewManager(p).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Loop.Enabled {
		t.Fatal("loop.enabled not decoded")
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "chored.yaml", "loop:\n  enabled: true\n  pool: 1ms\n")
	if _, err := NewManager(p).Parse(); err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	p := writeFile(t, "chored.json", `{"loop":{"enabled":true}}{"extra":1}`)
	if _, err := NewManager(p).Parse(); err == nil {
		t.Fatal("expected trailing-data error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := func() *Config {
		return &Config{
			Loop: LoopConfig{Enabled: true, Poll: "1ms"},
			Chores: []ChoreConfig{
				{Name: "beat", Kind: "log", Every: "1s"},
			},
		}
	}
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad poll", func(c *Config) { c.Loop.Poll = "soon" }, "loop.poll"},
		{"missing name", func(c *Config) { c.Chores[0].Name = " " }, "name is required"},
		{"duplicate name", func(c *Config) {
			c.Chores = append(c.Chores, ChoreConfig{Name: "beat", Kind: "log", Every: "1s"})
		}, "duplicate"},
		{"unknown kind", func(c *Config) { c.Chores[0].Kind = "relay" }, "unknown kind"},
		{"missing every", func(c *Config) { c.Chores[0].Every = "" }, "every is required"},
		{"unknown driver", func(c *Config) { c.Storage = &StorageConfig{Driver: "redis"} }, "unknown driver"},
		{"bad busy timeout", func(c *Config) {
			c.Storage = &StorageConfig{Driver: "sqlite", BusyTimeout: "-1s"}
		}, "busy_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", "  "); err != nil || d != 0 {
		t.Fatalf("blank: got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", "1500ms"); err != nil || d != 1500*time.Millisecond {
		t.Fatalf("1500ms: got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative accepted")
	}
	if d, err := ParseDurationOrDefault("x", "", time.Second); err != nil || d != time.Second {
		t.Fatalf("default: got %v, %v", d, err)
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	oldCfg := &Config{
		Loop: LoopConfig{Enabled: true, Poll: "1ms"},
		Chores: []ChoreConfig{
			{Name: "beat", Kind: "log", Every: "1s"},
			{Name: "led", Kind: "blink", Every: "500ms"},
		},
	}
	newCfg := &Config{
		Logging: LoggingConfig{Level: "debug"},
		Loop:    LoopConfig{Enabled: true, Poll: "2ms"},
		Chores: []ChoreConfig{
			{Name: "beat", Kind: "log", Every: "2s"},
		},
	}
	sections, _ := SummarizeConfigChange(oldCfg, newCfg)
	want := []string{"logging", "loop", "chores"}
	if len(sections) != len(want) {
		t.Fatalf("sections = %v, want %v", sections, want)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Fatalf("sections = %v, want %v", sections, want)
		}
	}

	delta := choreDelta(oldCfg.Chores, newCfg.Chores)
	if len(delta) != 2 || delta[0] != "beat" || delta[1] != "led(removed)" {
		t.Fatalf("choreDelta = %v", delta)
	}

	if s, _ := SummarizeConfigChange(newCfg, newCfg); len(s) != 0 {
		t.Fatalf("no-op change reported sections %v", s)
	}
}
