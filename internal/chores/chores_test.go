package chores

import (
	"os"
	"path/filepath"
	"testing"

	"chored/internal/config"
	logx "chored/pkg/logx"
)

func TestBlinkerTogglesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "value")
	b := NewBlinker(logx.Nop(), path)

	b.Activate()
	if !b.State() {
		t.Fatal("state not on after first activation")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "1" {
		t.Fatalf("file = %q, want \"1\"", got)
	}

	b.Activate()
	got, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "0" {
		t.Fatalf("file = %q, want \"0\"", got)
	}
}

func TestBlinkerNoPath(t *testing.T) {
	t.Parallel()
	b := NewBlinker(logx.Nop(), "")
	b.Activate()
	b.Activate()
	b.Activate()
	if !b.State() {
		t.Fatal("state not on after odd number of activations")
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind string
		ok   bool
	}{
		{kind: "log", ok: true},
		{kind: "blink", ok: true},
		{kind: "BLINK", ok: true},
		{kind: "relay", ok: false},
	}
	for _, tt := range tests {
		r, err := FromConfig(config.ChoreConfig{Name: "x", Kind: tt.kind}, logx.Nop())
		if tt.ok && (err != nil || r == nil) {
			t.Fatalf("FromConfig(%q) = %v, %v; want runner", tt.kind, r, err)
		}
		if !tt.ok && err == nil {
			t.Fatalf("FromConfig(%q) succeeded, want error", tt.kind)
		}
	}
}
