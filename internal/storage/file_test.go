package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "chored/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		if st != nil {
			t.Fatalf("driver %q: expected nil store", driver)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hist", "chored.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := ActivationEntry{
			At:     base.Add(time.Duration(i) * time.Second),
			Name:   "beat",
			Target: uint32(100 * (i + 1)),
			LateMS: int64(i),
			Took:   3 * time.Millisecond,
		}
		if i == 2 {
			e.Name = "led"
		}
		if err := st.AppendActivation(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := st.RecentActivations(ctx, "beat", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d entries, want 4", len(got))
	}
	// newest first
	if got[0].Target != 500 || got[3].Target != 100 {
		t.Fatalf("order wrong: first=%d last=%d", got[0].Target, got[3].Target)
	}
	if got[0].Took != 3*time.Millisecond {
		t.Fatalf("took = %v", got[0].Took)
	}
	if !got[3].At.Equal(base) {
		t.Fatalf("at = %v, want %v", got[3].At, base)
	}

	all, err := st.RecentActivations(ctx, "", 2)
	if err != nil {
		t.Fatalf("recent all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("limit not applied: got %d entries, want 2", len(all))
	}
	if all[0].Target != 500 {
		t.Fatalf("limit kept wrong tail: first target = %d", all[0].Target)
	}
}

func TestFileStoreRequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFileStoreAppendAfterClose(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "chored.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := st.AppendActivation(context.Background(), ActivationEntry{Name: "x"}); err != ErrDisabled {
		t.Fatalf("append after close: %v, want ErrDisabled", err)
	}
}
