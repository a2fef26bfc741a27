package loop

import (
	"context"
	"testing"
	"time"

	"chored/internal/chore"
	logx "chored/pkg/logx"
)

type fakeClock struct{ ms uint32 }

func (f *fakeClock) Now() uint32 { return f.ms }

// newTestService returns a started service with a manual clock and a huge
// poll period, so dispatch only happens through RunOnce.
func newTestService(t *testing.T) (*Service, *fakeClock, context.CancelFunc) {
	t.Helper()
	clk := &fakeClock{}
	s := New(Config{Enabled: true, Poll: time.Hour, HistorySize: 16}, nil, logx.Nop())
	s.SetClock(clk.Now)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	t.Cleanup(func() {
		s.Stop(context.Background())
		cancel()
	})
	return s, clk, cancel
}

func TestRegisterAndDispatch(t *testing.T) {
	t.Parallel()
	s, clk, _ := newTestService(t)

	runs := 0
	if err := s.Register("tick", "100ms", chore.RunnerFunc(func() { runs++ })); err != nil {
		t.Fatalf("Register: %v", err)
	}

	clk.ms = 150
	s.RunOnce()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	clk.ms = 450
	s.RunOnce()
	if runs != 4 {
		t.Fatalf("runs = %d, want 4 (catch-up to targets 200..400)", runs)
	}
}

func TestRegisterBadSpec(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestService(t)
	if err := s.Register("bad", "*/5 * * * *", chore.RunnerFunc(func() {})); err == nil {
		t.Fatal("Register with calendar spec succeeded")
	}
	if err := s.Register("norunner", "1s", nil); err == nil {
		t.Fatal("Register with nil runner succeeded")
	}
}

func TestRegisterUpsertsByName(t *testing.T) {
	t.Parallel()
	s, clk, _ := newTestService(t)

	var hits []string
	if err := s.Register("job", "100ms", chore.RunnerFunc(func() { hits = append(hits, "old") })); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("job", "100ms", chore.RunnerFunc(func() { hits = append(hits, "new") })); err != nil {
		t.Fatalf("re-Register: %v", err)
	}

	clk.ms = 120
	s.RunOnce()
	if len(hits) != 1 || hits[0] != "new" {
		t.Fatalf("hits = %v, want [new]", hits)
	}

	snap := s.Snapshot()
	if len(snap.Chores) != 1 || snap.Chores[0].Name != "job" {
		t.Fatalf("snapshot chores = %+v, want single 'job'", snap.Chores)
	}
}

func TestDeregister(t *testing.T) {
	t.Parallel()
	s, clk, _ := newTestService(t)

	runs := 0
	if err := s.Register("gone", "50ms", chore.RunnerFunc(func() { runs++ })); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Deregister("gone"); err != nil {
		t.Fatalf("Deregister: %v", err)
	}
	if err := s.Deregister("gone"); err == nil {
		t.Fatal("second Deregister succeeded")
	}

	clk.ms = 1000
	s.RunOnce()
	if runs != 0 {
		t.Fatalf("deregistered chore ran %d times", runs)
	}
}

func TestStopKeepsDefinitions(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	s := New(Config{Enabled: true, Poll: time.Hour}, nil, logx.Nop())
	s.SetClock(clk.Now)

	runs := 0
	// Registering while stopped is applied on the next Start.
	if err := s.Register("early", "100ms", chore.RunnerFunc(func() { runs++ })); err != nil {
		t.Fatalf("Register while stopped: %v", err)
	}

	ctx := context.Background()
	s.Start(ctx)
	clk.ms = 120
	s.RunOnce()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}

	s.Stop(ctx)
	clk.ms = 5000
	s.RunOnce() // stopped: no ring, no dispatch
	if runs != 1 {
		t.Fatalf("runs after Stop = %d, want 1", runs)
	}

	s.Start(ctx)
	defer s.Stop(ctx)
	clk.ms = 5120 // restart rebased the ring's epoch; 100ms later it fires
	s.RunOnce()
	if runs != 2 {
		t.Fatalf("runs after restart = %d, want 2", runs)
	}
}

func TestSnapshotAndHistory(t *testing.T) {
	t.Parallel()
	s, clk, _ := newTestService(t)

	if err := s.Register("a", "100ms", chore.RunnerFunc(func() {})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("b", "300ms", chore.RunnerFunc(func() {})); err != nil {
		t.Fatalf("Register: %v", err)
	}

	clk.ms = 100
	s.RunOnce()

	snap := s.Snapshot()
	if !snap.Running {
		t.Fatal("snapshot says not running")
	}
	if len(snap.Chores) != 2 {
		t.Fatalf("chores = %d, want 2", len(snap.Chores))
	}
	if snap.Chores[0].Name != "a" || snap.Chores[1].Name != "b" {
		t.Fatalf("chore order = %s,%s; want a,b", snap.Chores[0].Name, snap.Chores[1].Name)
	}
	if snap.Chores[0].Runs != 1 {
		t.Fatalf("a.Runs = %d, want 1", snap.Chores[0].Runs)
	}
	if snap.Chores[0].DueIn != 100*time.Millisecond {
		t.Fatalf("a.DueIn = %v, want 100ms", snap.Chores[0].DueIn)
	}
	if len(snap.History) != 1 || snap.History[0].Name != "a" {
		t.Fatalf("history = %+v, want one entry for a", snap.History)
	}
}

func TestHistoryCapped(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	s := New(Config{Enabled: true, Poll: time.Hour, HistorySize: 5}, nil, logx.Nop())
	s.SetClock(clk.Now)
	ctx := context.Background()
	s.Start(ctx)
	defer s.Stop(ctx)

	if err := s.Register("busy", "10ms", chore.RunnerFunc(func() {})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	clk.ms = 1000
	s.RunOnce() // ~100 activations

	if got := len(s.Snapshot().History); got != 5 {
		t.Fatalf("history length = %d, want cap 5", got)
	}
}
