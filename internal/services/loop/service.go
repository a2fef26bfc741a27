package loop

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"chored/internal/chore"
	"chored/internal/storage"
	logx "chored/pkg/logx"
)

const (
	defaultPoll        = time.Millisecond
	defaultHistorySize = 200
	persistQueueSize   = 256
)

// Service drives one chore ring. See the package documentation.
type Service struct {
	mu sync.Mutex

	log   logx.Logger
	cfg   Config
	store storage.Store
	clock chore.Clock // nil selects chore.WallClock

	sched *chore.Scheduler // nil while stopped
	defs  map[string]*choreDef
	order []string // registration order, for stable snapshots

	stopCh   chan struct{}
	stopDone chan struct{}

	hist history

	persistCh chan storage.ActivationEntry
	dropped   atomic.Uint64

	overrun *rate.Limiter
}

// New creates a stopped service. store may be nil (history stays in memory
// only).
func New(cfg Config, store storage.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:     log,
		cfg:     cfg,
		store:   store,
		defs:    map[string]*choreDef{},
		overrun: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// SetClock overrides the millisecond clock. It must be called before Start;
// it exists for tests and for platforms with their own monotonic source.
func (s *Service) SetClock(c chore.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Register adds or replaces a chore definition under name. If the service is
// running the chore enters the ring immediately; otherwise it is scheduled
// on the next Start.
func (s *Service) Register(name, spec string, r chore.Runner) error {
	every, _, err := ParseEvery(spec)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("loop: chore %q has no runner", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.defs[name]; ok {
		s.detachLocked(old)
	} else {
		s.order = append(s.order, name)
	}

	d := &choreDef{name: name, spec: spec, every: every, run: r}
	s.defs[name] = d
	if s.sched != nil {
		s.attachLocked(d)
	}
	return nil
}

// Deregister aborts and forgets the named chore.
func (s *Service) Deregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("loop: unknown chore %q", name)
	}
	s.detachLocked(d)
	delete(s.defs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// attachLocked builds the ring node for a definition and schedules it.
func (s *Service) attachLocked(d *choreDef) {
	d.c = chore.NewChore(intervalMS(d.every), &observed{s: s, d: d})
	if err := s.sched.Schedule(d.c); err != nil {
		// Freshly built node; only possible through a programming error.
		s.log.Error("chore schedule failed", logx.String("chore", d.name), logx.Err(err))
		d.c = nil
	}
}

func (s *Service) detachLocked(d *choreDef) {
	if d.c != nil {
		_ = d.c.Abort()
		d.c = nil
	}
}

// Start builds the ring, schedules every registered definition and launches
// the driving goroutine. Starting a started service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.stopDone = make(chan struct{})

	s.sched = chore.New(s.clock)
	for _, name := range s.order {
		s.attachLocked(s.defs[name])
	}

	if s.store != nil {
		s.persistCh = make(chan storage.ActivationEntry, persistQueueSize)
		go s.persistWorker(ctx, s.stopCh, s.persistCh)
	}

	poll := s.cfg.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	go s.drive(ctx, s.stopCh, s.stopDone, poll)

	s.log.Info("loop started",
		logx.Duration("poll", poll),
		logx.Int("chores", len(s.defs)),
		logx.Bool("persist", s.store != nil),
	)
}

// Stop halts the driving goroutine and detaches every chore from the ring.
// Definitions are kept, so a later Start resumes the same set.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	stopCh, done := s.stopCh, s.stopDone
	s.stopCh, s.stopDone = nil, nil
	close(stopCh)
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
	}

	s.mu.Lock()
	for _, d := range s.defs {
		d.c = nil
	}
	if s.sched != nil {
		s.sched.Close()
		s.sched = nil
	}
	s.persistCh = nil
	s.mu.Unlock()

	s.log.Info("loop stopped")
}

// RunOnce runs a single dispatch pass. The driving goroutine does this on
// every poll tick; embedders that want to own the control loop themselves
// (and tests) can call it directly instead.
func (s *Service) RunOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched != nil {
		s.sched.RunScheduler()
	}
}

// Apply updates runtime knobs. Poll changes take effect on the next tick of
// the driving goroutine; enable/disable transitions are the caller's job
// (Start/Stop), matching how config reload is orchestrated.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Snapshot returns a point-in-time view for introspection.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Enabled: s.cfg.Enabled,
		Running: s.stopCh != nil,
		Poll:    s.cfg.Poll,
		Dropped: s.dropped.Load(),
	}
	if snap.Poll <= 0 {
		snap.Poll = defaultPoll
	}
	var now uint32
	if s.sched != nil {
		snap.Wraps = s.sched.Wraps()
		now = s.sched.Now()
		snap.NowMS = now
	}
	for _, name := range s.order {
		d := s.defs[name]
		info := ChoreInfo{
			Name:   d.name,
			Spec:   d.spec,
			Every:  d.every,
			Runs:   d.runs,
			LastAt: d.lastAt,
		}
		if d.c != nil && d.c.Scheduled() {
			info.Scheduled = true
			info.DueIn = time.Duration(int32(d.c.Target()-now)) * time.Millisecond
		}
		snap.Chores = append(snap.Chores, info)
	}
	s.mu.Unlock()

	snap.History = s.hist.list()
	sort.SliceStable(snap.History, func(i, j int) bool { return snap.History[i].At.Before(snap.History[j].At) })
	return snap
}
