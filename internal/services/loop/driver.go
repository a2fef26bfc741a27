package loop

import (
	"context"
	"time"

	"chored/internal/storage"
	logx "chored/pkg/logx"
)

// drive wakes up every poll period and runs one dispatch pass under the
// service mutex, which is the single logical control thread the ring
// requires.
func (s *Service) drive(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}, poll time.Duration) {
	defer close(done)

	t := time.NewTicker(poll)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-t.C:
			s.mu.Lock()
			if s.sched != nil {
				s.sched.RunScheduler()
			}
			next := s.cfg.Poll
			s.mu.Unlock()

			if next <= 0 {
				next = defaultPoll
			}
			if next != poll {
				poll = next
				t.Reset(poll)
				s.log.Debug("loop poll updated", logx.Duration("poll", poll))
			}
		}
	}
}

// observed wraps a registered runner so every activation is measured,
// recorded in history and queued for persistence. Activate runs inside
// RunScheduler with the service mutex held: no locking here beyond the
// dedicated history/persist paths.
type observed struct {
	s *Service
	d *choreDef
}

func (o *observed) Activate() {
	s, d := o.s, o.d

	var late time.Duration
	var wraps uint32
	target := uint32(0)
	if s.sched != nil {
		target = d.c.Target()
		late = time.Duration(int32(s.sched.Now()-target)) * time.Millisecond
		wraps = s.sched.Wraps()
	}

	start := time.Now()
	d.run.Activate()
	took := time.Since(start)

	d.runs++
	d.lastAt = start

	s.hist.add(HistoryItem{
		Name:  d.name,
		At:    start,
		Late:  late,
		Took:  took,
		Wraps: wraps,
	}, s.cfg.HistorySize)

	if s.cfg.OverrunWarn && took > d.every && s.overrun.Allow() {
		s.log.Warn("chore activation outran its interval",
			logx.String("chore", d.name),
			logx.Duration("took", took),
			logx.Duration("every", d.every),
		)
	} else {
		s.log.Trace("chore activated",
			logx.String("chore", d.name),
			logx.Duration("late", late),
			logx.Duration("took", took),
		)
	}

	s.enqueuePersist(storage.ActivationEntry{
		At:     start,
		Name:   d.name,
		Target: target,
		Wraps:  wraps,
		LateMS: int64(late / time.Millisecond),
		Took:   took,
	})
}

// enqueuePersist hands an activation record to the persistence worker
// without ever blocking the dispatch path.
func (s *Service) enqueuePersist(e storage.ActivationEntry) {
	ch := s.persistCh
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		if s.dropped.Add(1)%100 == 1 {
			s.log.Warn("activation persistence backlog; dropping records",
				logx.Uint64("dropped", s.dropped.Load()),
			)
		}
	}
}

func (s *Service) persistWorker(ctx context.Context, stopCh <-chan struct{}, ch <-chan storage.ActivationEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case e := <-ch:
			wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err := s.store.AppendActivation(wctx, e)
			cancel()
			if err != nil {
				s.log.Debug("activation persist failed", logx.String("chore", e.Name), logx.Err(err))
			}
		}
	}
}
