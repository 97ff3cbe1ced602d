package reminder

import (
	"context"
	"log"
	"sync"
	"time"
)

type TickRunner interface {
	RunTick(ctx context.Context) TickReport
}

type SchedulerConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// Scheduler triggers the reminder pipeline on a fixed interval. It is owned
// by the process entry point; Start and Stop may each be called once, Stop
// waits for a running tick to finish.
type Scheduler struct {
	runner TickRunner
	guard  TickGuard
	cfg    SchedulerConfig

	mu       sync.Mutex
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(runner TickRunner, guard TickGuard, cfg SchedulerConfig) *Scheduler {
	if guard == nil {
		guard = NewLocalGuard()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	return &Scheduler{
		runner: runner,
		guard:  guard,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
}

// Tick runs the pipeline once unless another tick holds the guard.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	release, ok, err := s.guard.TryAcquire(ctx)
	if err != nil {
		log.Printf("reminder_tick_guard_error err=%v", err)
	}
	if !ok {
		log.Println("reminder_tick_skipped reason=previous tick still running")
		now := time.Now()
		return TickReport{StartedAt: now, FinishedAt: now, Skipped: true}
	}
	defer release()

	return s.runner.RunTick(ctx)
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.cfg.RunOnStart {
			s.Tick(ctx)
		}

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick(ctx)
			case <-s.stopCh:
				log.Println("reminder scheduler stopped")
				return
			case <-ctx.Done():
				log.Println("reminder scheduler stopped (context done)")
				return
			}
		}
	}()

	log.Printf("reminder scheduler started interval=%s run_on_start=%t", s.cfg.Interval, s.cfg.RunOnStart)
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
