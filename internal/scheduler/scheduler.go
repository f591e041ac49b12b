package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	logx "fxwire/pkg/logx"
)

type jobDef struct {
	name      string
	spec      string
	immediate bool
	fn        func(ctx context.Context)

	entryID cron.EntryID
	running atomic.Bool

	mu      sync.Mutex
	lastRun time.Time
	runs    uint64
}

// JobStatus is a point-in-time view of one job for /status.
type JobStatus struct {
	Name    string
	Spec    string
	LastRun time.Time
	NextRun time.Time
	Runs    uint64
	Running bool
}

type Service struct {
	log logx.Logger

	mu      sync.Mutex
	c       *cron.Cron
	jobs    []*jobDef
	started bool

	runCtx    context.Context
	runCancel context.CancelFunc
}

func New(log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{log: log}
}

// AddInterval registers a job firing every `every`. When immediate is
// set, the job also runs once right after Start.
func (s *Service) AddInterval(name string, every time.Duration, immediate bool, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &jobDef{
		name:      name,
		spec:      fmt.Sprintf("@every %s", every),
		immediate: immediate,
		fn:        fn,
	})
}

// AddDaily registers a job firing once per day at hourUTC:00.
func (s *Service) AddDaily(name string, hourUTC int, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &jobDef{
		name: name,
		spec: fmt.Sprintf("0 %d * * *", hourUTC),
		fn:   fn,
	})
}

// Start schedules all registered jobs. The process clock is UTC.
func (s *Service) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithLocation(time.UTC))

	for _, j := range s.jobs {
		if err := s.addLocked(j); err != nil {
			s.runCancel()
			s.c = nil
			return fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}

	s.c.Start()
	s.started = true
	s.log.Info("scheduler started", logx.Int("jobs", len(s.jobs)))

	for _, j := range s.jobs {
		if j.immediate {
			go s.invoke(j)
		}
	}
	return nil
}

func (s *Service) addLocked(j *jobDef) error {
	id, err := s.c.AddFunc(j.spec, func() { s.invoke(j) })
	if err != nil {
		return err
	}
	j.entryID = id
	return nil
}

// invoke runs one job firing with the overlap guard and panic fence.
func (s *Service) invoke(j *jobDef) {
	if !j.running.CompareAndSwap(false, true) {
		s.log.Warn("previous run still going; firing skipped", logx.String("job", j.name))
		return
	}
	defer j.running.Store(false)

	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			// A panicking run must not take future firings with it.
			s.log.Error("job panicked",
				logx.String("job", j.name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	j.mu.Lock()
	j.lastRun = start
	j.runs++
	j.mu.Unlock()

	s.log.Debug("job started", logx.String("job", j.name))
	j.fn(ctx)
	s.log.Debug("job finished", logx.String("job", j.name), logx.Duration("took", time.Since(start)))
}

// SetInterval changes an interval job's period at runtime (config
// reload). No-op for unknown or non-interval jobs.
func (s *Service) SetInterval(name string, every time.Duration) {
	spec := fmt.Sprintf("@every %s", every)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.name != name || j.spec == spec {
			continue
		}
		j.spec = spec
		if s.started && s.c != nil {
			s.c.Remove(j.entryID)
			if err := s.addLocked(j); err != nil {
				s.log.Error("rescheduling failed", logx.String("job", j.name), logx.Err(err))
				return
			}
			s.log.Info("job rescheduled", logx.String("job", j.name), logx.Duration("every", every))
		}
		return
	}
}

// SetDailyHour changes a daily job's firing hour at runtime.
func (s *Service) SetDailyHour(name string, hourUTC int) {
	spec := fmt.Sprintf("0 %d * * *", hourUTC)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.name != name || j.spec == spec {
			continue
		}
		j.spec = spec
		if s.started && s.c != nil {
			s.c.Remove(j.entryID)
			if err := s.addLocked(j); err != nil {
				s.log.Error("rescheduling failed", logx.String("job", j.name), logx.Err(err))
				return
			}
			s.log.Info("job rescheduled", logx.String("job", j.name), logx.Int("hour_utc", hourUTC))
		}
		return
	}
}

// Snapshot reports all jobs for the status surface.
func (s *Service) Snapshot() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		j.mu.Lock()
		st := JobStatus{
			Name:    j.name,
			Spec:    j.spec,
			LastRun: j.lastRun,
			Runs:    j.runs,
			Running: j.running.Load(),
		}
		j.mu.Unlock()
		if s.c != nil {
			if e := s.c.Entry(j.entryID); e.ID != 0 {
				st.NextRun = e.Next
			}
		}
		out = append(out, st)
	}
	return out
}

// Stop halts scheduling and waits for in-flight runs up to ctx deadline.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	c := s.c
	s.c = nil
	cancel := s.runCancel
	s.runCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		stopCtx := c.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	s.log.Info("scheduler stopped")
}
