// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one run of a scheduled job
type Task func(ctx context.Context) error

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	// JobTimeout bounds a single run
	JobTimeout time.Duration
	// Location is the time zone schedules are evaluated in
	Location *time.Location
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		JobTimeout: 10 * time.Minute,
		Location:   time.Local,
	}
}

// specParser accepts an optional seconds field and descriptors such as @daily
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type job struct {
	name    string
	spec    string
	task    Task
	entryID cron.EntryID
}

// Scheduler runs named jobs on cron schedules. A job never overlaps with
// its own previous run
type Scheduler struct {
	config SchedulerConfig
	cron   *cron.Cron
	logger *zap.Logger

	mu        sync.Mutex
	jobs      map[string]*job
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config: config,
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithParser(specParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers task under name to run on spec
func (s *Scheduler) AddJob(name, spec string, task Task) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{name: name, spec: spec, task: task}
	entryID, err := s.cron.AddFunc(spec, func() {
		_ = s.run(s.ctx, j)
	})
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}
	j.entryID = entryID
	s.jobs[name] = j

	s.logger.Info("Job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// RunNow runs a registered job immediately and returns its error
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, j)
}

// NextRun returns when the job runs next. It is zero until Start
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.cron.Entry(j.entryID).Next, nil
}

// Jobs returns the registered job names in order
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		s.cancel()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// run executes one job with a timeout, turning a panic into an error
func (s *Scheduler) run(ctx context.Context, j *job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		if err != nil {
			s.logger.Error("Job failed",
				zap.String("job", j.name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("Job completed",
			zap.String("job", j.name),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	return j.task(ctx)
}
