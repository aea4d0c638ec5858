package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	defaultWorkers    = 2
	defaultJobTimeout = 5 * time.Minute
	queueSize         = 100
)

// JobFunc is the work performed by a scheduled job
type JobFunc func(ctx context.Context) error

// Job is a named unit of background work with a cron schedule
type Job struct {
	Name     string
	Schedule string
	Run      JobFunc
}

// JobObserver records job outcomes, typically Prometheus counters
type JobObserver interface {
	ObserveJob(job string, d time.Duration, err error)
}

type jobRun struct {
	job         *Job
	triggeredAt time.Time
}

// Scheduler runs registered jobs on a bounded worker pool. Cron entries
// only enqueue work, workers do the actual execution.
type Scheduler struct {
	config   config.SchedulerConfig
	logger   *zap.Logger
	observer JobObserver

	cron     *cron.Cron
	jobs     map[string]*Job
	inFlight map[string]bool
	queue    chan *jobRun

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler. observer may be nil
func New(cfg config.SchedulerConfig, logger *zap.Logger, observer JobObserver) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	logger = logger.Named("scheduler")
	return &Scheduler{
		config:   cfg,
		logger:   logger,
		observer: observer,
		cron:     cron.New(cron.WithLogger(cronLogger{logger.Sugar()})),
		jobs:     make(map[string]*Job),
		inFlight: make(map[string]bool),
	}
}

// Register adds a job. An empty schedule registers the job for manual
// triggering only.
func (s *Scheduler) Register(name, schedule string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	job := &Job{Name: name, Schedule: schedule, Run: run}
	if schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.fire(name) }); err != nil {
			return fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, schedule, name, err)
		}
	}
	s.jobs[name] = job
	return nil
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

// Start launches the workers and the cron clock
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.queue = make(chan *jobRun, queueSize)
	s.mu.Unlock()

	// workers outlive the caller's context so Stop can drain the queue
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx, i)
	}
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Strings("jobs", s.Jobs()),
	)
	return nil
}

// Stop halts the cron clock and waits for queued jobs to finish. When ctx
// expires first, running jobs are cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()

	s.mu.Lock()
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger queues a run of the named job
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if s.inFlight[name] {
		return ErrJobAlreadyQueued
	}

	select {
	case s.queue <- &jobRun{job: job, triggeredAt: time.Now()}:
		s.inFlight[name] = true
		s.logger.Debug("Job queued", zap.String("job", name))
		return nil
	default:
		return ErrJobQueueFull
	}
}

// fire is the cron callback
func (s *Scheduler) fire(name string) {
	err := s.Trigger(name)
	switch {
	case err == nil:
	case errors.Is(err, ErrJobAlreadyQueued):
		s.logger.Info("Skipping job, previous run still in progress", zap.String("job", name))
	default:
		s.logger.Warn("Failed to queue job", zap.String("job", name), zap.Error(err))
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))
	for run := range s.queue {
		s.process(ctx, run, workerID)
	}
	s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
}

func (s *Scheduler) process(ctx context.Context, run *jobRun, workerID int) {
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, run.job.Name)
		s.mu.Unlock()
	}()

	log := s.logger.With(
		zap.String("job", run.job.Name),
		zap.Int("worker_id", workerID),
	)
	log.Info("Processing job", zap.Duration("queued_for", time.Since(run.triggeredAt)))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := s.execute(jobCtx, run.job)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveJob(run.job.Name, elapsed, err)
	}
	if err != nil {
		log.Error("Job failed", zap.Duration("duration", elapsed), zap.Error(err))
		return
	}
	log.Info("Job completed successfully", zap.Duration("duration", elapsed))
}

func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}

// cronLogger routes robfig/cron diagnostics to zap
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
