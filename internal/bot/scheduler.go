package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/logger"
)

// ErrSchedulerRunning is returned by Start on a running scheduler.
var ErrSchedulerRunning = errors.New("scheduler is already running")

// TaskRecorder records the outcome of scheduled task runs.
type TaskRecorder interface {
	RecordTaskRun(task string, err error)
}

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	recorder  TaskRecorder

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	// ctxMu guards ctx separately from mu so jobs can start while Stop waits on them.
	ctxMu sync.Mutex
	ctx   context.Context
}

// NewScheduler creates a new scheduler instance using gocron.
// recorder may be nil.
func NewScheduler(log *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc, recorder TaskRecorder) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")

	s, err := gocron.NewScheduler(
		gocron.WithLogger(logger.NewGocronLogger(log)),
		gocron.WithStopTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       cfg,
		taskMap:   taskMap,
		recorder:  recorder,
	}, nil
}

// Start schedules all enabled tasks and starts the scheduler. Tasks receive
// a context derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	taskCtx, cancel := context.WithCancel(ctx)
	s.ctxMu.Lock()
	s.ctx = taskCtx
	s.ctxMu.Unlock()
	s.cancel = cancel

	scheduled := 0
	if s.cfg == nil || len(s.cfg.Tasks) == 0 {
		s.logger.Warn("No scheduler tasks configured.")
	} else {
		for taskName, taskConfig := range s.cfg.Tasks {
			if s.schedule(taskName, taskConfig) {
				scheduled++
			}
		}
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduled)
	return nil
}

func (s *Scheduler) schedule(name string, cfg config.TaskConfig) bool {
	if !cfg.Enabled {
		s.logger.Info("Skipping disabled task", "task_name", name)
		return false
	}
	taskFunc, exists := s.taskMap[name]
	if !exists {
		s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", name)
		return false
	}
	if cfg.Schedule == "" {
		s.logger.Warn("Scheduled task enabled but has empty schedule, skipping", "task_name", name)
		return false
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(cfg.Schedule, true),
		gocron.NewTask(s.runTask, name, taskFunc),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to schedule task", "task_name", name, "schedule", cfg.Schedule, "error", err)
		return false
	}

	s.logger.Info("Scheduled task", "task_name", name, "schedule", cfg.Schedule)
	return true
}

// runTask wraps a task with logging and outcome recording.
func (s *Scheduler) runTask(name string, taskFunc tasks.ScheduledTaskFunc) {
	s.ctxMu.Lock()
	ctx := s.ctx
	s.ctxMu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	s.logger.InfoContext(ctx, "Running scheduled task", "task_name", name)
	start := time.Now()

	err := taskFunc(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled task failed", "task_name", name, "error", err)
	}
	if s.recorder != nil {
		s.recorder.RecordTaskRun(name, err)
	}

	s.logger.InfoContext(ctx, "Finished scheduled task", "task_name", name, "duration", time.Since(start))
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

// Stop cancels running tasks and shuts the scheduler down, waiting for
// jobs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
