// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskRunning  = errors.New("task is already running")
)

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// Task describes a scheduled task.
type Task struct {
	ID          string
	Name        string
	Description string
	Cron        string // five-field cron expression, e.g. "0 4 * * *"
	Func        TaskFunc
}

// TaskInfo describes a registered task for API responses.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cron        string     `json:"cron"`
	LastRun     *time.Time `json:"lastRun,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	NextRun     *time.Time `json:"nextRun,omitempty"`
	Running     bool       `json:"running"`
}

type taskEntry struct {
	task      Task
	job       gocron.Job
	lastRun   *time.Time
	lastError string
	running   bool
}

// Scheduler manages background scheduled tasks. Task functions receive a
// context that is cancelled by Stop.
type Scheduler struct {
	gocron gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
	tasks  map[string]*taskEntry
	mu     sync.RWMutex
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// New creates a new scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: gs,
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*taskEntry),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Register adds a task. Jobs never overlap with themselves.
func (s *Scheduler) Register(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task with ID %q already registered", task.ID)
	}

	job, err := s.gocron.NewJob(
		gocron.CronJob(task.Cron, false),
		gocron.NewTask(func() { s.execute(task.ID) }),
		gocron.WithName(task.Name),
		gocron.WithTags(task.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job for task %q: %w", task.ID, err)
	}

	s.tasks[task.ID] = &taskEntry{task: task, job: job}
	s.logger.Info().Str("id", task.ID).Str("cron", task.Cron).Msg("Registered task")
	return nil
}

// execute runs a task unless it is already running.
func (s *Scheduler) execute(id string) {
	s.mu.Lock()
	entry, exists := s.tasks[id]
	if !exists || entry.running {
		s.mu.Unlock()
		return
	}
	entry.running = true
	s.mu.Unlock()

	start := time.Now()
	err := entry.task.Func(s.ctx)
	duration := time.Since(start)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &start
	entry.lastError = ""
	if err != nil {
		entry.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Dur("duration", duration).Msg("Task failed")
		return
	}
	s.logger.Info().Str("id", id).Dur("duration", duration).Msg("Task completed")
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.mu.RLock()
	count := len(s.tasks)
	s.mu.RUnlock()

	s.logger.Info().Int("tasks", count).Msg("Starting scheduler")
	s.gocron.Start()
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()
	err := s.gocron.Shutdown()
	s.wg.Wait()
	return err
}

// RunNow starts a task immediately in the background.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	entry, exists := s.tasks[id]
	running := exists && entry.running
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if running {
		return fmt.Errorf("%w: %q", ErrTaskRunning, id)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(id)
	}()
	return nil
}

// ListTasks returns every registered task sorted by ID.
func (s *Scheduler) ListTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]TaskInfo, 0, len(s.tasks))
	for _, entry := range s.tasks {
		tasks = append(tasks, entry.info())
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// GetTask returns a single task.
func (s *Scheduler) GetTask(id string) (*TaskInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.tasks[id]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	info := entry.info()
	return &info, nil
}

func (e *taskEntry) info() TaskInfo {
	info := TaskInfo{
		ID:          e.task.ID,
		Name:        e.task.Name,
		Description: e.task.Description,
		Cron:        e.task.Cron,
		LastRun:     e.lastRun,
		LastError:   e.lastError,
		Running:     e.running,
	}
	if next, err := e.job.NextRun(); err == nil && !next.IsZero() {
		info.NextRun = &next
	}
	return info
}
