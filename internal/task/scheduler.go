// Package task runs the background jobs of the service.
package task

import (
	"context"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/app"

	"go.uber.org/zap"
)

// Task defines a background job.
type Task interface {
	Name() string                  // task name
	Run(ctx context.Context) error // execute once
	LoopInterval() time.Duration   // run interval
	IsStartupRun() bool            // run once at startup
}

// Scheduler drives the registered tasks until the app shuts down.
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	app    *app.App
}

func NewScheduler(logger *zap.Logger, appContainer *app.App) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		app:    appContainer,
	}
}

// AddTask registers a task with the scheduler.
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start launches every task loop.
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

func (s *Scheduler) startTask(task Task) {
	done := s.app.TrackOperation()

	go func() {
		defer done()

		if task.IsStartupRun() {
			s.runOnce(task, true)
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(task, false)
			case <-s.app.ShutdownCh():
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	}()
}

func (s *Scheduler) runOnce(task Task, startup bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task run panic",
				zap.String("name", task.Name()),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.Bool("startupRun", startup),
			zap.Error(err))
	}
}
