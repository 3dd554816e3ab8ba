package task

import (
	"github.com/haierkeys/markdown-workspace-service/internal/app"

	"go.uber.org/zap"
)

// Manager creates and drives every registered task.
type Manager struct {
	scheduler *Scheduler
	app       *app.App
	logger    *zap.Logger
}

func NewManager(logger *zap.Logger, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, appContainer),
		app:       appContainer,
		logger:    logger,
	}
}

// RegisterTasks instantiates all registered task factories.
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t != nil {
			m.scheduler.AddTask(t)
		}
	}
	return nil
}

// Start launches all registered tasks.
func (m *Manager) Start() {
	m.scheduler.Start()
}
