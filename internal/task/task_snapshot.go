package task

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/app"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SnapshotTask writes periodic backup archives. It triggers either when
// workspace changes are pending, or when the cron schedule says a
// snapshot is due even without changes.
type SnapshotTask struct {
	app    *app.App
	logger *zap.Logger

	mu          sync.Mutex
	nextRunTime time.Time
}

func (t *SnapshotTask) Name() string {
	return "SnapshotBackup"
}

func (t *SnapshotTask) LoopInterval() time.Duration {
	return t.app.Config().GetSnapshotInterval()
}

func (t *SnapshotTask) IsStartupRun() bool {
	return false
}

func (t *SnapshotTask) Run(ctx context.Context) error {
	if t.app.BackupService == nil {
		return nil
	}

	t.mu.Lock()
	scheduled := !t.nextRunTime.IsZero() && t.nextRunTime.Before(time.Now())
	t.mu.Unlock()

	pending := t.app.BackupService.SnapshotPending()
	if !scheduled && !pending {
		return nil
	}

	path, err := t.app.BackupService.CreateSnapshot(ctx)
	if err != nil {
		return err
	}

	t.logger.Info("snapshot created",
		zap.String("path", path),
		zap.Bool("isScheduled", scheduled),
		zap.Bool("isPending", pending))

	if scheduled {
		t.calculateNextRunTime()
	}
	return nil
}

// calculateNextRunTime resolves the cron strategy into the next
// scheduled snapshot time.
func (t *SnapshotTask) calculateNextRunTime() {
	cfg := t.app.Config().App

	expr := ""
	switch cfg.SnapshotCronStrategy {
	case "daily":
		expr = "0 0 * * *"
	case "weekly":
		expr = "0 0 * * 0"
	case "monthly":
		expr = "0 0 1 * *"
	case "custom":
		expr = cfg.SnapshotCronExpression
	}
	if expr == "" {
		t.mu.Lock()
		t.nextRunTime = time.Time{}
		t.mu.Unlock()
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		t.logger.Error("Failed to parse cron expression", zap.String("expr", expr), zap.Error(err))
		t.mu.Lock()
		t.nextRunTime = time.Time{}
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	t.nextRunTime = schedule.Next(time.Now())
	t.mu.Unlock()
}

// NewSnapshotTask creates the snapshot task and arms its schedule.
func NewSnapshotTask(appContainer *app.App) (Task, error) {
	t := &SnapshotTask{
		app:    appContainer,
		logger: appContainer.Logger(),
	}
	t.calculateNextRunTime()
	return t, nil
}

func init() {
	RegisterWithApp(func(appContainer *app.App) (Task, error) {
		return NewSnapshotTask(appContainer)
	})
}
