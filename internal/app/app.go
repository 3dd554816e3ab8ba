// Package app provides the application container wiring all dependencies.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/dao"
	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/service"
	pkgapp "github.com/haierkeys/markdown-workspace-service/pkg/app"
	"github.com/haierkeys/markdown-workspace-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires configuration, storage, the workspace mirror and the
// editing services together.
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	writeQueue *writequeue.Queue

	FileRepo      domain.FileRepository
	FolderRepo    domain.FolderRepository
	SettingRepo   domain.SettingRepository
	WorkspaceRepo domain.WorkspaceRepository

	WorkspaceService service.WorkspaceService
	DraftService     service.DraftService
	SettingService   service.SettingService
	BackupService    service.BackupService
	ExportService    service.ExportService
	ImportService    service.ImportService

	StartTime time.Time

	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp builds the container and loads the workspace mirror.
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueue = writequeue.New(&wqConfig, logger)

	a.Dao = dao.New(db, a.writeQueue, logger)

	a.FileRepo = dao.NewFileRepository(a.Dao)
	a.FolderRepo = dao.NewFolderRepository(a.Dao)
	a.SettingRepo = dao.NewSettingRepository(a.Dao)
	a.WorkspaceRepo = dao.NewWorkspaceRepository(a.Dao)

	a.WorkspaceService = service.NewWorkspaceService(a.FileRepo, a.FolderRepo, logger)
	a.DraftService = service.NewDraftService(a.WorkspaceService, cfg.GetAutosaveDelay(), logger)
	a.SettingService = service.NewSettingService(a.SettingRepo, logger)
	a.BackupService = service.NewBackupService(
		a.FileRepo, a.FolderRepo, a.SettingRepo,
		a.WorkspaceRepo, a.WorkspaceService,
		cfg.App.SnapshotDir, cfg.App.SnapshotRetention, logger,
	)
	a.ExportService = service.NewExportService(a.FileRepo, a.FolderRepo, logger)
	a.ImportService = service.NewImportService(a.WorkspaceRepo, a.WorkspaceService, logger)

	// Every successful mutation marks a snapshot as pending.
	a.WorkspaceService.SetOnChange(a.BackupService.NotifyUpdated)
	// Creating a file activates it; the coordinator flushes the file it
	// moved off of.
	a.WorkspaceService.SetOnActivate(a.DraftService.FileActivated)

	if err := a.WorkspaceService.Load(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("App container initialized",
		zap.Duration("autosaveDelay", cfg.GetAutosaveDelay()),
		zap.Int("writeQueueCapacity", wqConfig.Capacity))

	return a, nil
}

// Config returns the loaded configuration.
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version returns build information.
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// DefaultShutdownTimeout bounds a Shutdown call without a deadline.
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown flushes drafts, drains the write queue and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// Pending drafts land before the queue drains.
	if a.DraftService != nil {
		if err := a.DraftService.Close(ctx); err != nil {
			a.logger.Warn("Draft flush on shutdown failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("draft close: %w", err))
		}
	}

	if a.writeQueue != nil {
		if err := a.writeQueue.Shutdown(ctx); err != nil {
			a.logger.Warn("Write queue shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue shutdown: %w", err))
		}
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed")
	return nil
}

// IsShuttingDown reports whether Shutdown has started.
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh exposes the shutdown signal for background loops.
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation registers a background operation Shutdown waits for.
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
