// Package dao implements the repository interfaces on GORM over sqlite.
package dao

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/model"
	"github.com/haierkeys/markdown-workspace-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Database is the storage configuration consumed by NewDBEngine.
type Database struct {
	// Path sqlite database file path, ":memory:" for tests.
	Path string
	// TablePrefix optional table name prefix.
	TablePrefix string
	// MaxIdleConns idle pool size.
	MaxIdleConns int
	// MaxOpenConns open connection cap. SQLite writes are serialized by the
	// write queue, so one open connection is enough.
	MaxOpenConns int
	// Debug enables gorm query logging.
	Debug bool
}

// Dao owns the gorm handle and the serialized write queue. All repositories
// embed it and route their writes through ExecuteWrite.
type Dao struct {
	db     *gorm.DB
	queue  *writequeue.Queue
	logger *zap.Logger
}

func New(db *gorm.DB, queue *writequeue.Queue, lg *zap.Logger) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{db: db, queue: queue, logger: lg}
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

// ExecuteWrite runs fn on the write queue, so concurrent writers never
// contend on the sqlite lock. With no queue it runs fn directly.
func (d *Dao) ExecuteWrite(ctx context.Context, fn func(db *gorm.DB) error) error {
	if d.queue == nil {
		return fn(d.db.WithContext(ctx))
	}
	return d.queue.Submit(ctx, func() error {
		return fn(d.db.WithContext(ctx))
	})
}

// Transaction runs fn inside a gorm transaction on the write queue.
func (d *Dao) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.ExecuteWrite(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// NewDBEngine opens the sqlite database and migrates the workspace tables.
func NewDBEngine(c Database) (*gorm.DB, error) {
	if c.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
			return nil, err
		}
	}

	logMode := logger.Default.LogMode(logger.Silent)
	if c.Debug {
		logMode = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(c.Path), &gorm.Config{
		Logger: logMode,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	maxIdle := c.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 2
	}
	maxOpen := c.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	if err := model.AutoMigrateAll(db); err != nil {
		return nil, err
	}

	return db, nil
}
