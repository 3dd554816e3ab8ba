// Package app provides the application container wiring all dependencies.
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/dao"
	"github.com/haierkeys/markdown-workspace-service/internal/service"
	"github.com/haierkeys/markdown-workspace-service/pkg/logger"
	"github.com/haierkeys/markdown-workspace-service/pkg/util"
	"github.com/haierkeys/markdown-workspace-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the full service configuration.
type AppConfig struct {
	File     string         `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	// RunMode gin run mode
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP listen address
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout read timeout in seconds
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout write timeout in seconds
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// LogConfig logging settings.
type LogConfig struct {
	// Level log level, see zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File log file path, empty for stderr only
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production switches to JSON output
	Production bool `yaml:"production" default:"false"`
}

// DatabaseConfig SQLite settings.
type DatabaseConfig struct {
	// Path SQLite database file path
	Path string `yaml:"path" default:"storage/database/workspace.db"`
	// TablePrefix table prefix
	TablePrefix string `yaml:"table-prefix"`
	// MaxIdleConns idle connection cap
	MaxIdleConns int `yaml:"max-idle-conns" default:"2"`
	// MaxOpenConns open connection cap, SQLite wants 1 writer
	MaxOpenConns int `yaml:"max-open-conns" default:"1"`
	// Debug enables gorm statement logging
	Debug bool `yaml:"debug"`
}

// AppSettings workspace behavior settings.
type AppSettings struct {
	// DefaultContextTimeout per-request timeout in seconds
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// AutosaveDelay debounce window before a draft is persisted
	AutosaveDelay string `yaml:"autosave-delay" default:"1s"`
	// SnapshotDir directory for periodic backup archives
	SnapshotDir string `yaml:"snapshot-dir" default:"storage/backups"`
	// SnapshotRetention how many snapshot archives to keep
	SnapshotRetention int `yaml:"snapshot-retention" default:"10"`
	// SnapshotInterval how often the backup task checks for pending changes
	SnapshotInterval string `yaml:"snapshot-interval" default:"60s"`
	// SnapshotCronStrategy when to force a snapshot regardless of changes:
	// daily, weekly, monthly or custom
	SnapshotCronStrategy string `yaml:"snapshot-cron-strategy" default:"daily"`
	// SnapshotCronExpression cron expression used with the custom strategy
	SnapshotCronExpression string `yaml:"snapshot-cron-expression"`

	// Write Queue settings
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"256"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
}

// LoadConfig loads the config file at f. A missing file is not an
// error; the defaults describe a runnable local setup.
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, realpath, nil
		}
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// Fill fields the YAML left at their zero value.
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save writes the config back to its file.
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetDatabaseConfig maps the YAML section onto the dao settings.
func (c *AppConfig) GetDatabaseConfig() dao.Database {
	return dao.Database{
		Path:         c.Database.Path,
		TablePrefix:  c.Database.TablePrefix,
		MaxIdleConns: c.Database.MaxIdleConns,
		MaxOpenConns: c.Database.MaxOpenConns,
		Debug:        c.Database.Debug,
	}
}

// GetLoggerConfig maps the YAML section onto the logger settings.
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// GetWriteQueueConfig builds the write queue settings.
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.App.WriteQueueCapacity > 0 {
		cfg.Capacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	return cfg
}

// GetAutosaveDelay returns the draft debounce window.
func (c *AppConfig) GetAutosaveDelay() time.Duration {
	if d, err := util.ParseDuration(c.App.AutosaveDelay); err == nil && d > 0 {
		return d
	}
	return service.DefaultAutosaveDelay
}

// GetSnapshotInterval returns the backup task loop interval.
func (c *AppConfig) GetSnapshotInterval() time.Duration {
	if d, err := util.ParseDuration(c.App.SnapshotInterval); err == nil && d > 0 {
		return d
	}
	return time.Minute
}

// GetContextTimeout returns the per-request timeout.
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}
