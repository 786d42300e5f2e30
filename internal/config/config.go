// Package config loads taskdoc configuration.
//
// Configuration comes from a single optional YAML file, chosen by:
//   - the --config flag, or
//   - the TASKDOC_CONFIG environment variable, or
//   - ~/.config/taskdoc/config.yaml
//
// A missing file is not an error; defaults apply.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "TASKDOC_CONFIG"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// Config is the full taskdoc configuration.
type Config struct {
	// DataDir holds the SQLite database and the log file.
	DataDir string `yaml:"data_dir"`

	Storage     StorageConfig     `yaml:"storage"`
	Editor      EditorConfig      `yaml:"editor"`
	Host        HostConfig        `yaml:"host"`
	Watch       WatchConfig       `yaml:"watch"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Log         LogConfig         `yaml:"log"`
}

// StorageConfig selects the task store.
type StorageConfig struct {
	// Driver is one of sqlite, postgres, mysql, mongo.
	Driver string `yaml:"driver"`

	// DSN is the connection string. For sqlite an empty DSN means
	// <data_dir>/taskdoc.db.
	DSN string `yaml:"dsn"`

	// Database is the mongo database name.
	Database string `yaml:"database"`
}

// EditorConfig tunes the editor core.
type EditorConfig struct {
	// EmitDelay is the quiet period before the editor hands its content
	// to the save path.
	EmitDelay time.Duration `yaml:"emit_delay"`

	// Placeholder labels the trailing "add block" affordance.
	Placeholder string `yaml:"placeholder"`
}

// HostConfig tunes the description save path.
type HostConfig struct {
	SaveDelay   time.Duration `yaml:"save_delay"`
	SaveTimeout time.Duration `yaml:"save_timeout"`
}

// WatchConfig tunes external change detection.
type WatchConfig struct {
	// PollInterval applies to drivers without a watchable file.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// MaintenanceConfig schedules background housekeeping.
type MaintenanceConfig struct {
	// Checkpoint is a cron spec for the sqlite WAL checkpoint. Empty
	// disables it.
	Checkpoint string `yaml:"checkpoint"`
}

// LogConfig configures slog.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(homeDir, ".local", "share", "taskdoc"),
		Storage: StorageConfig{
			Driver:   DriverSQLite,
			Database: "taskdoc",
		},
		Editor: EditorConfig{
			EmitDelay:   100 * time.Millisecond,
			Placeholder: "Click to add a block",
		},
		Host: HostConfig{
			SaveDelay:   2 * time.Second,
			SaveTimeout: 10 * time.Second,
		},
		Watch: WatchConfig{
			PollInterval: 2 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			Checkpoint: "@every 10m",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file to load: explicit if set, otherwise
// $TASKDOC_CONFIG, otherwise the per-user default.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "taskdoc", "config.yaml")
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.Storage.Driver == DriverSQLite {
		cfg.Storage.DSN = expandHome(cfg.Storage.DSN)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres, DriverMySQL:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver))
		}
	case DriverMongo:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for driver \"mongo\""))
		}
		if c.Storage.Database == "" {
			errs = append(errs, errors.New("storage.database is required for driver \"mongo\""))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	for name, d := range map[string]time.Duration{
		"editor.emit_delay":   c.Editor.EmitDelay,
		"host.save_delay":     c.Host.SaveDelay,
		"host.save_timeout":   c.Host.SaveTimeout,
		"watch.poll_interval": c.Watch.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if c.Maintenance.Checkpoint != "" {
		if _, err := cron.ParseStandard(c.Maintenance.Checkpoint); err != nil {
			errs = append(errs, fmt.Errorf("maintenance.checkpoint: %w", err))
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// SQLitePath returns the database file for the sqlite driver.
func (c *Config) SQLitePath() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(c.DataDir, "taskdoc.db")
}

// LogPath is where the terminal UI writes its log.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "taskdoc.log")
}

func expandHome(p string) string {
	if p == "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	p = strings.ReplaceAll(p, "${HOME}", homeDir)
	if p == "~" {
		return homeDir
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir, p[2:])
	}
	return p
}
