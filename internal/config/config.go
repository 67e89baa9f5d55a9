// Package config loads the algoscope configuration from YAML, an optional
// .env file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/progression"
	"github.com/example/algoscope/pkg/models"
)

// MaxFileSize caps the config file read.
const MaxFileSize = 1 << 20

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Supported storage drivers.
const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
	DriverMemory   = "memory"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Progress   ProgressConfig   `yaml:"progress"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Import     ImportConfig     `yaml:"import"`
	Curriculum CurriculumConfig `yaml:"curriculum"`
	Tracks     []models.Track   `yaml:"tracks" validate:"dive"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	// WriteRPS limits POST requests per second across all clients. 0 disables.
	WriteRPS   float64 `yaml:"write_rps" validate:"gte=0"`
	WriteBurst int     `yaml:"write_burst" validate:"gte=0"`
}

// DatabaseConfig selects the progress store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite3 sqlite postgres badger memory"`
	// DSN is a file path for sqlite drivers, a directory for badger and a
	// connection string for postgres.
	DSN            string `yaml:"dsn"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// TracingConfig toggles the stdout span exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// ProgressConfig tunes the aggregator.
type ProgressConfig struct {
	DeriveConfidence bool                  `yaml:"derive_confidence"`
	ReviewBands      []progress.ReviewBand `yaml:"review_bands" validate:"dive"`
	DueLimit         int                   `yaml:"due_limit" validate:"gte=0"`
}

// SchedulerConfig configures the review reminder sweep.
type SchedulerConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval" validate:"gte=0"`
	StartHour int           `yaml:"start_hour" validate:"min=0,max=23"`
	EndHour   int           `yaml:"end_hour" validate:"min=0,max=23"`
}

// ImportConfig holds defaults for the score importer.
type ImportConfig struct {
	SheetName   string `yaml:"sheet_name"`
	HasHeader   bool   `yaml:"has_header"`
	SkipInvalid bool   `yaml:"skip_invalid"`
}

// CurriculumConfig points at the optional foundations catalog.
type CurriculumConfig struct {
	FoundationsPath string `yaml:"foundations_path"`
}

// DefaultConfig returns a configuration that runs locally with SQLite.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			WriteRPS:        20,
			WriteBurst:      40,
		},
		Database: DatabaseConfig{
			Driver:         DriverSQLite3,
			DSN:            "data/algoscope.db",
			MigrateOnStart: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "algoscope",
		},
		Progress: ProgressConfig{
			ReviewBands: progress.DefaultReviewPolicy().Bands,
			DueLimit:    10,
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			Interval:  time.Hour,
			StartHour: 8,
			EndHour:   22,
		},
		Import: ImportConfig{
			SheetName:   "Sheet1",
			HasHeader:   true,
			SkipInvalid: true,
		},
		Tracks: progression.DefaultTracks(),
	}
}

// Load reads path (a missing file means defaults), loads .env from the
// working directory if present, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := readCapped(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readCapped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidConfig, path, MaxFileSize)
	}
	return data, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ALGOSCOPE_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("ALGOSCOPE_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("ALGOSCOPE_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ALGOSCOPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	// Invalid hours are ignored and keep the configured value.
	if v := os.Getenv("REMINDER_START_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			c.Scheduler.StartHour = h
		}
	}
	if v := os.Getenv("REMINDER_END_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			c.Scheduler.EndHour = h
		}
	}
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Database.Driver != DriverMemory && c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required for driver %s", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Scheduler.StartHour > c.Scheduler.EndHour {
		return fmt.Errorf("%w: scheduler.start_hour %d is after end_hour %d",
			ErrInvalidConfig, c.Scheduler.StartHour, c.Scheduler.EndHour)
	}
	for i := 1; i < len(c.Progress.ReviewBands); i++ {
		if c.Progress.ReviewBands[i].Below <= c.Progress.ReviewBands[i-1].Below {
			return fmt.Errorf("%w: review_bands must be sorted by below", ErrInvalidConfig)
		}
	}
	if err := progression.ValidateTracks(c.Tracks); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// IsSQL reports whether the configured driver is backed by database/sql.
func (c *Config) IsSQL() bool {
	switch c.Database.Driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
		return true
	}
	return false
}

// ProgressService converts the progress section into service options.
func (c *Config) ProgressService() progress.Config {
	pc := progress.DefaultConfig()
	pc.DeriveConfidence = c.Progress.DeriveConfidence
	if len(c.Progress.ReviewBands) > 0 {
		pc.Review = &progress.ReviewPolicy{Bands: c.Progress.ReviewBands}
	}
	return pc
}
