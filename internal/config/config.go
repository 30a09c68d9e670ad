package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/hordewave/internal/difficulty"
	"github.com/udisondev/hordewave/internal/model"
)

// Catalog sources.
const (
	CatalogSourceFile     = "file"
	CatalogSourceDatabase = "database"
)

// Server holds all configuration for the hordewave server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	Wave       Wave              `yaml:"wave"`
	Difficulty difficulty.Tuning `yaml:"difficulty"`
	Catalog    Catalog           `yaml:"catalog"`
	Spawn      Spawn             `yaml:"spawn"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	Feed Feed `yaml:"feed"`
}

// Wave configures the scheduler and its real-time driver.
type Wave struct {
	DurationSeconds  float64       `yaml:"duration_seconds"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	MaxDelta         time.Duration `yaml:"max_delta"` // clamp for long stalls
	MaxSpawnsPerTick int           `yaml:"max_spawns_per_tick"`
	Rearm            string        `yaml:"rearm"` // restart | proportional | deferred
	SpawnOnStart     bool          `yaml:"spawn_on_start"`
	SwapOnWave       bool          `yaml:"swap_on_wave"`
	AutoStart        bool          `yaml:"auto_start"`
}

// Catalog tells where monster definitions come from.
type Catalog struct {
	Source string `yaml:"source"` // file | database
	Path   string `yaml:"path"`
	// Sync writes the file catalog into the database when fingerprints differ.
	Sync bool `yaml:"sync"`
}

// Spawn configures the executor side.
type Spawn struct {
	PositionPolicy string           `yaml:"position_policy"` // cycle | random | external
	Points         []model.Position `yaml:"points"`

	// Spawn journal (requires database)
	Journal              bool          `yaml:"journal"`
	JournalFlushInterval time.Duration `yaml:"journal_flush_interval"`
	JournalQueueSize     int           `yaml:"journal_queue_size"`
	JournalBatchSize     int           `yaml:"journal_batch_size"`
}

// Feed configures the websocket feed.
type Feed struct {
	Enabled       bool          `yaml:"enabled"`
	BindAddress   string        `yaml:"bind_address"`
	Port          int           `yaml:"port"`
	Path          string        `yaml:"path"`
	SendQueueSize int           `yaml:"send_queue_size"` // per-subscriber outbox capacity
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port of the feed listener.
func (f Feed) Addr() string {
	return fmt.Sprintf("%s:%d", f.BindAddress, f.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel: "info",
		Wave: Wave{
			DurationSeconds:  30,
			TickInterval:     time.Second / 60,
			MaxDelta:         250 * time.Millisecond,
			MaxSpawnsPerTick: 8,
			Rearm:            "restart",
			SpawnOnStart:     true,
			AutoStart:        true,
		},
		Difficulty: difficulty.DefaultTuning(),
		Catalog: Catalog{
			Source: CatalogSourceFile,
			Path:   "config/monsters.yaml",
		},
		Spawn: Spawn{
			PositionPolicy:       "cycle",
			JournalFlushInterval: time.Second,
			JournalQueueSize:     1024,
			JournalBatchSize:     256,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "hordewave",
			Password: "hordewave",
			DBName:   "hordewave",
			SSLMode:  "disable",
		},
		Feed: Feed{
			Enabled:       true,
			BindAddress:   "0.0.0.0",
			Port:          7780,
			Path:          "/feed",
			SendQueueSize: 256,
			WriteTimeout:  5 * time.Second,
		},
	}
}

// NeedsDatabase reports whether any enabled component uses PostgreSQL.
func (s Server) NeedsDatabase() bool {
	return s.Catalog.Source == CatalogSourceDatabase || s.Catalog.Sync || s.Spawn.Journal
}

// Validate checks values that would otherwise fail late at runtime.
func (s Server) Validate() error {
	var errs []error

	switch s.Catalog.Source {
	case CatalogSourceFile:
		if s.Catalog.Path == "" {
			errs = append(errs, errors.New("catalog.path is required for file source"))
		}
	case CatalogSourceDatabase:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", s.Catalog.Source))
	}

	if s.Wave.DurationSeconds < 0 {
		errs = append(errs, fmt.Errorf("wave.duration_seconds must be >= 0, got %v", s.Wave.DurationSeconds))
	}
	if s.Wave.MaxSpawnsPerTick < 1 {
		errs = append(errs, fmt.Errorf("wave.max_spawns_per_tick must be >= 1, got %d", s.Wave.MaxSpawnsPerTick))
	}
	if err := s.Difficulty.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("difficulty: %w", err))
	}
	if s.Feed.Enabled && (s.Feed.Port < 0 || s.Feed.Port > 65535) {
		errs = append(errs, fmt.Errorf("feed.port out of range: %d", s.Feed.Port))
	}

	return errors.Join(errs...)
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
