package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/philtim/timeplanner/calendar"
	"github.com/philtim/timeplanner/logging"
	"github.com/philtim/timeplanner/storage"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "TIMEPLANNER_CONFIG"

// Theme names
const (
	ThemeAuto     = "auto"
	ThemeDark     = "dark"
	ThemeLight    = "light"
	ThemeTerminal = "terminal"
)

// ErrNoZone is returned by DetectZone when the system zone cannot be named
var ErrNoZone = errors.New("could not determine the system timezone")

// RedisConfig is the redis backend connection
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// StorageConfig selects where the zone list is persisted
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path,omitempty"`
	Redis   RedisConfig `yaml:"redis"`
}

// CalendarConfig fills the exported calendar event
type CalendarConfig struct {
	Title    string `yaml:"title"`
	Duration string `yaml:"duration"`
	Footer   string `yaml:"footer"`
}

// ShareConfig is the base of share links
type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
}

// GeoNamesConfig controls the city name database
type GeoNamesConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig is the log level and destination
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Theme    string         `yaml:"theme"`
	Calendar CalendarConfig `yaml:"calendar"`
	Share    ShareConfig    `yaml:"share"`
	GeoNames GeoNamesConfig `yaml:"geonames"`
	Log      LogConfig      `yaml:"log"`

	path string
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "timeplanner",
			},
		},
		Theme: ThemeAuto,
		Calendar: CalendarConfig{
			Title:    calendar.DefaultTitle,
			Duration: calendar.DefaultDuration.String(),
			Footer:   calendar.DefaultFooter,
		},
		Share:    ShareConfig{BaseURL: calendar.DefaultShareURL},
		GeoNames: GeoNamesConfig{Enabled: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path (DefaultPath when empty).
// If the file doesn't exist, it creates a default one.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their defaults
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Validate checks backend, theme, duration and log level values
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendRedis, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend '%s'", c.Storage.Backend)
	}
	if c.Storage.Backend == storage.BackendRedis && c.Storage.Redis.Addr == "" {
		return fmt.Errorf("redis backend needs storage.redis.addr")
	}

	switch c.Theme {
	case ThemeAuto, ThemeDark, ThemeLight, ThemeTerminal:
	default:
		return fmt.Errorf("unknown theme '%s'", c.Theme)
	}

	if _, err := c.EventDuration(); err != nil {
		return err
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
		}
	}

	return nil
}

// EventDuration parses calendar.duration
func (c *Config) EventDuration() (time.Duration, error) {
	if c.Calendar.Duration == "" {
		return calendar.DefaultDuration, nil
	}
	d, err := time.ParseDuration(c.Calendar.Duration)
	if err != nil {
		return 0, fmt.Errorf("invalid calendar duration '%s': %w", c.Calendar.Duration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("calendar duration must be positive, got '%s'", c.Calendar.Duration)
	}
	return d, nil
}

// StorageOptions maps the storage section to backend options. An empty path
// resolves to a file under ~/.local/share/timeplanner.
func (c *Config) StorageOptions() (storage.Options, error) {
	path := c.Storage.Path
	if path == "" && (c.Storage.Backend == storage.BackendFile || c.Storage.Backend == storage.BackendSQLite) {
		dir, err := dataDir()
		if err != nil {
			return storage.Options{}, err
		}
		name := "state.json"
		if c.Storage.Backend == storage.BackendSQLite {
			name = "state.db"
		}
		path = filepath.Join(dir, name)
	}
	return storage.Options{
		Backend:       c.Storage.Backend,
		Path:          expandHome(path),
		RedisAddr:     c.Storage.Redis.Addr,
		RedisPassword: c.Storage.Redis.Password,
		RedisDB:       c.Storage.Redis.DB,
		RedisPrefix:   c.Storage.Redis.Prefix,
	}, nil
}

// LogOptions maps the log section; stderr is used when no file is set and
// toStderr is true
func (c *Config) LogOptions(toStderr bool) logging.Options {
	return logging.Options{
		Level:  c.Log.Level,
		File:   expandHome(c.Log.File),
		Stderr: toStderr,
	}
}

// IsDark resolves the theme to dark or light at the given local time
func (c *Config) IsDark(now time.Time) bool {
	switch c.Theme {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return IsDarkAt(now.Hour())
	}
}

// IsDarkAt reports whether hour falls in the evening/night range 18:00 to 06:00
func IsDarkAt(hour int) bool {
	return hour >= 18 || hour < 6
}

// DefaultPath returns $TIMEPLANNER_CONFIG or ~/.config/timeplanner.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "timeplanner.yaml"), nil
}

func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "timeplanner"), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// Save writes the configuration back to its file atomically
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = p
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configDir := filepath.Dir(c.path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Atomic write: write to temp file, then rename
	tempFile, err := os.CreateTemp(configDir, "timeplanner-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, c.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
