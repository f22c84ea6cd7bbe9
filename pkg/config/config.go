// Package config loads the starbridge TOML configuration file.
//
//	[render]
//	mirror_x = true
//	max_elements = 20000
//	time_budget = "10s"
//	workers = 4
//	width = 1200
//	height = 900
//
//	[check]
//	tolerance = 0.25
//	backend = "vector"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[log]
//	level = "debug"
//
// Missing keys keep their zero value; callers apply defaults after flags
// have been merged in.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/starbridge/pkg/errors"
)

// FileName is the file looked up in the user config directory.
const FileName = "config.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as a string such as "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the decoded file.
type Config struct {
	Render Render `toml:"render"`
	Check  Check  `toml:"check"`
	Cache  Cache  `toml:"cache"`
	Log    Log    `toml:"log"`
}

// Render holds interactive renderer settings.
type Render struct {
	MirrorX     *bool    `toml:"mirror_x"`
	MaxElements int      `toml:"max_elements"`
	TimeBudget  Duration `toml:"time_budget"`
	Workers     int      `toml:"workers"`
	Width       int      `toml:"width"`
	Height      int      `toml:"height"`
	Title       string   `toml:"title"`
}

// Check holds consistency settings.
type Check struct {
	Tolerance float64 `toml:"tolerance"`
	Backend   string  `toml:"backend"`
}

// Cache selects and configures the artifact cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	Password  string   `toml:"redis_password"`
	DB        int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates TOML data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Check.Tolerance < 0 || c.Check.Tolerance > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "check tolerance %v outside [0, 1]", c.Check.Tolerance)
	}
	if c.Render.MaxElements < 0 || c.Render.Workers < 0 || c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render settings must not be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "log level %q (must be one of: debug, info, warn, error)", c.Log.Level)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/starbridge/config.toml, falling back
// to the user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "starbridge", FileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "starbridge", FileName), nil
}

// LoadDefault loads the file at DefaultPath, returning an empty config when
// there is none.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{}, nil
	}
	cfg, err := Load(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return &Config{}, nil
	}
	return cfg, err
}
