// Package config loads the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	pkgconfig "github.com/weiawesome/genguid/pkg/config"
)

// Generation log drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// EnvPrefix namespaces environment overrides, e.g. GENGUID_DATA_DIR.
const EnvPrefix = "GENGUID"

type Config struct {
	DataDir       string              `mapstructure:"data_dir"`
	Factory       string              `mapstructure:"factory"`
	Formatters    []string            `mapstructure:"formatters"`
	GenerationLog GenerationLogConfig `mapstructure:"generation_log"`
	Observers     []string            `mapstructure:"observers"`
	Log           LogConfig           `mapstructure:"log"`
}

type GenerationLogConfig struct {
	Driver     string `mapstructure:"driver"`
	FileName   string `mapstructure:"file_name"`
	SQLiteFile string `mapstructure:"sqlite_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultDataDir is $HOME/.genguid, or .genguid when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".genguid"
	}
	return filepath.Join(home, ".genguid")
}

// Load reads the config file at path (or genguid.yaml from the working
// directory and the default data directory when path is empty), applies
// defaults and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.Options{
		File:      path,
		Paths:     []string{".", DefaultDataDir()},
		Name:      "genguid",
		EnvPrefix: EnvPrefix,
	})
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("factory", "standard")
	v.SetDefault("formatters", []string{"compact", "hyphenated"})
	v.SetDefault("generation_log.driver", DriverJSONFile)
	v.SetDefault("generation_log.file_name", "log.json")
	v.SetDefault("generation_log.sqlite_file", "log.db")
	v.SetDefault("observers", []string{"counter", "audit"})
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for missing or unsupported values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Factory, validation.Required),
		validation.Field(&c.Formatters, validation.Required),
		validation.Field(&c.GenerationLog),
		validation.Field(&c.Log),
	)
}

func (c GenerationLogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverJSONFile, DriverSQLite, DriverMemory)),
		validation.Field(&c.FileName, validation.When(c.Driver == DriverJSONFile, validation.Required)),
		validation.Field(&c.SQLiteFile, validation.When(c.Driver == DriverSQLite, validation.Required)),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "off")),
	)
}

// JSONLogPath is the JSON generation log file.
func (c *Config) JSONLogPath() string { return c.resolve(c.GenerationLog.FileName) }

// SQLitePath is the SQLite generation log database.
func (c *Config) SQLitePath() string { return c.resolve(c.GenerationLog.SQLiteFile) }

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
