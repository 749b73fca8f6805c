// Package config loads engine configuration from defaults, an optional YAML
// file, and AIRLINE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server and simulation configuration.
type Config struct {
	Environment string       `yaml:"environment"`
	Server      ServerConfig `yaml:"server"`
	DB          DBConfig     `yaml:"db"`
	Log         LogConfig    `yaml:"log"`
	Sim         SimConfig    `yaml:"sim"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SimConfig struct {
	// TickInterval is the wall-clock time per simulated minute.
	TickInterval time.Duration `yaml:"tick_interval"`
	StartPaused  bool          `yaml:"start_paused"`

	// MaxCatchUpTicks bounds how many ticks are replayed at startup for time
	// spent offline. Zero disables catch-up.
	MaxCatchUpTicks int64 `yaml:"max_catchup_ticks"`

	// Scenario seeds an empty save with a demo airline.
	Scenario string `yaml:"scenario"`
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Environment: "development",
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB:          DBConfig{Path: "airline.db"},
		Log:         LogConfig{Level: "info"},
		Sim: SimConfig{
			TickInterval:    time.Second,
			MaxCatchUpTicks: 10080,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("AIRLINE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AIRLINE_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("AIRLINE_HTTP_BIND"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AIRLINE_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AIRLINE_HTTP_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("AIRLINE_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("AIRLINE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AIRLINE_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AIRLINE_TICK_INTERVAL: %w", err)
		}
		cfg.Sim.TickInterval = d
	}
	if v := os.Getenv("AIRLINE_START_PAUSED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AIRLINE_START_PAUSED: %w", err)
		}
		cfg.Sim.StartPaused = b
	}
	if v := os.Getenv("AIRLINE_MAX_CATCHUP_TICKS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid AIRLINE_MAX_CATCHUP_TICKS: %w", err)
		}
		cfg.Sim.MaxCatchUpTicks = n
	}
	if v := os.Getenv("AIRLINE_SCENARIO"); v != "" {
		cfg.Sim.Scenario = v
	}
	return nil
}

// Validate checks the values a running server depends on.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if c.Sim.TickInterval <= 0 {
		errs = append(errs, errors.New("sim.tick_interval must be positive"))
	}
	if c.Sim.MaxCatchUpTicks < 0 {
		errs = append(errs, errors.New("sim.max_catchup_ticks must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q unknown", c.Log.Level))
	}
	return errors.Join(errs...)
}
