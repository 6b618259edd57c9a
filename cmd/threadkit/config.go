package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Swind/go-threadkit/core"
	"github.com/joeycumines/logiface"
)

// Config is the CLI configuration, loaded from TOML and then overridden by
// flags.
type Config struct {
	Pool    PoolConfig    `toml:"pool"`
	Worker  WorkerConfig  `toml:"worker"`
	Metrics MetricsConfig `toml:"metrics"`
	Log     LogConfig     `toml:"log"`
}

type PoolConfig struct {
	ID         string `toml:"id"`
	Workers    int    `toml:"workers"`
	MaxPending int    `toml:"max_pending"`
	Priority   string `toml:"priority"`
}

type WorkerConfig struct {
	Name            string `toml:"name"`
	Priority        string `toml:"priority"`
	HistoryCapacity int    `toml:"history_capacity"`
}

type MetricsConfig struct {
	Addr         string        `toml:"addr"`
	Namespace    string        `toml:"namespace"`
	PollInterval time.Duration `toml:"poll_interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Pool: PoolConfig{
			ID:      "threadkit-pool",
			Workers: core.HardwareConcurrency(),
		},
		Worker: WorkerConfig{
			Name: "threadkit-worker",
		},
		Metrics: MetricsConfig{
			Addr:         ":2112",
			Namespace:    "threadkit",
			PollInterval: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and enum fields.
func (c Config) Validate() error {
	if c.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must not be negative, got %d", c.Pool.Workers)
	}
	if c.Pool.MaxPending < 0 {
		return fmt.Errorf("pool.max_pending must not be negative, got %d", c.Pool.MaxPending)
	}
	if c.Worker.HistoryCapacity < 0 {
		return fmt.Errorf("worker.history_capacity must not be negative, got %d", c.Worker.HistoryCapacity)
	}
	if _, err := ParsePriority(c.Pool.Priority); err != nil {
		return fmt.Errorf("pool.priority: %w", err)
	}
	if _, err := ParsePriority(c.Worker.Priority); err != nil {
		return fmt.Errorf("worker.priority: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ThreadPoolConfig converts the [pool] table.
func (c Config) ThreadPoolConfig(metrics core.Metrics) *core.ThreadPoolConfig {
	cfg := core.DefaultThreadPoolConfig()
	if c.Pool.ID != "" {
		cfg.ID = c.Pool.ID
	}
	cfg.Workers = c.Pool.Workers
	cfg.MaxPending = c.Pool.MaxPending
	if p, _ := ParsePriority(c.Pool.Priority); p != 0 {
		cfg.Priority = p
	}
	if metrics != nil {
		cfg.Metrics = metrics
	}
	return cfg
}

// WorkerThreadConfig converts the [worker] table.
func (c Config) WorkerThreadConfig(metrics core.Metrics) *core.WorkerThreadConfig {
	cfg := core.DefaultWorkerThreadConfig()
	if c.Worker.Name != "" {
		cfg.Name = c.Worker.Name
	}
	if c.Worker.HistoryCapacity > 0 {
		cfg.HistoryCapacity = c.Worker.HistoryCapacity
	}
	if p, _ := ParsePriority(c.Worker.Priority); p != 0 {
		cfg.Priority = p
	}
	if metrics != nil {
		cfg.Metrics = metrics
	}
	return cfg
}

// ParsePriority maps a case-insensitive priority name to core.Priority.
// The empty string and "default" map to the zero value.
func ParsePriority(s string) (core.Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "default") {
		return 0, nil
	}
	for p := core.PriorityIdle; p <= core.PriorityTimeCritical; p++ {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// ParseLevel maps a level name, as printed by logiface.Level.String or its
// long form, to a logiface.Level.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logiface.LevelTrace, nil
	case "debug":
		return logiface.LevelDebug, nil
	case "", "info", "informational":
		return logiface.LevelInformational, nil
	case "notice":
		return logiface.LevelNotice, nil
	case "warn", "warning":
		return logiface.LevelWarning, nil
	case "err", "error":
		return logiface.LevelError, nil
	case "off", "disabled", "none":
		return logiface.LevelDisabled, nil
	default:
		return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
	}
}
