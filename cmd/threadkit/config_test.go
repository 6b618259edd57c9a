package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Swind/go-threadkit/core"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threadkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[pool]
id = "ingest"
workers = 3
max_pending = 64
priority = "AboveNormal"

[worker]
name = "ui"
history_capacity = 10

[metrics]
poll_interval = "250ms"

[log]
level = "debug"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ingest", cfg.Pool.ID)
	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.Equal(t, 64, cfg.Pool.MaxPending)
	assert.Equal(t, "ui", cfg.Worker.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.Metrics.PollInterval)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, ":2112", cfg.Metrics.Addr)
	assert.Equal(t, "threadkit", cfg.Metrics.Namespace)

	poolCfg := cfg.ThreadPoolConfig(nil)
	assert.Equal(t, "ingest", poolCfg.ID)
	assert.Equal(t, 3, poolCfg.Workers)
	assert.Equal(t, 64, poolCfg.MaxPending)
	assert.Equal(t, core.PriorityAboveNormal, poolCfg.Priority)
	assert.NotNil(t, poolCfg.Metrics)

	workerCfg := cfg.WorkerThreadConfig(nil)
	assert.Equal(t, "ui", workerCfg.Name)
	assert.Equal(t, 10, workerCfg.HistoryCapacity)
	assert.Equal(t, core.PriorityNormal, workerCfg.Priority)
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[pool]
threads = 4
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool.threads")
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative workers", "[pool]\nworkers = -1\n", "pool.workers"},
		{"negative max pending", "[pool]\nmax_pending = -5\n", "pool.max_pending"},
		{"bad priority", "[worker]\npriority = \"urgent\"\n", "worker.priority"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParsePriority(t *testing.T) {
	for p := core.PriorityIdle; p <= core.PriorityTimeCritical; p++ {
		got, err := ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePriority("timecritical")
	require.NoError(t, err)
	assert.Equal(t, core.PriorityTimeCritical, got)

	got, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, core.Priority(0), got)

	_, err = ParsePriority("realtime")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logiface.Level{
		"trace":   logiface.LevelTrace,
		"DEBUG":   logiface.LevelDebug,
		"info":    logiface.LevelInformational,
		"":        logiface.LevelInformational,
		"warn":    logiface.LevelWarning,
		"warning": logiface.LevelWarning,
		"error":   logiface.LevelError,
		"off":     logiface.LevelDisabled,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
