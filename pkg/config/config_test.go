package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/coda-go/pkg/memory"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Memory.Backend)
	assert.Equal(t, memory.DefaultCapacity, cfg.Memory.Capacity)
	assert.Equal(t, 128, cfg.Cache.Size)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
logging:
  level: DEBUG
memory:
  capacity: 10
cache:
  size: 5
workflows:
  max_concurrent: 2
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "DEBUG", cfg.Logging.Level)
		assert.Equal(t, 10, cfg.Memory.Capacity)
		assert.Equal(t, 5, cfg.Cache.Size)
		assert.Equal(t, 2, cfg.Workflows.MaxConcurrent)
		// untouched fields keep defaults
		assert.Equal(t, "memory", cfg.Memory.Backend)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "logging: [not a map")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  level: LOUD\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("sqlite backend requires path", func(t *testing.T) {
		path := writeConfig(t, "memory:\n  backend: sqlite\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("empty composite rejected", func(t *testing.T) {
		path := writeConfig(t, "composites:\n  review: []\n")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestLoggingOutputs(t *testing.T) {
	t.Run("stderr only by default", func(t *testing.T) {
		outputs, err := Default().LoggingOutputs()
		require.NoError(t, err)
		assert.Len(t, outputs, 1)
	})

	t.Run("log file adds a second output", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "coda.log")
		path := writeConfig(t, "logging:\n  file: "+logPath+"\n")

		cfg, err := Load(path)
		require.NoError(t, err)

		outputs, err := cfg.LoggingOutputs()
		require.NoError(t, err)
		require.Len(t, outputs, 2)
		require.NoError(t, outputs[1].Close())
		_, err = os.Stat(logPath)
		assert.NoError(t, err)
	})
}

func TestAssistantOptions(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := Default()
		opts, err := cfg.AssistantOptions()
		require.NoError(t, err)
		assert.NotEmpty(t, opts)
	})

	t.Run("sqlite backend opens database", func(t *testing.T) {
		cfg := Default()
		cfg.Memory.Backend = "sqlite"
		cfg.Memory.Path = filepath.Join(t.TempDir(), "history.db")

		opts, err := cfg.AssistantOptions()
		require.NoError(t, err)
		assert.NotEmpty(t, opts)
	})

	t.Run("custom composites converted", func(t *testing.T) {
		cfg := Default()
		cfg.Composites = map[string][]string{
			"review": {"analysis", "debug"},
		}
		opts, err := cfg.AssistantOptions()
		require.NoError(t, err)
		assert.NotEmpty(t, opts)
	})
}
