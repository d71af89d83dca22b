package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	o, err := cfg.Orientation()
	require.NoError(t, err)
	assert.Equal(t, grid.ColumnMajor, o)
	assert.Equal(t, [2]float32{1, 1}, cfg.AtlasTiles())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("OXY_GRID_WIDTH", "32")
	t.Setenv("OXY_GRID_ORIENTATION", "row_major")
	t.Setenv("OXY_PROFILING", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.GridWidth)
	assert.Equal(t, 100, cfg.GridHeight, "unset keys keep their defaults")
	assert.Equal(t, "row_major", cfg.GridOrientation)
	assert.True(t, cfg.Profiling)
	assert.Equal(t, "Birblike", cfg.WindowTitle)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.env")
	require.NoError(t, os.WriteFile(path, []byte("OXY_WINDOW_WIDTH=640\nOXY_WINDOW_HEIGHT=480\n"), 0o600))
	t.Setenv(FileEnv, path)
	t.Setenv("OXY_WINDOW_HEIGHT", "400")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.WindowWidth)
	assert.Equal(t, 400, cfg.WindowHeight, "environment wins over the file")
}

func TestLoadBlankTextKeepsDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("OXY_WINDOW_TITLE", "   ")
	t.Setenv("OXY_GRID_ORIENTATION", " ")
	t.Setenv("OXY_LOG_LEVEL", "\t")

	cfg, err := Load()
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.WindowTitle, cfg.WindowTitle)
	assert.Equal(t, def.GridOrientation, cfg.GridOrientation)
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.env"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"window":      func(c *Config) { c.WindowWidth = 0 },
		"grid":        func(c *Config) { c.GridHeight = -1 },
		"tick rate":   func(c *Config) { c.TickRate = 0 },
		"frame limit": func(c *Config) { c.RenderFrameLimit = -1 },
		"atlas":       func(c *Config) { c.AtlasRows = 0 },
		"orientation": func(c *Config) { c.GridOrientation = "diagonal" },
		"level":       func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	var out bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "WARN"
	logger := NewLogger(cfg, &out)

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}
