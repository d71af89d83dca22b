// Package config loads the runtime settings of the tile demo and builds its logger.
//
// Settings are layered: Default() first, then the KEY=VALUE file named by
// OXY_CONFIG_FILE if it is set, then environment variables. Every key is the
// field's config tag.
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileEnv names the environment variable that points at an optional settings file.
const FileEnv = "OXY_CONFIG_FILE"

// Config holds every runtime setting.
type Config struct {
	WindowTitle  string `config:"OXY_WINDOW_TITLE"`
	WindowWidth  int    `config:"OXY_WINDOW_WIDTH"`
	WindowHeight int    `config:"OXY_WINDOW_HEIGHT"`
	VSync        bool   `config:"OXY_VSYNC"`

	GridWidth       int    `config:"OXY_GRID_WIDTH"`
	GridHeight      int    `config:"OXY_GRID_HEIGHT"`
	GridOrientation string `config:"OXY_GRID_ORIENTATION"`

	// TickRate is in ticks per second; RenderFrameLimit in frames per second, 0 uncapped.
	TickRate         float64 `config:"OXY_TICK_RATE"`
	RenderFrameLimit float64 `config:"OXY_RENDER_FRAME_LIMIT"`
	Profiling        bool    `config:"OXY_PROFILING"`

	LogLevel string `config:"OXY_LOG_LEVEL"`

	// AtlasPath is an image of AtlasColumns x AtlasRows sprites. Empty draws every tile
	// in its plain color.
	AtlasPath    string `config:"OXY_ATLAS_PATH"`
	AtlasColumns int    `config:"OXY_ATLAS_COLUMNS"`
	AtlasRows    int    `config:"OXY_ATLAS_ROWS"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		WindowTitle:     "Birblike",
		WindowWidth:     1024,
		WindowHeight:    768,
		VSync:           true,
		GridWidth:       100,
		GridHeight:      100,
		GridOrientation: grid.ColumnMajor.String(),
		TickRate:        60,
		LogLevel:        zerolog.InfoLevel.String(),
		AtlasColumns:    1,
		AtlasRows:       1,
	}
}

// Load layers the settings file and the environment over Default and validates the
// result. Text settings that are blank keep their defaults.
//
// Returns:
//   - Config: the loaded settings
//   - error: a read, parse or validation error
func Load() (Config, error) {
	cfg := Default()
	b := jlconfig.FromEnv()
	if path := os.Getenv(FileEnv); path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, eris.Wrapf(err, "failed to open settings file %s", path)
		}
		b = jlconfig.From(path).FromEnv()
	}
	if err := b.To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load settings")
	}
	def := Default()
	cfg.WindowTitle = common.Coalesce(strings.TrimSpace(cfg.WindowTitle), def.WindowTitle)
	cfg.GridOrientation = common.Coalesce(strings.TrimSpace(cfg.GridOrientation), def.GridOrientation)
	cfg.LogLevel = common.Coalesce(strings.TrimSpace(cfg.LogLevel), def.LogLevel)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return eris.Errorf("window size %dx%d must be positive", c.WindowWidth, c.WindowHeight)
	case c.GridWidth <= 0 || c.GridHeight <= 0:
		return eris.Errorf("grid size %dx%d must be positive", c.GridWidth, c.GridHeight)
	case c.TickRate <= 0:
		return eris.Errorf("tick rate %g must be positive", c.TickRate)
	case c.RenderFrameLimit < 0:
		return eris.Errorf("render frame limit %g must not be negative", c.RenderFrameLimit)
	case c.AtlasColumns <= 0 || c.AtlasRows <= 0:
		return eris.Errorf("atlas grid %dx%d must be positive", c.AtlasColumns, c.AtlasRows)
	}
	if _, err := c.Orientation(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Orientation parses GridOrientation.
func (c Config) Orientation() (grid.Orientation, error) {
	o, err := grid.ParseOrientation(c.GridOrientation)
	if err != nil {
		return o, eris.Wrap(err, "invalid grid orientation")
	}
	return o, nil
}

// Level parses LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return level, eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// AtlasTiles returns the atlas size in sprite cells as the tile program expects it.
func (c Config) AtlasTiles() [2]float32 {
	return [2]float32{float32(c.AtlasColumns), float32(c.AtlasRows)}
}

// NewLogger builds a console logger writing to w at the configured level. A level
// that does not parse falls back to Info.
//
// Parameters:
//   - c: the settings
//   - w: the destination, usually os.Stderr
//
// Returns:
//   - zerolog.Logger: the logger
func NewLogger(c Config, w io.Writer) zerolog.Logger {
	level, err := c.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
