// Package engine drives the frame loop of a windowed application.
//
// The OpenGL context belongs to the thread that created the window, so the engine runs
// both fixed-rate ticks and render frames from the window's message loop instead of
// separate goroutines. Ticks catch up when a frame took longer than the tick period.
package engine

import (
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-tiles/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tiles/engine/window"
	"github.com/rs/zerolog"
)

// maxCatchUpTicks bounds the ticks run in one frame after a stall.
const maxCatchUpTicks = 8

// engine implements the Engine interface.
type engine struct {
	window window.Window
	logger zerolog.Logger
	now    func() time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	resizeCallback func(width, height int)

	quit       atomic.Bool
	lastTick   time.Time
	lastRender time.Time
	ticks      uint64
	frames     uint64
}

// Engine is the main entry point for the engine.
// It owns the frame loop and the window.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic such as mutating the world.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame, after the
	// ticks of that frame. Device calls belong here.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetResizeCallback registers the function called with the new framebuffer size.
	//
	// Parameters:
	//   - callback: function receiving the width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the frame loop and blocks until the window closes or Quit is called.
	// It must be called on the thread that created the window.
	Run()

	// Quit stops the frame loop after the current frame. Safe to call from any
	// goroutine and more than once.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options. A window must be
// supplied with WithWindow before Run is called.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:         zerolog.Nop(),
		now:            time.Now,
		engineTickRate: time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.logger.Debug().Int("width", width).Int("height", height).Msg("framebuffer resized")
			if e.resizeCallback != nil {
				e.resizeCallback(width, height)
			}
		})
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	if e.window == nil {
		panic("engine: Run without a window")
	}
	start := e.now()
	e.lastTick, e.lastRender = start, start
	e.window.SetUpdateCallback(e.frame)
	e.logger.Info().Dur("tick", e.engineTickRate).Dur("frame_limit", e.renderFrameLimit).Msg("engine started")
	e.window.ProcessMessages()
	if e.window.IsRunning() {
		if err := e.window.Close(); err != nil {
			e.logger.Error().Err(err).Msg("failed to close window")
		}
	}
	e.logger.Info().Uint64("ticks", e.ticks).Uint64("frames", e.frames).Msg("engine stopped")
}

// frame runs the ticks that are due, then one render frame.
func (e *engine) frame() {
	if e.quit.Load() {
		if err := e.window.Close(); err != nil {
			e.logger.Error().Err(err).Msg("failed to close window")
		}
		return
	}

	now := e.now()
	for i := 0; now.Sub(e.lastTick) >= e.engineTickRate; i++ {
		if i == maxCatchUpTicks {
			e.logger.Warn().Dur("behind", now.Sub(e.lastTick)).Msg("dropping ticks")
			e.lastTick = now
			break
		}
		e.lastTick = e.lastTick.Add(e.engineTickRate)
		e.ticks++
		if e.tickCallback != nil {
			e.tickCallback(float32(e.engineTickRate.Seconds()))
		}
	}

	dt := float32(now.Sub(e.lastRender).Seconds())
	e.lastRender = now
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	e.frames++

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) Quit() {
	e.quit.Store(true)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.engineTickRate = tickPeriod(fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = framePeriod(fps)
}

func tickPeriod(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func framePeriod(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
