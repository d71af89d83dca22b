package tilemap

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/texture"
	"github.com/rs/zerolog"
)

// RendererBuilderOption is a functional option used to configure a Renderer during construction.
type RendererBuilderOption func(*Renderer)

// WithLogger sets the logger used to report resyncs.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that sets the logger of the renderer
func WithLogger(logger zerolog.Logger) RendererBuilderOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithAtlas sets the sprite atlas bound to texture unit 0 while drawing.
//
// Parameters:
//   - atlas: the atlas texture
//   - tiles: the atlas size in sprite cells
//
// Returns:
//   - RendererBuilderOption: a function that sets the atlas of the renderer
func WithAtlas(atlas *texture.Texture2D, tiles [2]float32) RendererBuilderOption {
	return func(r *Renderer) {
		r.atlas = atlas
		r.atlasTiles = tiles
	}
}

// WithClearColor sets the color the framebuffer is cleared to by Frame.
//
// Parameters:
//   - color: the RGBA clear color
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color of the renderer
func WithClearColor(color [4]float32) RendererBuilderOption {
	return func(r *Renderer) {
		r.clearColor = color
	}
}

// WithWorkerPool sets the pool used to extract tiles in parallel during a full resync.
// Without it the renderer creates its own pool.
//
// Parameters:
//   - pool: the worker pool
//   - workers: the number of tasks a resync is split into
//
// Returns:
//   - RendererBuilderOption: a function that sets the worker pool of the renderer
func WithWorkerPool(pool worker.DynamicWorkerPool, workers int) RendererBuilderOption {
	return func(r *Renderer) {
		r.pool = pool
		r.hasPool = true
		r.workers = max(workers, 1)
	}
}

// WithParallelThreshold sets the tile count from which a full resync runs on the
// worker pool. Smaller resyncs extract tiles on the calling goroutine.
//
// Parameters:
//   - n: the threshold; 0 always uses the pool
//
// Returns:
//   - RendererBuilderOption: a function that sets the parallel threshold of the renderer
func WithParallelThreshold(n int) RendererBuilderOption {
	return func(r *Renderer) {
		r.parallelThreshold = n
	}
}

// withPoolFactory replaces the constructor of the pool the renderer creates when no
// WithWorkerPool option is given.
func withPoolFactory(newPool func(workers int) worker.DynamicWorkerPool) RendererBuilderOption {
	return func(r *Renderer) {
		r.newPool = newPool
	}
}
