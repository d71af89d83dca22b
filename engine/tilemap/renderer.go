// Package tilemap draws the tiles of a world as one instanced quad per grid cell and keeps
// the per-tile storage buffers in step with the world.
//
// Each frame the renderer reads the world's change log. Insertions, removals and moves
// change which slot a tile occupies, so they trigger a full resync: every live tile is
// extracted into fresh arrays, the position to slot index is rebuilt and the arrays are
// uploaded whole. Color and sprite changes only rewrite the affected slots through mapped
// views of the storage buffers.
package tilemap

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/vertex_array"
	"github.com/Carmen-Shannon/oxy-tiles/engine/world"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// DefaultParallelThreshold is the tile count from which a full resync extracts tiles on
// the worker pool.
const DefaultParallelThreshold = 4096

// quadCorners are two counter-clockwise triangles covering the unit square.
var quadCorners = [][2]float32{
	{0, 0}, {0, 1}, {1, 1},
	{0, 0}, {1, 1}, {1, 0},
}

func newWorkerPool(workers int) worker.DynamicWorkerPool {
	return worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
}

// whitePixel stands in for the atlas when none is given, so the fragment stage samples
// white and tiles show their plain color.
var whitePixel = common.ImageData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}

// SyncKind reports what a Sync call did.
type SyncKind uint8

const (
	// SyncNone means nothing changed since the previous frame.
	SyncNone SyncKind = iota
	// SyncFull means every storage buffer was rebuilt and uploaded.
	SyncFull
	// SyncPartial means only the slots of modified tiles were rewritten.
	SyncPartial
)

func (k SyncKind) String() string {
	switch k {
	case SyncNone:
		return "none"
	case SyncFull:
		return "full"
	case SyncPartial:
		return "partial"
	default:
		return fmt.Sprintf("SyncKind(%d)", uint8(k))
	}
}

// Stats counts the work the renderer did since it was created.
type Stats struct {
	Frames       uint64
	FullResyncs  uint64
	Patches      uint64
	PatchedSlots uint64
	// Tiles is the number of slots in the storage buffers.
	Tiles int
}

// Renderer draws a world with the tile program.
type Renderer struct {
	dev     device.Device
	world   *world.World
	reader  *world.Reader
	program *program.Program[TileUniforms]
	logger  zerolog.Logger

	vao  *vertex_array.VertexArray
	quad *buffer.VertexBuffer[[2]float32]

	atlas      *texture.Texture2D
	ownsAtlas  bool
	atlasTiles [2]float32
	clearColor [4]float32

	pool              worker.DynamicWorkerPool
	hasPool           bool
	ownsPool          bool
	workers           int
	newPool           func(workers int) worker.DynamicWorkerPool
	parallelThreshold int

	inserted, modified, removed world.EntitySet

	// index maps a grid cell to the slot of the tile on it; slots holds the entity of
	// each slot. Both are rebuilt wholesale by a full resync.
	index map[grid.Pos]int
	slots []world.Entity

	positions [][2]uint32
	colors    [][4]float32
	sprites   [][2]float32

	resyncPending bool
	stats         Stats
}

// NewRenderer creates the quad geometry and prepares a renderer for w. The first Sync
// is always a full resync, so tiles created before the renderer are uploaded too.
//
// Parameters:
//   - dev: the device that owns p
//   - w: the world to draw
//   - p: the linked tile program
//   - opts: optional settings
//
// Returns:
//   - *Renderer: the renderer
//   - error: the device error if the quad geometry or the fallback atlas could not be created
func NewRenderer(dev device.Device, w *world.World, p *program.Program[TileUniforms], opts ...RendererBuilderOption) (*Renderer, error) {
	r := &Renderer{
		dev:               dev,
		world:             w,
		program:           p,
		logger:            zerolog.Nop(),
		atlasTiles:        [2]float32{1, 1},
		clearColor:        [4]float32{0.5, 0.5, 0.5, 1},
		workers:           max(runtime.NumCPU()-1, 1),
		newPool:           newWorkerPool,
		parallelThreshold: DefaultParallelThreshold,
		index:             make(map[grid.Pos]int),
		resyncPending:     true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.hasPool {
		r.pool = r.newPool(r.workers)
		r.ownsPool = true
	}

	if err := r.initGeometry(); err != nil {
		return nil, err
	}
	if r.atlas == nil {
		atlas, err := texture.NewTexture2D(dev, whitePixel)
		if err != nil {
			_ = r.quad.Release()
			_ = r.vao.Release()
			return nil, eris.Wrap(err, "failed to create untextured atlas")
		}
		r.atlas, r.ownsAtlas = atlas, true
		r.atlasTiles = [2]float32{1, 1}
	}
	env := p.Env()
	env.Atlas.Set(0)
	env.AtlasTiles.Set(r.atlasTiles)
	if err := dev.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3]); err != nil {
		_ = r.quad.Release()
		_ = r.vao.Release()
		if r.ownsAtlas {
			_ = r.atlas.Release()
		}
		return nil, eris.Wrap(err, "failed to set clear color")
	}
	r.reader = w.NewReader()
	return r, nil
}

func (r *Renderer) initGeometry() error {
	vao, err := vertex_array.New(r.dev)
	if err != nil {
		return err
	}
	quad, err := buffer.New[[2]float32, buffer.Array](r.dev)
	if err != nil {
		_ = vao.Release()
		return err
	}
	if err := quad.Upload(quadCorners, buffer.StaticDraw); err != nil {
		_ = quad.Release()
		_ = vao.Release()
		return err
	}
	if _, err := vertex_array.AddBuffer(vao, quad); err != nil {
		_ = quad.Release()
		_ = vao.Release()
		return err
	}
	r.vao, r.quad = vao, quad
	return nil
}

// Program returns the tile program the renderer draws with.
func (r *Renderer) Program() *program.Program[TileUniforms] {
	return r.program
}

// SlotOf returns the storage slot of the tile on p as of the last full resync.
func (r *Renderer) SlotOf(p grid.Pos) (int, bool) {
	slot, ok := r.index[p]
	return slot, ok
}

// Stats returns the work counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Draw binds the geometry, the program and the atlas and draws one quad instance per
// grid cell. Draw does not clear the framebuffer.
//
// Returns:
//   - error: the device error of the first failed call
func (r *Renderer) Draw() error {
	width, height := r.world.Dimensions()
	if err := r.vao.Bind(); err != nil {
		return eris.Wrap(err, "failed to bind tile geometry")
	}
	if err := r.quad.Bind(); err != nil {
		return eris.Wrap(err, "failed to bind quad buffer")
	}
	if err := r.program.Bind(); err != nil {
		return eris.Wrap(err, "failed to bind tile program")
	}
	if err := r.atlas.Bind(0); err != nil {
		return err
	}
	r.program.Env().TileAmounts.Set([2]int32{int32(width), int32(height)})

	instances := int32(width * height)
	if err := r.dev.DrawArraysInstanced(device.Triangles, 0, int32(r.quad.Len()), instances); err != nil {
		return eris.Wrapf(err, "failed to draw %d tile instances", instances)
	}
	return nil
}

// Frame synchronizes the storage buffers, clears the framebuffer and draws.
//
// Returns:
//   - SyncKind: what the synchronization did
//   - error: the device error of the first failed draw call
func (r *Renderer) Frame() (SyncKind, error) {
	kind := r.Sync()
	if err := r.dev.Clear(device.ColorBufferBit); err != nil {
		return kind, eris.Wrap(err, "failed to clear framebuffer")
	}
	if err := r.Draw(); err != nil {
		return kind, err
	}
	r.stats.Frames++
	return kind, nil
}

// Release deletes the geometry, the storage buffers and the program, and stops reading
// the world's changes. An atlas given with WithAtlas and a pool given with
// WithWorkerPool belong to the caller. A pool the renderer created is drained and
// stopped; its workers do not exit on their own.
func (r *Renderer) Release() error {
	r.reader.Close()
	errs := []error{
		r.quad.Release(),
		r.vao.Release(),
		r.program.Env().Release(),
		r.program.Release(),
	}
	if r.ownsAtlas {
		errs = append(errs, r.atlas.Release())
	}
	if r.ownsPool {
		r.pool.Wait()
		r.pool.Stop()
		r.ownsPool = false
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
