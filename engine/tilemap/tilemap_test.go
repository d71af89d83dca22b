package tilemap

import (
	"bytes"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device/headless"
	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-tiles/engine/world"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	c0 = [4]float32{1, 0, 0, 1}
	c1 = [4]float32{0, 1, 0, 1}
	c2 = [4]float32{0, 0, 1, 1}
)

type fixture struct {
	dev      *headless.Device
	world    *world.World
	renderer *Renderer
	entities map[grid.Pos]world.Entity
}

func newFixture(t *testing.T, width, height int, opts ...RendererBuilderOption) *fixture {
	t.Helper()
	dev := headless.New()
	p, err := NewTileProgram(dev)
	require.NoError(t, err)
	w := world.NewWorld(width, height)
	r, err := NewRenderer(dev, w, p, opts...)
	require.NoError(t, err)
	return &fixture{dev: dev, world: w, renderer: r, entities: make(map[grid.Pos]world.Entity)}
}

func (f *fixture) create(t *testing.T, pos grid.Pos, color [4]float32) world.Entity {
	t.Helper()
	e, err := f.world.Create(world.Tile{Pos: pos, Color: color, Sprite: [2]float32{float32(pos.X), 0}})
	require.NoError(t, err)
	f.entities[pos] = e
	return e
}

func (f *fixture) colors() [][4]float32 {
	return headless.Contents[[4]float32](f.dev, f.renderer.program.Env().Colors.ID())
}

func (f *fixture) positions() [][2]uint32 {
	return headless.Contents[[2]uint32](f.dev, f.renderer.program.Env().Positions.ID())
}

func (f *fixture) threeTiles(t *testing.T) {
	t.Helper()
	f.create(t, grid.Pos{X: 0, Y: 0}, c0)
	f.create(t, grid.Pos{X: 1, Y: 0}, c1)
	f.create(t, grid.Pos{X: 0, Y: 1}, c2)
}

func TestTileProgramResolvesEnvironment(t *testing.T) {
	var out bytes.Buffer
	dev := headless.New()
	p, err := NewTileProgram(dev, program.WithLogger(zerolog.New(&out).Level(zerolog.WarnLevel)))
	require.NoError(t, err)

	env := p.Env()
	assert.Equal(t, uint32(0), env.Positions.BindPoint())
	assert.Equal(t, uint32(1), env.Colors.BindPoint())
	assert.Equal(t, uint32(2), env.Sprites.BindPoint())

	state := dev.Program(p.ID())
	assert.Equal(t, []string{"colors", "positions", "sprites"}, state.StorageBlocks)
	assert.Contains(t, state.Uniforms, "tile_amounts")
	assert.Contains(t, state.Uniforms, "atlas_tiles")
	assert.Contains(t, state.Uniforms, "atlas")
	assert.Empty(t, out.String(), "every storage block is resolved")
	assert.NotContains(t, out.String(), "declared but not resolved")
}

func TestFullResync(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)

	assert.Equal(t, SyncFull, f.renderer.Sync())

	colors := f.colors()
	positions := f.positions()
	require.Len(t, colors, 3)
	seen := make(map[int]bool)
	for pos, e := range f.entities {
		slot, ok := f.renderer.SlotOf(pos)
		require.True(t, ok, pos.String())
		assert.GreaterOrEqual(t, slot, 0)
		assert.Less(t, slot, 3)
		assert.False(t, seen[slot], "slot %d assigned twice", slot)
		seen[slot] = true

		tile, _ := f.world.Tile(e)
		assert.Equal(t, tile.Color, colors[slot])
		assert.Equal(t, [2]uint32{uint32(pos.X), uint32(pos.Y)}, positions[slot])
	}
	_, ok := f.renderer.SlotOf(grid.Pos{X: 1, Y: 1})
	assert.False(t, ok)

	env := f.renderer.program.Env()
	assert.Equal(t, device.DynamicDraw, f.dev.Buffer(env.Colors.ID()).Usage)
	assert.Equal(t, 3, f.renderer.Stats().Tiles)
}

func TestPartialPatch(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	require.Equal(t, SyncFull, f.renderer.Sync())

	before := f.colors()
	index := make(map[grid.Pos]int)
	for pos := range f.entities {
		index[pos], _ = f.renderer.SlotOf(pos)
	}
	uploads := f.dev.Buffer(f.renderer.program.Env().Colors.ID()).Uploads

	c1Prime := [4]float32{1, 1, 0, 1}
	require.NoError(t, f.world.SetColor(f.entities[grid.Pos{X: 1, Y: 0}], c1Prime))
	f.dev.ResetCalls()
	assert.Equal(t, SyncPartial, f.renderer.Sync())

	after := f.colors()
	patched := index[grid.Pos{X: 1, Y: 0}]
	for slot := range after {
		if slot == patched {
			assert.Equal(t, c1Prime, after[slot])
		} else {
			assert.Equal(t, before[slot], after[slot], "slot %d", slot)
		}
	}
	for pos, slot := range index {
		got, _ := f.renderer.SlotOf(pos)
		assert.Equal(t, slot, got, "index is not rebuilt")
	}

	calls := f.dev.Calls()
	assert.NotContains(t, calls, "BufferData")
	assert.Equal(t, 1, count(calls, "MapBufferRange"), "only the color buffer is mapped")
	assert.Equal(t, 1, count(calls, "UnmapBuffer"))
	assert.Equal(t, uploads, f.dev.Buffer(f.renderer.program.Env().Colors.ID()).Uploads)

	stats := f.renderer.Stats()
	assert.Equal(t, uint64(1), stats.FullResyncs)
	assert.Equal(t, uint64(1), stats.Patches)
	assert.Equal(t, uint64(1), stats.PatchedSlots)
}

func TestSpritePatchMapsOnlySprites(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	f.renderer.Sync()

	e := f.entities[grid.Pos{X: 0, Y: 1}]
	require.NoError(t, f.world.SetSprite(e, [2]float32{9, 12}))
	f.dev.ResetCalls()
	assert.Equal(t, SyncPartial, f.renderer.Sync())
	assert.Equal(t, 1, count(f.dev.Calls(), "MapBufferRange"))

	slot, _ := f.renderer.SlotOf(grid.Pos{X: 0, Y: 1})
	sprites := headless.Contents[[2]float32](f.dev, f.renderer.program.Env().Sprites.ID())
	assert.Equal(t, [2]float32{9, 12}, sprites[slot])
}

func TestNoChangesDoesNothing(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	f.renderer.Sync()

	f.dev.ResetCalls()
	assert.Equal(t, SyncNone, f.renderer.Sync())
	assert.Empty(t, f.dev.Calls())
}

func TestStructuralChangesResync(t *testing.T) {
	f := newFixture(t, 3, 3)
	f.threeTiles(t)
	f.renderer.Sync()

	require.NoError(t, f.world.Move(f.entities[grid.Pos{X: 1, Y: 0}], grid.Pos{X: 2, Y: 2}))
	assert.Equal(t, SyncFull, f.renderer.Sync())
	_, ok := f.renderer.SlotOf(grid.Pos{X: 2, Y: 2})
	assert.True(t, ok)
	_, ok = f.renderer.SlotOf(grid.Pos{X: 1, Y: 0})
	assert.False(t, ok)

	require.NoError(t, f.world.Remove(f.entities[grid.Pos{X: 0, Y: 0}]))
	assert.Equal(t, SyncFull, f.renderer.Sync())
	assert.Len(t, f.colors(), 2)

	f.create(t, grid.Pos{X: 1, Y: 1}, c0)
	assert.Equal(t, SyncFull, f.renderer.Sync())
	assert.Len(t, f.colors(), 3)
	assert.Equal(t, uint64(4), f.renderer.Stats().FullResyncs)
}

func TestFirstSyncUploadsExistingTiles(t *testing.T) {
	dev := headless.New()
	w := world.NewWorld(2, 1)
	_, err := w.Create(world.Tile{Pos: grid.Pos{X: 1, Y: 0}, Color: c2})
	require.NoError(t, err)

	p, err := NewTileProgram(dev)
	require.NoError(t, err)
	r, err := NewRenderer(dev, w, p)
	require.NoError(t, err)

	assert.Equal(t, SyncFull, r.Sync())
	assert.Equal(t, [][4]float32{c2}, headless.Contents[[4]float32](dev, p.Env().Colors.ID()))
}

func TestEmptyWorldResyncsToEmptyBuffers(t *testing.T) {
	f := newFixture(t, 2, 2)
	assert.Equal(t, SyncFull, f.renderer.Sync())
	assert.Empty(t, f.colors())
	assert.Zero(t, f.renderer.program.Env().Colors.Len())
}

func TestModifiedTileWithoutSlotIsFatal(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	f.renderer.Sync()

	delete(f.renderer.index, grid.Pos{X: 1, Y: 0})
	require.NoError(t, f.world.SetColor(f.entities[grid.Pos{X: 1, Y: 0}], c0))
	assert.PanicsWithValue(t,
		"tilemap: modified entity "+f.entities[grid.Pos{X: 1, Y: 0}].String()+" at (1, 0) has no slot",
		func() { f.renderer.Sync() })
}

func TestSlotHoldingAnotherEntityIsFatal(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	f.renderer.Sync()

	slot, _ := f.renderer.SlotOf(grid.Pos{X: 0, Y: 0})
	f.renderer.slots[slot] = world.Entity{ID: 99, Version: 1}
	require.NoError(t, f.world.SetColor(f.entities[grid.Pos{X: 0, Y: 0}], c1))
	assert.Panics(t, func() { f.renderer.Sync() })
}

func TestParallelResyncMatchesSequential(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 16, time.Second)
	par := newFixture(t, 10, 10, WithWorkerPool(pool, 4), WithParallelThreshold(0))
	seq := newFixture(t, 10, 10, WithParallelThreshold(1<<30))
	for _, f := range []*fixture{par, seq} {
		for y := range 10 {
			for x := range 10 {
				f.create(t, grid.Pos{X: x, Y: y}, [4]float32{float32(x) / 10, 0, float32(y) / 10, 1})
			}
		}
		require.Equal(t, SyncFull, f.renderer.Sync())
	}

	assert.Equal(t, seq.colors(), par.colors())
	assert.Equal(t, seq.positions(), par.positions())
	for pos := range par.entities {
		a, _ := par.renderer.SlotOf(pos)
		b, _ := seq.renderer.SlotOf(pos)
		assert.Equal(t, b, a, pos.String())
	}
}

func TestDrawCoversEveryCell(t *testing.T) {
	f := newFixture(t, 3, 2)
	f.threeTiles(t)

	kind, err := f.renderer.Frame()
	require.NoError(t, err)
	assert.Equal(t, SyncFull, kind)

	draws := f.dev.Draws()
	require.Len(t, draws, 1)
	d := draws[0]
	assert.Equal(t, device.Triangles, d.Mode)
	assert.Equal(t, int32(6), d.Count)
	assert.Equal(t, int32(6), d.Instances, "one instance per grid cell")
	assert.Equal(t, f.renderer.program.ID(), d.Program)
	assert.Equal(t, f.renderer.vao.ID(), d.VertexArray)
	assert.Equal(t, f.renderer.quad.ID(), d.ArrayBuffer)
	assert.Equal(t, 1, f.dev.Clears())
	assert.Equal(t, uint64(1), f.renderer.Stats().Frames)

	state := f.dev.Program(f.renderer.program.ID())
	assert.Equal(t, []int32{3, 2}, headless.UniformData[int32](state, "tile_amounts"))
	assert.Equal(t, []int32{0}, headless.UniformData[int32](state, "atlas"))

	attrib := f.dev.VertexArray(f.renderer.vao.ID()).Attribs[0]
	require.NotNil(t, attrib)
	assert.Equal(t, int32(2), attrib.Size)
	assert.Equal(t, device.Float, attrib.Type)
}

func TestDrawBindsAtlas(t *testing.T) {
	dev := headless.New()
	atlas, err := texture.NewTexture2D(dev, common.ImageData{Pixels: make([]byte, 16*16*4), Width: 16, Height: 16})
	require.NoError(t, err)
	p, err := NewTileProgram(dev)
	require.NoError(t, err)
	r, err := NewRenderer(dev, world.NewWorld(1, 1), p, WithAtlas(atlas, [2]float32{16, 16}), WithClearColor([4]float32{0, 0, 0, 1}))
	require.NoError(t, err)

	_, err = r.Frame()
	require.NoError(t, err)
	assert.Equal(t, atlas.ID(), dev.Draws()[0].Texture)
	assert.Equal(t, []float32{16, 16}, headless.UniformData[float32](dev.Program(p.ID()), "atlas_tiles"))
}

func TestDrawWithoutAtlasBindsWhiteTexture(t *testing.T) {
	f := newFixture(t, 2, 1)
	f.threeTiles(t)

	_, err := f.renderer.Frame()
	require.NoError(t, err)
	id := f.dev.Draws()[0].Texture
	require.NotZero(t, id, "an unbound sampler reads black")
	tex := f.dev.Texture(id)
	require.NotNil(t, tex)
	assert.Equal(t, int32(1), tex.Width)
	assert.Equal(t, int32(1), tex.Height)
	assert.Equal(t, []byte{255, 255, 255, 255}, tex.Pixels)
	assert.Equal(t, []float32{1, 1}, headless.UniformData[float32](f.dev.Program(f.renderer.program.ID()), "atlas_tiles"))

	require.NoError(t, f.renderer.Release())
	assert.Nil(t, f.dev.Texture(id))
}

func TestReleaseKeepsCallerAtlas(t *testing.T) {
	dev := headless.New()
	atlas, err := texture.NewTexture2D(dev, common.ImageData{Pixels: make([]byte, 4*4*4), Width: 4, Height: 4})
	require.NoError(t, err)
	p, err := NewTileProgram(dev)
	require.NoError(t, err)
	r, err := NewRenderer(dev, world.NewWorld(1, 1), p, WithAtlas(atlas, [2]float32{2, 2}))
	require.NoError(t, err)

	require.NoError(t, r.Release())
	assert.NotNil(t, dev.Texture(atlas.ID()))
}

// stopCountingPool records Stop calls on top of a real pool.
type stopCountingPool struct {
	worker.DynamicWorkerPool
	stops atomic.Int32
}

func (p *stopCountingPool) Stop() {
	p.stops.Add(1)
	p.DynamicWorkerPool.Stop()
}

func TestReleaseStopsOwnedPool(t *testing.T) {
	pool := &stopCountingPool{}
	f := newFixture(t, 8, 8, WithParallelThreshold(0), withPoolFactory(func(workers int) worker.DynamicWorkerPool {
		pool.DynamicWorkerPool = worker.NewDynamicWorkerPool(workers, 16, time.Second)
		return pool
	}))
	for y := range 8 {
		for x := range 8 {
			f.create(t, grid.Pos{X: x, Y: y}, [4]float32{1, 1, 1, 1})
		}
	}
	require.Equal(t, SyncFull, f.renderer.Sync())

	done := make(chan error, 1)
	go func() { done <- f.renderer.Release() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Release did not return")
	}
	assert.Equal(t, int32(1), pool.stops.Load())

	require.NoError(t, f.renderer.Release())
	assert.Equal(t, int32(1), pool.stops.Load(), "a second Release leaves the pool alone")
}

func TestReleaseLeavesCallerPoolRunning(t *testing.T) {
	pool := &stopCountingPool{DynamicWorkerPool: worker.NewDynamicWorkerPool(2, 16, time.Second)}
	f := newFixture(t, 2, 2, WithWorkerPool(pool, 2), WithParallelThreshold(0))
	f.threeTiles(t)
	require.Equal(t, SyncFull, f.renderer.Sync())

	require.NoError(t, f.renderer.Release())
	assert.Zero(t, pool.stops.Load())
	pool.DynamicWorkerPool.Stop()
}

func TestReleaseDeletesEverything(t *testing.T) {
	f := newFixture(t, 2, 2)
	f.threeTiles(t)
	f.renderer.Sync()

	require.NoError(t, f.renderer.Release())
	assert.Zero(t, f.dev.LiveBuffers())
	assert.Nil(t, f.dev.Program(f.renderer.program.ID()))
}

func TestSyncKindString(t *testing.T) {
	assert.Equal(t, "partial", SyncPartial.String())
	assert.Equal(t, "SyncKind(9)", SyncKind(9).String())
}

func count(calls []string, name string) int {
	n := 0
	for c := range slices.Values(calls) {
		if c == name {
			n++
		}
	}
	return n
}
