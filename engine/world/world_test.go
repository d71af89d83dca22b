package world

import (
	"bytes"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = [4]float32{1, 0, 0, 1}
	green = [4]float32{0, 1, 0, 1}
	blue  = [4]float32{0, 0, 1, 1}
)

func mustCreate(t *testing.T, w *World, pos grid.Pos, color [4]float32) Entity {
	t.Helper()
	e, err := w.Create(Tile{Pos: pos, Color: color})
	require.NoError(t, err)
	return e
}

func TestCreatePlacesTileOnGrid(t *testing.T) {
	w := NewWorld(4, 3)
	e := mustCreate(t, w, grid.Pos{X: 2, Y: 1}, red)

	assert.True(t, e.Valid())
	assert.True(t, w.Alive(e))
	assert.Equal(t, e, w.At(grid.Pos{X: 2, Y: 1}))
	assert.Equal(t, NoEntity, w.At(grid.Pos{X: 0, Y: 0}))
	assert.Equal(t, 1, w.Len())

	tile, ok := w.Tile(e)
	require.True(t, ok)
	assert.Equal(t, red, tile.Color)
}

func TestCreateRejectsBadCells(t *testing.T) {
	w := NewWorld(2, 2)
	mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)

	_, err := w.Create(Tile{Pos: grid.Pos{X: 0, Y: 0}})
	assert.True(t, errors.Is(err, ErrOccupied))

	_, err = w.Create(Tile{Pos: grid.Pos{X: 2, Y: 0}})
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, 1, w.Len())
}

func TestRemoveFreesCellAndInvalidatesHandle(t *testing.T) {
	w := NewWorld(2, 2)
	a := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	b := mustCreate(t, w, grid.Pos{X: 1, Y: 0}, green)

	require.NoError(t, w.Remove(a))
	assert.False(t, w.Alive(a))
	assert.Equal(t, NoEntity, w.At(grid.Pos{X: 0, Y: 0}))
	assert.Equal(t, []Entity{b}, w.Entities())
	assert.True(t, errors.Is(w.Remove(a), ErrNoEntity))

	c := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, blue)
	assert.Equal(t, a.ID, c.ID, "slot is reused")
	assert.NotEqual(t, a.Version, c.Version)
	assert.True(t, errors.Is(w.SetColor(a, red), ErrNoEntity), "stale handle does not reach the new tile")
}

func TestMutateReportsOnlyChangedComponents(t *testing.T) {
	w := NewWorld(3, 3)
	e := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	r := w.NewReader()

	var ins, mod, rem EntitySet
	require.NoError(t, w.SetColor(e, red))
	r.ReadChanges(&ins, &mod, &rem)
	assert.True(t, mod.Empty(), "unchanged value records nothing")

	require.NoError(t, w.SetColor(e, green))
	require.NoError(t, w.SetSprite(e, [2]float32{3, 4}))
	r.ReadChanges(&ins, &mod, &rem)
	assert.True(t, ins.Empty())
	assert.Equal(t, ComponentColor|ComponentSprite, mod.Mask(e))
	assert.False(t, mod.Mask(e).Has(ComponentPosition))
}

func TestMoveUpdatesGrid(t *testing.T) {
	w := NewWorld(3, 3)
	a := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	b := mustCreate(t, w, grid.Pos{X: 1, Y: 0}, green)

	require.NoError(t, w.Move(a, grid.Pos{X: 2, Y: 2}))
	assert.Equal(t, a, w.At(grid.Pos{X: 2, Y: 2}))
	assert.Equal(t, NoEntity, w.At(grid.Pos{X: 0, Y: 0}))

	assert.True(t, errors.Is(w.Move(a, grid.Pos{X: 1, Y: 0}), ErrOccupied))
	assert.True(t, errors.Is(w.Move(b, grid.Pos{X: 5, Y: 0}), ErrOutOfBounds))
	tile, _ := w.Tile(b)
	assert.Equal(t, grid.Pos{X: 1, Y: 0}, tile.Pos, "failed move leaves the tile in place")
}

func TestReadChangesClearsAndRefills(t *testing.T) {
	w := NewWorld(3, 3)
	before := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	r := w.NewReader()

	var ins, mod, rem EntitySet
	a := mustCreate(t, w, grid.Pos{X: 1, Y: 0}, green)
	require.NoError(t, w.SetColor(a, blue))
	require.NoError(t, w.SetColor(before, blue))
	r.ReadChanges(&ins, &mod, &rem)

	assert.Equal(t, 1, ins.Len())
	assert.Equal(t, ComponentAll, ins.Mask(a))
	assert.False(t, mod.Contains(a), "modification of a new tile is folded into its insertion")
	assert.Equal(t, ComponentColor, mod.Mask(before))
	assert.True(t, rem.Empty())

	r.ReadChanges(&ins, &mod, &rem)
	assert.True(t, ins.Empty())
	assert.True(t, mod.Empty())
	assert.False(t, r.Pending())
}

func TestRemovalSupersedesOtherChanges(t *testing.T) {
	w := NewWorld(3, 3)
	old := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	r := w.NewReader()

	fresh := mustCreate(t, w, grid.Pos{X: 1, Y: 1}, green)
	require.NoError(t, w.SetColor(old, green))
	require.NoError(t, w.Remove(old))
	require.NoError(t, w.Remove(fresh))

	var ins, mod, rem EntitySet
	r.ReadChanges(&ins, &mod, &rem)
	assert.True(t, ins.Empty())
	assert.True(t, mod.Empty())
	assert.True(t, rem.Contains(old))
	assert.True(t, rem.Contains(fresh))
}

func TestReadersAreIndependent(t *testing.T) {
	w := NewWorld(3, 3)
	first := w.NewReader()
	e := mustCreate(t, w, grid.Pos{X: 0, Y: 0}, red)
	second := w.NewReader()
	require.NoError(t, w.SetColor(e, green))

	var ins, mod, rem EntitySet
	second.ReadChanges(&ins, &mod, &rem)
	assert.True(t, ins.Empty())
	assert.Equal(t, ComponentColor, mod.Mask(e))

	first.ReadChanges(&ins, &mod, &rem)
	assert.True(t, ins.Contains(e))
	assert.Empty(t, w.events, "log is trimmed once every reader consumed it")

	second.Close()
	first.Close()
	require.NoError(t, w.SetColor(e, blue))
	assert.Empty(t, w.events, "no events are kept without readers")
	assert.Panics(t, func() { first.ReadChanges(&ins, &mod, &rem) })
}

func TestResizeDropsTilesOutsideNewGrid(t *testing.T) {
	var out bytes.Buffer
	w := NewWorld(3, 3, WithOrientation(grid.ColumnMajor), WithLogger(zerolog.New(&out).Level(zerolog.DebugLevel)))
	keep := mustCreate(t, w, grid.Pos{X: 1, Y: 1}, red)
	drop := mustCreate(t, w, grid.Pos{X: 2, Y: 2}, green)
	r := w.NewReader()

	w.Resize(2, 2)
	width, height := w.Dimensions()
	assert.Equal(t, [2]int{2, 2}, [2]int{width, height})
	assert.Equal(t, grid.ColumnMajor, w.Orientation())
	assert.Equal(t, keep, w.At(grid.Pos{X: 1, Y: 1}))
	assert.False(t, w.Alive(drop))

	var ins, mod, rem EntitySet
	r.ReadChanges(&ins, &mod, &rem)
	assert.True(t, rem.Contains(drop))
	assert.Contains(t, out.String(), `"removed":1`)
}

func TestClearRemovesEverything(t *testing.T) {
	w := NewWorld(2, 2)
	for _, p := range []grid.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}} {
		mustCreate(t, w, p, red)
	}
	w.Clear()
	assert.Zero(t, w.Len())
	for _, e := range w.cells.All() {
		assert.Equal(t, NoEntity, e)
	}
}

func TestAllWalksLiveTiles(t *testing.T) {
	w := NewWorld(3, 1)
	var want []Entity
	for x := range 3 {
		want = append(want, mustCreate(t, w, grid.Pos{X: x, Y: 0}, red))
	}
	var got []Entity
	for e, tile := range w.All() {
		got = append(got, e)
		assert.Equal(t, red, tile.Color)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, want, w.Entities())
	assert.True(t, slices.Equal(want, w.Entities()))
}

func TestConcurrentReads(t *testing.T) {
	w := NewWorld(8, 8)
	for x := range 8 {
		mustCreate(t, w, grid.Pos{X: x, Y: 0}, red)
	}
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range w.Entities() {
				_, ok := w.Tile(e)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

func TestComponentString(t *testing.T) {
	assert.Equal(t, "none", ComponentNone.String())
	assert.Equal(t, "position|sprite", (ComponentPosition | ComponentSprite).String())
	assert.Equal(t, "3v2", Entity{ID: 3, Version: 2}.String())
}
