package tilemap

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/world"
)

// Sync reads the world's changes since the previous call and brings the storage buffers
// up to date. Device failures here mean the setup contract was broken, so Sync panics
// instead of returning them. It also panics if a modified tile has no slot, which means
// the slot index and the buffers no longer describe the same tiles.
//
// Returns:
//   - SyncKind: the kind of update performed
func (r *Renderer) Sync() SyncKind {
	r.reader.ReadChanges(&r.inserted, &r.modified, &r.removed)

	switch {
	case r.resyncPending,
		!r.inserted.Empty(),
		!r.removed.Empty(),
		r.modified.Union().Has(world.ComponentPosition):
		r.resync()
		return SyncFull
	case !r.modified.Empty():
		r.patch()
		return SyncPartial
	default:
		return SyncNone
	}
}

// resync extracts every live tile into fresh arrays, rebuilds the slot index and
// uploads the arrays whole.
func (r *Renderer) resync() {
	entities := r.world.Entities()
	n := len(entities)
	r.positions = resize(r.positions, n)
	r.colors = resize(r.colors, n)
	r.sprites = resize(r.sprites, n)

	if n >= r.parallelThreshold && n > 1 {
		r.extractParallel(entities)
	} else {
		r.extract(entities, 0, n)
	}

	r.index = make(map[grid.Pos]int, n)
	for i, p := range r.positions {
		r.index[grid.Pos{X: int(p[0]), Y: int(p[1])}] = i
	}
	r.slots = append(r.slots[:0], entities...)

	env := r.program.Env()
	mustUpload(env.Positions, r.positions)
	mustUpload(env.Colors, r.colors)
	mustUpload(env.Sprites, r.sprites)

	r.resyncPending = false
	r.stats.FullResyncs++
	r.stats.Tiles = n
	r.logger.Debug().
		Int("tiles", n).
		Int("inserted", r.inserted.Len()).
		Int("removed", r.removed.Len()).
		Msg("tile buffers resynchronized")
}

// extract fills slots [from, to) of the arrays from the tiles of entities.
func (r *Renderer) extract(entities []world.Entity, from, to int) {
	for i := from; i < to; i++ {
		tile, ok := r.world.Tile(entities[i])
		if !ok {
			panic(fmt.Sprintf("tilemap: entity %s vanished during resync", entities[i]))
		}
		r.positions[i] = [2]uint32{uint32(tile.Pos.X), uint32(tile.Pos.Y)}
		r.colors[i] = tile.Color
		r.sprites[i] = tile.Sprite
	}
}

// extractParallel splits extract into one task per worker. Each task writes a disjoint
// range of the arrays.
func (r *Renderer) extractParallel(entities []world.Entity) {
	n := len(entities)
	chunk := (n + r.workers - 1) / r.workers

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed any
	)
	for id, from := 0, 0; from < n; id, from = id+1, from+chunk {
		to := min(from+chunk, n)
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						mu.Lock()
						failed = p
						mu.Unlock()
					}
				}()
				r.extract(entities, from, to)
				return nil, nil
			},
		})
	}
	wg.Wait()
	if failed != nil {
		panic(failed)
	}
}

// update is one slot rewrite collected before a buffer is mapped.
type update[T any] struct {
	slot  int
	value T
}

// patch rewrites the slots of modified tiles. Only the buffers whose component changed
// are mapped.
func (r *Renderer) patch() {
	env := r.program.Env()
	mask := r.modified.Union()
	patched := 0
	if mask.Has(world.ComponentColor) {
		patched += patchBuffer(r, env.Colors, world.ComponentColor, func(t world.Tile) [4]float32 { return t.Color })
	}
	if mask.Has(world.ComponentSprite) {
		patched += patchBuffer(r, env.Sprites, world.ComponentSprite, func(t world.Tile) [2]float32 { return t.Sprite })
	}
	r.stats.Patches++
	r.stats.PatchedSlots += uint64(patched)
}

// patchBuffer writes value(tile) into the slot of every modified tile whose mask has
// component. Slots are resolved before the buffer is mapped, so a missing slot is
// detected even when there is nothing to map.
func patchBuffer[T any](r *Renderer, buf *buffer.ShaderStorageBuffer[T], component world.Component, value func(world.Tile) T) int {
	var updates []update[T]
	for e, mask := range r.modified.All() {
		if !mask.Has(component) {
			continue
		}
		tile, ok := r.world.Tile(e)
		if !ok {
			panic(fmt.Sprintf("tilemap: modified entity %s is not alive", e))
		}
		updates = append(updates, update[T]{slot: r.mustSlot(e, tile.Pos), value: value(tile)})
	}
	if len(updates) == 0 {
		return 0
	}

	mapped, err := buffer.WithMapped(buf, func(v *buffer.MappedView[T, buffer.ShaderStorage]) {
		for _, u := range updates {
			v.Set(u.slot, u.value)
		}
	})
	if err != nil {
		panic(err)
	}
	if !mapped {
		panic(fmt.Sprintf("tilemap: %d slots to patch but the %s buffer is empty", len(updates), component))
	}
	return len(updates)
}

func (r *Renderer) mustSlot(e world.Entity, p grid.Pos) int {
	slot, ok := r.index[p]
	if !ok {
		panic(fmt.Sprintf("tilemap: modified entity %s at %s has no slot", e, p))
	}
	if r.slots[slot] != e {
		panic(fmt.Sprintf("tilemap: slot %d of %s holds %s, not modified entity %s", slot, p, r.slots[slot], e))
	}
	return slot
}

func mustUpload[T any](buf *buffer.ShaderStorageBuffer[T], data []T) {
	if err := buf.Upload(data, buffer.DynamicDraw); err != nil {
		panic(err)
	}
}

// resize returns s with length n, reusing its storage when it is large enough.
func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}
