// Package world keeps the tiles of a level and reports how they change.
//
// A World owns every tile, a grid that maps cells to the entity occupying them and an
// event log. Every mutation appends to the log; a Reader replays the events it has not
// seen yet into three sets (inserted, modified and removed entities) that consumers such
// as the tile renderer use to decide how much work a frame needs.
package world

import (
	"fmt"
	"iter"
	"sync"

	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	// ErrNoEntity is returned for entities that were removed or never existed.
	ErrNoEntity = eris.New("entity does not exist")

	// ErrOutOfBounds is returned when a tile is placed outside the grid.
	ErrOutOfBounds = eris.New("position outside the grid")

	// ErrOccupied is returned when a tile is placed on a cell another tile occupies.
	ErrOccupied = eris.New("position already occupied")
)

type slot struct {
	version uint32
	alive   bool
	dense   int
	tile    Tile
}

// World holds the tiles of a level. It is safe for concurrent use.
type World struct {
	mu     sync.RWMutex
	logger zerolog.Logger

	orientation grid.Orientation
	cells       *grid.Grid[Entity]

	// slots is indexed by Entity.ID; slot 0 is never used.
	slots []slot
	free  []uint32
	// live holds the live entities densely; slot.dense is the index into it.
	live []Entity

	events  []event
	base    uint64
	readers map[*Reader]struct{}
}

// NewWorld creates an empty world with a width × height grid.
//
// Parameters:
//   - width: the number of grid columns
//   - height: the number of grid rows
//   - opts: optional settings
//
// Returns:
//   - *World: the world
func NewWorld(width, height int, opts ...WorldBuilderOption) *World {
	w := &World{
		logger:      zerolog.Nop(),
		orientation: grid.RowMajor,
		slots:       make([]slot, 1),
		readers:     make(map[*Reader]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.cells = grid.New[Entity](width, height, w.orientation)
	return w
}

// Dimensions returns the width and height of the grid.
func (w *World) Dimensions() (int, int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cells.Dimensions()
}

// Orientation returns the storage order of the grid.
func (w *World) Orientation() grid.Orientation {
	return w.orientation
}

// Len returns the number of live tiles.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.live)
}

// At returns the entity occupying p, or NoEntity. It panics if p lies outside the grid.
func (w *World) At(p grid.Pos) Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cells.At(p)
}

// Alive reports whether e refers to a live tile.
func (w *World) Alive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.slot(e)
	return ok
}

// Tile returns the data of e.
func (w *World) Tile(e Entity) (Tile, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.slot(e)
	if !ok {
		return Tile{}, false
	}
	return s.tile, true
}

// Entities returns the live entities in iteration order. The order is stable until the
// next Create or Remove.
func (w *World) Entities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entity, len(w.live))
	copy(out, w.live)
	return out
}

// All yields every live entity and its tile in iteration order. The world is read
// locked for the duration of the walk, so the loop body must not mutate the world.
func (w *World) All() iter.Seq2[Entity, Tile] {
	return func(yield func(Entity, Tile) bool) {
		w.mu.RLock()
		defer w.mu.RUnlock()
		for _, e := range w.live {
			if !yield(e, w.slots[e.ID].tile) {
				return
			}
		}
	}
}

// Create adds a tile.
//
// Parameters:
//   - tile: the tile data; tile.Pos must be a free cell of the grid
//
// Returns:
//   - Entity: the new entity
//   - error: ErrOutOfBounds or ErrOccupied
func (w *World) Create(tile Tile) (Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.placeable(tile.Pos, NoEntity); err != nil {
		return NoEntity, err
	}

	var id uint32
	if n := len(w.free); n > 0 {
		id, w.free = w.free[n-1], w.free[:n-1]
	} else {
		id = uint32(len(w.slots))
		w.slots = append(w.slots, slot{})
	}
	s := &w.slots[id]
	s.version++
	s.alive = true
	s.tile = tile
	s.dense = len(w.live)
	e := Entity{ID: id, Version: s.version}
	w.live = append(w.live, e)
	w.cells.Set(tile.Pos, e)
	w.record(eventInserted, e, ComponentAll)
	return e, nil
}

// Remove deletes a tile and frees its cell.
func (w *World) Remove(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.slot(e)
	if !ok {
		return eris.Wrapf(ErrNoEntity, "remove %s", e)
	}
	w.remove(e, s)
	return nil
}

func (w *World) remove(e Entity, s *slot) {
	if w.cells.Contains(s.tile.Pos) && w.cells.At(s.tile.Pos) == e {
		w.cells.Set(s.tile.Pos, NoEntity)
	}
	last := w.live[len(w.live)-1]
	w.live[s.dense] = last
	w.slots[last.ID].dense = s.dense
	w.live = w.live[:len(w.live)-1]

	s.alive = false
	s.tile = Tile{}
	w.free = append(w.free, e.ID)
	w.record(eventRemoved, e, ComponentAll)
}

// SetColor replaces the color of a tile.
func (w *World) SetColor(e Entity, color [4]float32) error {
	return w.Mutate(e, func(t *Tile) { t.Color = color })
}

// SetSprite replaces the atlas cell of a tile.
func (w *World) SetSprite(e Entity, sprite [2]float32) error {
	return w.Mutate(e, func(t *Tile) { t.Sprite = sprite })
}

// Move places a tile on another cell.
//
// Returns:
//   - error: ErrNoEntity, ErrOutOfBounds or ErrOccupied; the tile is unchanged on error
func (w *World) Move(e Entity, to grid.Pos) error {
	return w.Mutate(e, func(t *Tile) { t.Pos = to })
}

// Mutate applies fn to a copy of the tile of e and stores the result. Only the
// components fn actually changed are reported as modified; a call that changes nothing
// records no event.
//
// Parameters:
//   - e: the entity to change
//   - fn: edits the tile in place; it must not call into the world
//
// Returns:
//   - error: ErrNoEntity, or ErrOutOfBounds / ErrOccupied for a position change, in
//     which case the tile is unchanged
func (w *World) Mutate(e Entity, fn func(*Tile)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.slot(e)
	if !ok {
		return eris.Wrapf(ErrNoEntity, "mutate %s", e)
	}

	next := s.tile
	fn(&next)
	mask := diff(s.tile, next)
	if mask == ComponentNone {
		return nil
	}
	if mask.Has(ComponentPosition) {
		if err := w.placeable(next.Pos, e); err != nil {
			return err
		}
		w.cells.Set(s.tile.Pos, NoEntity)
		w.cells.Set(next.Pos, e)
	}
	s.tile = next
	w.record(eventModified, e, mask)
	return nil
}

// Resize replaces the grid with a width × height grid. Tiles whose cell lies outside
// the new grid are removed.
func (w *World) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cells := grid.New[Entity](width, height, w.orientation)

	var dropped []Entity
	for _, e := range w.live {
		pos := w.slots[e.ID].tile.Pos
		if cells.Contains(pos) {
			cells.Set(pos, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	oldW, oldH := w.cells.Dimensions()
	w.cells = cells
	for _, e := range dropped {
		w.remove(e, &w.slots[e.ID])
	}
	w.logger.Debug().
		Str("from", fmt.Sprintf("%dx%d", oldW, oldH)).
		Str("to", fmt.Sprintf("%dx%d", width, height)).
		Int("removed", len(dropped)).
		Msg("world grid resized")
}

// Clear removes every tile.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.live) > 0 {
		e := w.live[len(w.live)-1]
		w.remove(e, &w.slots[e.ID])
	}
}

func (w *World) slot(e Entity) (*slot, bool) {
	if e.ID == 0 || int(e.ID) >= len(w.slots) {
		return nil, false
	}
	s := &w.slots[e.ID]
	if !s.alive || s.version != e.Version {
		return nil, false
	}
	return s, true
}

// placeable checks that p is a free cell, or the cell of self.
func (w *World) placeable(p grid.Pos, self Entity) error {
	if !w.cells.Contains(p) {
		width, height := w.cells.Dimensions()
		return eris.Wrapf(ErrOutOfBounds, "%s in %dx%d grid", p, width, height)
	}
	if occupant := w.cells.At(p); occupant.Valid() && occupant != self {
		return eris.Wrapf(ErrOccupied, "%s holds %s", p, occupant)
	}
	return nil
}
