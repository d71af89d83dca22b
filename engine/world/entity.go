package world

import (
	"fmt"
	"iter"
	"strings"

	"github.com/Carmen-Shannon/oxy-tiles/engine/grid"
)

// Entity identifies a tile. An Entity stays valid until the tile is removed; the slot
// may then be reused under a new Version, so stale handles never alias a new tile.
type Entity struct {
	// ID is the slot of the entity, starting at 1.
	ID uint32
	// Version distinguishes successive entities that used the same slot.
	Version uint32
}

// NoEntity is stored in grid cells that hold no tile.
var NoEntity = Entity{}

// Valid reports whether e is not NoEntity. It says nothing about whether e is alive.
func (e Entity) Valid() bool {
	return e.ID != 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.ID, e.Version)
}

// Component is a bit mask of tile components.
type Component uint8

const (
	ComponentPosition Component = 1 << iota
	ComponentColor
	ComponentSprite

	ComponentNone Component = 0
	ComponentAll            = ComponentPosition | ComponentColor | ComponentSprite
)

// Has reports whether every bit of other is set in c.
func (c Component) Has(other Component) bool {
	return c&other == other
}

func (c Component) String() string {
	if c == ComponentNone {
		return "none"
	}
	var parts []string
	for _, named := range []struct {
		bit  Component
		name string
	}{
		{ComponentPosition, "position"},
		{ComponentColor, "color"},
		{ComponentSprite, "sprite"},
	} {
		if c&named.bit != 0 {
			parts = append(parts, named.name)
		}
	}
	return strings.Join(parts, "|")
}

// Tile is the data of one entity.
type Tile struct {
	// Pos is the grid cell of the tile.
	Pos grid.Pos
	// Color is the RGBA tint of the tile.
	Color [4]float32
	// Sprite is the cell of the tile atlas the tile shows, in atlas cells.
	Sprite [2]float32
}

// diff returns the components that differ between a and b.
func diff(a, b Tile) Component {
	var c Component
	if a.Pos != b.Pos {
		c |= ComponentPosition
	}
	if a.Color != b.Color {
		c |= ComponentColor
	}
	if a.Sprite != b.Sprite {
		c |= ComponentSprite
	}
	return c
}

// EntitySet is a set of entities, each with the mask of components it was reported for.
// The zero value is ready to use.
type EntitySet struct {
	m map[Entity]Component
}

// Add inserts e, merging mask into the mask already recorded for it.
func (s *EntitySet) Add(e Entity, mask Component) {
	if s.m == nil {
		s.m = make(map[Entity]Component)
	}
	s.m[e] |= mask
}

// Delete removes e.
func (s *EntitySet) Delete(e Entity) {
	delete(s.m, e)
}

// Contains reports whether e is in the set.
func (s *EntitySet) Contains(e Entity) bool {
	_, ok := s.m[e]
	return ok
}

// Mask returns the components recorded for e.
func (s *EntitySet) Mask(e Entity) Component {
	return s.m[e]
}

// Union returns the union of the masks of every entity in the set.
func (s *EntitySet) Union() Component {
	var c Component
	for _, mask := range s.m {
		c |= mask
	}
	return c
}

// Len returns the number of entities.
func (s *EntitySet) Len() int {
	return len(s.m)
}

// Empty reports whether the set holds no entity.
func (s *EntitySet) Empty() bool {
	return len(s.m) == 0
}

// Clear removes every entity and keeps the allocated storage.
func (s *EntitySet) Clear() {
	clear(s.m)
}

// All yields every entity and its mask in unspecified order.
func (s *EntitySet) All() iter.Seq2[Entity, Component] {
	return func(yield func(Entity, Component) bool) {
		for e, mask := range s.m {
			if !yield(e, mask) {
				return
			}
		}
	}
}
