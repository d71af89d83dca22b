// Package grid provides a dense two-dimensional array addressed by (x, y).
//
// The storage order of a Grid is fixed when it is created. In RowMajor order (x, y) and
// (x+1, y) are neighbours in memory; in ColumnMajor order (x, y) and (x, y+1) are. Code
// that walks a grid with All visits cells in storage order, which makes the orientation
// observable to anything that turns a walk into buffer slots.
package grid

import (
	"fmt"
	"iter"
	"strings"

	"github.com/rotisserie/eris"
)

// Orientation selects the storage order of a Grid.
type Orientation uint8

const (
	// RowMajor stores each row contiguously.
	RowMajor Orientation = iota
	// ColumnMajor stores each column contiguously.
	ColumnMajor
)

func (o Orientation) String() string {
	switch o {
	case RowMajor:
		return "row_major"
	case ColumnMajor:
		return "column_major"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// ParseOrientation parses the String form of an Orientation, ignoring case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "row_major":
		return RowMajor, nil
	case "column_major":
		return ColumnMajor, nil
	default:
		return 0, eris.Errorf("unknown grid orientation %q", s)
	}
}

// Pos is a cell coordinate.
type Pos struct {
	X, Y int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Grid is a width × height array of T.
type Grid[T any] struct {
	data        []T
	width       int
	height      int
	orientation Orientation
}

// New creates a grid of zero values.
//
// Parameters:
//   - width: the number of columns
//   - height: the number of rows
//   - orientation: the storage order
//
// Returns:
//   - *Grid[T]: the grid
func New[T any](width, height int, orientation Orientation) *Grid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("grid: negative dimensions %dx%d", width, height))
	}
	if orientation > ColumnMajor {
		panic(fmt.Sprintf("grid: invalid %s", orientation))
	}
	return &Grid[T]{
		data:        make([]T, width*height),
		width:       width,
		height:      height,
		orientation: orientation,
	}
}

// FromSlice creates a grid from the first width*height values of data, taken in storage
// order. It panics if data is shorter than that.
func FromSlice[T any](data []T, width, height int, orientation Orientation) *Grid[T] {
	g := New[T](width, height, orientation)
	if len(data) < len(g.data) {
		panic(fmt.Sprintf("grid: %d values for a %dx%d grid", len(data), width, height))
	}
	copy(g.data, data)
	return g
}

// Width returns the number of columns.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid[T]) Height() int { return g.height }

// Dimensions returns the width and height.
func (g *Grid[T]) Dimensions() (int, int) { return g.width, g.height }

// Len returns the number of cells.
func (g *Grid[T]) Len() int { return len(g.data) }

// Orientation returns the storage order.
func (g *Grid[T]) Orientation() Orientation { return g.orientation }

// Contains reports whether p lies inside the grid.
func (g *Grid[T]) Contains(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Index returns the storage index of p. It panics if p lies outside the grid.
func (g *Grid[T]) Index(p Pos) int {
	if !g.Contains(p) {
		panic(fmt.Sprintf("grid: position %s outside %dx%d grid", p, g.width, g.height))
	}
	if g.orientation == ColumnMajor {
		return g.height*p.X + p.Y
	}
	return g.width*p.Y + p.X
}

// PosOf returns the position stored at index i. It is the inverse of Index.
func (g *Grid[T]) PosOf(i int) Pos {
	if i < 0 || i >= len(g.data) {
		panic(fmt.Sprintf("grid: index %d outside %dx%d grid", i, g.width, g.height))
	}
	if g.orientation == ColumnMajor {
		return Pos{X: i / g.height, Y: i % g.height}
	}
	return Pos{X: i % g.width, Y: i / g.width}
}

// At returns the value at p.
func (g *Grid[T]) At(p Pos) T {
	return g.data[g.Index(p)]
}

// Ptr returns a pointer to the cell at p. The pointer stays valid for the life of the grid.
func (g *Grid[T]) Ptr(p Pos) *T {
	return &g.data[g.Index(p)]
}

// Set stores v at p.
func (g *Grid[T]) Set(p Pos, v T) {
	g.data[g.Index(p)] = v
}

// Fill stores v in every cell.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// CopyFrom overwrites every cell with the matching cell of other. Both grids must have
// the same dimensions; their orientations may differ.
func (g *Grid[T]) CopyFrom(other *Grid[T]) {
	if g.width != other.width || g.height != other.height {
		panic(fmt.Sprintf("grid: copy of %dx%d grid into %dx%d grid", other.width, other.height, g.width, g.height))
	}
	if g.orientation == other.orientation {
		copy(g.data, other.data)
		return
	}
	for p, v := range other.All() {
		g.Set(p, v)
	}
}

// All yields every position and value in storage order.
func (g *Grid[T]) All() iter.Seq2[Pos, T] {
	return func(yield func(Pos, T) bool) {
		for i, v := range g.data {
			if !yield(g.PosOf(i), v) {
				return
			}
		}
	}
}

// Values yields every value in storage order.
func (g *Grid[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range g.data {
			if !yield(v) {
				return
			}
		}
	}
}
