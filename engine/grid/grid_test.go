package grid

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFollowsOrientation(t *testing.T) {
	rows := New[int](3, 2, RowMajor)
	cols := New[int](3, 2, ColumnMajor)

	assert.Equal(t, 1, rows.Index(Pos{1, 0}), "x neighbours are adjacent in row major")
	assert.Equal(t, 3, rows.Index(Pos{0, 1}))
	assert.Equal(t, 2, cols.Index(Pos{1, 0}))
	assert.Equal(t, 1, cols.Index(Pos{0, 1}), "y neighbours are adjacent in column major")

	for _, g := range []*Grid[int]{rows, cols} {
		for i := range g.Len() {
			assert.Equal(t, i, g.Index(g.PosOf(i)), g.Orientation().String())
		}
	}
}

func TestSetAndAt(t *testing.T) {
	g := New[string](4, 3, ColumnMajor)
	g.Set(Pos{3, 2}, "corner")
	assert.Equal(t, "corner", g.At(Pos{3, 2}))
	*g.Ptr(Pos{0, 0}) = "origin"
	assert.Equal(t, "origin", g.At(Pos{0, 0}))
	assert.Equal(t, "", g.At(Pos{1, 1}))
}

func TestOutOfBoundsPanics(t *testing.T) {
	g := New[int](2, 2, RowMajor)
	for _, p := range []Pos{{2, 0}, {0, 2}, {-1, 0}, {0, -1}} {
		assert.False(t, g.Contains(p))
		assert.Panics(t, func() { g.At(p) }, p.String())
		assert.Panics(t, func() { g.Set(p, 1) }, p.String())
	}
	assert.Panics(t, func() { g.PosOf(4) })
	assert.Panics(t, func() { New[int](-1, 2, RowMajor) })
	assert.Panics(t, func() { New[int](1, 1, Orientation(7)) })
}

func TestFromSlice(t *testing.T) {
	g := FromSlice([]int{0, 1, 2, 3, 4, 5, 6}, 2, 3, RowMajor)
	assert.Equal(t, 5, g.At(Pos{1, 2}))
	assert.Equal(t, 6, g.Len(), "extra values are ignored")

	assert.Panics(t, func() { FromSlice([]int{1, 2, 3}, 2, 2, RowMajor) })
}

func TestAllVisitsStorageOrder(t *testing.T) {
	g := FromSlice([]int{0, 1, 2, 3}, 2, 2, ColumnMajor)
	var (
		positions []Pos
		values    []int
	)
	for p, v := range g.All() {
		positions = append(positions, p)
		values = append(values, v)
	}
	assert.Equal(t, []Pos{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, positions)
	assert.Equal(t, []int{0, 1, 2, 3}, values)
	assert.Equal(t, values, slices.Collect(g.Values()))

	for p := range g.All() {
		assert.Equal(t, Pos{0, 0}, p)
		break
	}
}

func TestFillAndCopyFrom(t *testing.T) {
	src := New[int](3, 2, RowMajor)
	src.Fill(7)
	src.Set(Pos{2, 1}, 9)

	dst := New[int](3, 2, ColumnMajor)
	dst.CopyFrom(src)
	for p, v := range src.All() {
		assert.Equal(t, v, dst.At(p), p.String())
	}

	same := New[int](3, 2, RowMajor)
	same.CopyFrom(src)
	assert.Equal(t, 9, same.At(Pos{2, 1}))

	assert.Panics(t, func() { New[int](2, 3, RowMajor).CopyFrom(src) })
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("Column_Major")
	require.NoError(t, err)
	assert.Equal(t, ColumnMajor, o)

	o, err = ParseOrientation(RowMajor.String())
	require.NoError(t, err)
	assert.Equal(t, RowMajor, o)

	_, err = ParseOrientation("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "Orientation(4)", Orientation(4).String())
}
