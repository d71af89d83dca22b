// Package buffer provides device buffers typed by element type and binding target.
//
// A Buffer[T, B] owns one device buffer name for its whole life. The element type fixes the
// layout of every upload and mapping, and the target kind fixes the binding slot, so a
// storage buffer of colors cannot be bound as a vertex buffer or filled with positions.
// Indexed targets additionally get an IndexedBuffer that owns a numbered binding point.
package buffer

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// Buffer is a device buffer holding elements of type T bound to target kind B.
type Buffer[T any, B Target] struct {
	dev      device.Device
	id       uint32
	length   int
	mapped   bool
	released bool
}

// VertexBuffer holds per-vertex records for a vertex array.
type VertexBuffer[T any] = Buffer[T, Array]

// ElementBuffer holds vertex indices.
type ElementBuffer[T any] = Buffer[T, Element]

// New allocates a device buffer for elements of type T on target kind B.
//
// Parameters:
//   - dev: the device that owns the buffer
//
// Returns:
//   - *Buffer[T, B]: the empty buffer
//   - error: the device error if the buffer name could not be allocated
func New[T any, B Target](dev device.Device) (*Buffer[T, B], error) {
	id, err := dev.GenBuffer()
	if err != nil {
		return nil, eris.Wrapf(err, "failed to allocate %s buffer", TargetOf[B]())
	}
	return &Buffer[T, B]{dev: dev, id: id}, nil
}

// ID returns the device name of the buffer.
func (b *Buffer[T, B]) ID() uint32 {
	return b.id
}

// Len returns the number of elements of the last upload.
func (b *Buffer[T, B]) Len() int {
	return b.length
}

// Mapped reports whether a MappedView of the buffer is open.
func (b *Buffer[T, B]) Mapped() bool {
	return b.mapped
}

// Bind binds the buffer to the global slot of its target.
func (b *Buffer[T, B]) Bind() error {
	b.mustBeLive("bind")
	return b.dev.BindBuffer(TargetOf[B](), b.id)
}

// Upload binds the buffer and replaces its whole data store with data. Any element count
// recorded by an earlier upload is replaced by len(data). Upload panics if a MappedView of
// the buffer is open.
//
// Parameters:
//   - data: the new contents
//   - usage: the access hint for the new store
//
// Returns:
//   - error: the device error if the bind or the store replacement failed
func (b *Buffer[T, B]) Upload(data []T, usage Usage) error {
	b.mustBeUnmapped("upload to")
	if err := b.Bind(); err != nil {
		return eris.Wrapf(err, "failed to bind %s buffer %d for upload", TargetOf[B](), b.id)
	}
	return b.store(data, usage)
}

// store replaces the data store of the already bound buffer.
func (b *Buffer[T, B]) store(data []T, usage Usage) error {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	size := len(data) * int(elemSize[T]())
	if err := b.dev.BufferData(TargetOf[B](), size, ptr, device.Enum(usage)); err != nil {
		return eris.Wrapf(err, "failed to upload %d elements to %s buffer %d", len(data), TargetOf[B](), b.id)
	}
	b.length = len(data)
	return nil
}

// Release deletes the device buffer. Calling it again has no effect. Release panics if a
// MappedView of the buffer is open.
func (b *Buffer[T, B]) Release() error {
	if b.released {
		return nil
	}
	b.mustBeUnmapped("release of")
	b.released = true
	b.length = 0
	if err := b.dev.DeleteBuffer(b.id); err != nil {
		return eris.Wrapf(err, "failed to delete %s buffer %d", TargetOf[B](), b.id)
	}
	return nil
}

func (b *Buffer[T, B]) mustBeLive(op string) {
	if b.released {
		panic(fmt.Sprintf("buffer: %s of released %s buffer %d", op, TargetOf[B](), b.id))
	}
}

func (b *Buffer[T, B]) mustBeUnmapped(op string) {
	if b.mapped {
		panic(fmt.Sprintf("buffer: %s %s buffer %d while it is mapped", op, TargetOf[B](), b.id))
	}
}

func elemSize[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}
