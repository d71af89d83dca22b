package buffer

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// MappedView is a read/write window onto the data store of a mapped buffer. It borrows the
// buffer exclusively: while the view is open the buffer cannot be uploaded to, released or
// mapped again. Close must run on every exit path, usually through defer.
type MappedView[T any, B Target] struct {
	buf    *Buffer[T, B]
	data   []T
	closed bool
}

// Mappable is implemented by buffers that can be mapped into client memory.
type Mappable[T any, B Target] interface {
	MapMut() (*MappedView[T, B], error)
}

// MapMut binds the buffer and maps its whole data store for reading and writing.
//
// An empty buffer has nothing to map: MapMut returns a nil view and a nil error and the
// caller skips its update. MapMut panics if the buffer is already mapped, either through
// another view or according to the device, since that means two writers share the store.
//
// Returns:
//   - *MappedView[T, B]: the open view, or nil for an empty buffer
//   - error: the device error if the bind or the mapping failed
func (b *Buffer[T, B]) MapMut() (*MappedView[T, B], error) {
	b.mustBeLive("map")
	if b.length == 0 {
		return nil, nil
	}
	if b.mapped {
		panic(fmt.Sprintf("buffer: %s buffer %d is already mapped", TargetOf[B](), b.id))
	}

	target := TargetOf[B]()
	if err := b.Bind(); err != nil {
		return nil, eris.Wrapf(err, "failed to bind %s buffer %d for mapping", target, b.id)
	}
	mapped, err := b.dev.BufferMapped(target)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to query mapping state of %s buffer %d", target, b.id)
	}
	if mapped {
		panic(fmt.Sprintf("buffer: device reports %s buffer %d is already mapped", target, b.id))
	}
	stale, err := b.dev.BufferMapPointer(target)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to query mapping pointer of %s buffer %d", target, b.id)
	}
	if stale != nil {
		panic(fmt.Sprintf("buffer: %s buffer %d has an outstanding mapping pointer", target, b.id))
	}

	size := b.length * int(elemSize[T]())
	ptr, err := b.dev.MapBufferRange(target, 0, size, device.MapReadBit|device.MapWriteBit)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to map %d bytes of %s buffer %d", size, target, b.id)
	}
	if ptr == nil {
		return nil, eris.Errorf("device returned no mapping for %s buffer %d", target, b.id)
	}
	b.mapped = true
	return &MappedView[T, B]{buf: b, data: unsafe.Slice((*T)(ptr), b.length)}, nil
}

// WithMapped maps a buffer, runs fn with the open view and closes the view afterwards,
// including when fn panics. It reports false without calling fn if the buffer is empty.
//
// Parameters:
//   - m: the buffer to map
//   - fn: the function receiving the view
//
// Returns:
//   - bool: true if fn was called
//   - error: the mapping error, if any
func WithMapped[T any, B Target](m Mappable[T, B], fn func(v *MappedView[T, B])) (bool, error) {
	v, err := m.MapMut()
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	defer v.Close()
	fn(v)
	return true, nil
}

// Len returns the number of mapped elements.
func (v *MappedView[T, B]) Len() int {
	return len(v.data)
}

// Get returns element i. It panics if i is out of range or the view is closed.
func (v *MappedView[T, B]) Get(i int) T {
	v.check(i)
	return v.data[i]
}

// Set overwrites element i. It panics if i is out of range or the view is closed.
func (v *MappedView[T, B]) Set(i int, value T) {
	v.check(i)
	v.data[i] = value
}

// At returns a pointer to element i, valid until the view is closed.
func (v *MappedView[T, B]) At(i int) *T {
	v.check(i)
	return &v.data[i]
}

// Slice returns the whole mapped extent, valid until the view is closed.
func (v *MappedView[T, B]) Slice() []T {
	if v.closed {
		panic("buffer: use of closed mapped view")
	}
	return v.data
}

func (v *MappedView[T, B]) check(i int) {
	if v.closed {
		panic("buffer: use of closed mapped view")
	}
	if i < 0 || i >= len(v.data) {
		panic(fmt.Sprintf("buffer: mapped index %d out of range [0, %d)", i, len(v.data)))
	}
}

// Close re-binds the buffer and unmaps it. If the device reports that the data store was
// lost while mapped, the buffer contents are undefined and Close panics. Closing an already
// closed view has no effect.
func (v *MappedView[T, B]) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.data = nil

	b := v.buf
	b.mapped = false
	target := TargetOf[B]()
	if err := b.dev.BindBuffer(target, b.id); err != nil {
		panic(eris.Wrapf(err, "failed to re-bind %s buffer %d for unmapping", target, b.id))
	}
	intact, err := b.dev.UnmapBuffer(target)
	if err != nil {
		panic(eris.Wrapf(err, "failed to unmap %s buffer %d", target, b.id))
	}
	if !intact {
		panic(fmt.Sprintf("buffer: data store of %s buffer %d was corrupted while mapped", target, b.id))
	}
}
