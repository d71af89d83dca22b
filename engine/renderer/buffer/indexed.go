package buffer

import (
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// IndexedBuffer is a Buffer on an indexed target that owns a numbered binding point.
type IndexedBuffer[T any, B IndexedTarget] struct {
	buf       *Buffer[T, B]
	bindPoint uint32
}

// ShaderStorageBuffer is an array of T readable and writable from shaders.
type ShaderStorageBuffer[T any] = IndexedBuffer[T, ShaderStorage]

// UniformBuffer is a uniform block source.
type UniformBuffer[T any] = IndexedBuffer[T, Uniform]

// NewIndexed allocates a device buffer that binds to bindPoint of target kind B.
//
// Parameters:
//   - dev: the device that owns the buffer
//   - bindPoint: the binding point this buffer occupies
//
// Returns:
//   - *IndexedBuffer[T, B]: the empty buffer
//   - error: the device error if the buffer name could not be allocated
func NewIndexed[T any, B IndexedTarget](dev device.Device, bindPoint uint32) (*IndexedBuffer[T, B], error) {
	buf, err := New[T, B](dev)
	if err != nil {
		return nil, err
	}
	return &IndexedBuffer[T, B]{buf: buf, bindPoint: bindPoint}, nil
}

// ID returns the device name of the buffer.
func (b *IndexedBuffer[T, B]) ID() uint32 {
	return b.buf.id
}

// BindPoint returns the binding point the buffer occupies.
func (b *IndexedBuffer[T, B]) BindPoint() uint32 {
	return b.bindPoint
}

// Len returns the number of elements of the last upload.
func (b *IndexedBuffer[T, B]) Len() int {
	return b.buf.length
}

// Mapped reports whether a MappedView of the buffer is open.
func (b *IndexedBuffer[T, B]) Mapped() bool {
	return b.buf.mapped
}

// Bind binds the buffer to its binding point. The buffer also becomes bound to the
// global slot of its target.
func (b *IndexedBuffer[T, B]) Bind() error {
	b.buf.mustBeLive("bind")
	return b.buf.dev.BindBufferBase(TargetOf[B](), b.bindPoint, b.buf.id)
}

// Upload binds the buffer to its binding point and replaces its data store with data.
// See Buffer.Upload.
func (b *IndexedBuffer[T, B]) Upload(data []T, usage Usage) error {
	b.buf.mustBeUnmapped("upload to")
	if err := b.Bind(); err != nil {
		return eris.Wrapf(err, "failed to bind %s buffer %d to point %d", TargetOf[B](), b.buf.id, b.bindPoint)
	}
	return b.buf.store(data, usage)
}

// MapMut maps the whole data store for reading and writing. It returns a nil view and a
// nil error when the buffer is empty. See Buffer.MapMut.
func (b *IndexedBuffer[T, B]) MapMut() (*MappedView[T, B], error) {
	return b.buf.MapMut()
}

// Release deletes the device buffer. See Buffer.Release.
func (b *IndexedBuffer[T, B]) Release() error {
	return b.buf.Release()
}
