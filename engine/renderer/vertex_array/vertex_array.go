package vertex_array

import (
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-tiles/engine/renderer/layout"
	"github.com/rotisserie/eris"
)

// VertexArray is a device vertex array object that stacks attributes from one or more
// vertex buffers. Attribute slots are handed out consecutively in the order buffers are added.
type VertexArray struct {
	dev      device.Device
	id       uint32
	nextSlot uint32
	released bool
}

// New allocates an empty vertex array.
//
// Parameters:
//   - dev: the device that owns the vertex array
//
// Returns:
//   - *VertexArray: the vertex array with no attributes
//   - error: the device error if the name could not be allocated
func New(dev device.Device) (*VertexArray, error) {
	id, err := dev.GenVertexArray()
	if err != nil {
		return nil, eris.Wrap(err, "failed to allocate vertex array")
	}
	return &VertexArray{dev: dev, id: id}, nil
}

// ID returns the device name of the vertex array.
func (v *VertexArray) ID() uint32 {
	return v.id
}

// Slots returns the number of attribute slots defined so far.
func (v *VertexArray) Slots() uint32 {
	return v.nextSlot
}

// Bind makes the vertex array current.
func (v *VertexArray) Bind() error {
	if v.released {
		panic("vertex_array: bind of released vertex array")
	}
	return v.dev.BindVertexArray(v.id)
}

// AddBuffer describes the attributes of vertex record type T sourced from buf, starting
// at the first free slot of the vertex array. The vertex array is bound first and the
// buffer second; both stay bound afterwards.
//
// Parameters:
//   - v: the vertex array receiving the attributes
//   - buf: the vertex buffer holding T records
//
// Returns:
//   - uint32: the first slot used by the buffer
//   - error: error if T has no vertex layout or a device call failed
func AddBuffer[T any](v *VertexArray, buf *buffer.VertexBuffer[T]) (uint32, error) {
	l, err := layout.Of[T]()
	if err != nil {
		return 0, err
	}
	if err := v.Bind(); err != nil {
		return 0, eris.Wrapf(err, "failed to bind vertex array %d", v.id)
	}
	if err := buf.Bind(); err != nil {
		return 0, eris.Wrapf(err, "failed to bind vertex buffer %d", buf.ID())
	}
	base := v.nextSlot
	n, err := l.Define(v.dev, base)
	if err != nil {
		return 0, eris.Wrapf(err, "failed to define attributes of vertex array %d", v.id)
	}
	v.nextSlot += n
	return base, nil
}

// Release deletes the device vertex array. Calling it again has no effect.
func (v *VertexArray) Release() error {
	if v.released {
		return nil
	}
	v.released = true
	if err := v.dev.DeleteVertexArray(v.id); err != nil {
		return eris.Wrapf(err, "failed to delete vertex array %d", v.id)
	}
	return nil
}
