package headless

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
)

var bufferTargets = map[device.Enum]bool{
	device.ArrayBuffer:             true,
	device.ElementArrayBuffer:      true,
	device.PixelPackBuffer:         true,
	device.PixelUnpackBuffer:       true,
	device.UniformBuffer:           true,
	device.TextureBuffer:           true,
	device.TransformFeedbackBuffer: true,
	device.ShaderStorageBuffer:     true,
	device.QueryBuffer:             true,
	device.AtomicCounterBuffer:     true,
}

var indexedTargets = map[device.Enum]bool{
	device.UniformBuffer:           true,
	device.TransformFeedbackBuffer: true,
	device.ShaderStorageBuffer:     true,
	device.AtomicCounterBuffer:     true,
}

var usages = map[device.Enum]bool{
	device.StreamDraw: true, device.StreamRead: true, device.StreamCopy: true,
	device.StaticDraw: true, device.StaticRead: true, device.StaticCopy: true,
	device.DynamicDraw: true, device.DynamicRead: true, device.DynamicCopy: true,
}

func (d *Device) GenBuffer() (uint32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	id := d.name()
	d.buffers[id] = &Buffer{ID: id}
	return id, d.ok("GenBuffer")
}

func (d *Device) DeleteBuffer(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if _, ok := d.buffers[id]; !ok {
		return d.ok("DeleteBuffer")
	}
	delete(d.buffers, id)
	for target, bound := range d.bound {
		if bound == id {
			delete(d.bound, target)
		}
	}
	for key, bound := range d.boundIndexed {
		if bound == id {
			delete(d.boundIndexed, key)
		}
	}
	return d.ok("DeleteBuffer")
}

func (d *Device) BindBuffer(target device.Enum, id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if !bufferTargets[target] {
		return d.raise(device.InvalidEnum)
	}
	if id != 0 && d.buffers[id] == nil {
		return d.raise(device.InvalidOperation)
	}
	d.bound[target] = id
	return d.ok("BindBuffer")
}

func (d *Device) BindBufferBase(target device.Enum, index, id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if !indexedTargets[target] {
		return d.raise(device.InvalidEnum)
	}
	if id != 0 && d.buffers[id] == nil {
		return d.raise(device.InvalidOperation)
	}
	d.boundIndexed[indexedKey{target: target, index: index}] = id
	d.bound[target] = id
	return d.ok("BindBufferBase")
}

// boundBuffer resolves the buffer bound to target or the error a driver would report.
func (d *Device) boundBuffer(target device.Enum) (*Buffer, error) {
	if !bufferTargets[target] {
		return nil, d.raise(device.InvalidEnum)
	}
	b := d.buffers[d.bound[target]]
	if b == nil {
		return nil, d.raise(device.InvalidOperation)
	}
	return b, nil
}

func (d *Device) BufferData(target device.Enum, size int, data unsafe.Pointer, usage device.Enum) error {
	if err := d.begin(); err != nil {
		return err
	}
	if !usages[usage] {
		return d.raise(device.InvalidEnum)
	}
	if size < 0 {
		return d.raise(device.InvalidValue)
	}
	b, err := d.boundBuffer(target)
	if err != nil {
		return err
	}
	// Respecifying a mapped store leaves the mapping dangling.
	if b.Mapped {
		b.invalidated = true
	}
	b.store = make([]uint64, (size+7)/8)
	b.Size = size
	b.Usage = usage
	b.Uploads++
	if data != nil && size > 0 {
		copy(b.Bytes(), unsafe.Slice((*byte)(data), size))
	}
	return d.ok("BufferData")
}

func (d *Device) BufferMapped(target device.Enum) (bool, error) {
	if err := d.begin(); err != nil {
		return false, err
	}
	b, err := d.boundBuffer(target)
	if err != nil {
		return false, err
	}
	return b.Mapped, d.ok("BufferMapped")
}

func (d *Device) BufferMapPointer(target device.Enum) (unsafe.Pointer, error) {
	if err := d.begin(); err != nil {
		return nil, err
	}
	b, err := d.boundBuffer(target)
	if err != nil {
		return nil, err
	}
	return b.mapPtr, d.ok("BufferMapPointer")
}

func (d *Device) MapBufferRange(target device.Enum, offset, length int, access device.Enum) (unsafe.Pointer, error) {
	if err := d.begin(); err != nil {
		return nil, err
	}
	b, err := d.boundBuffer(target)
	if err != nil {
		return nil, err
	}
	if offset < 0 || length <= 0 || offset+length > b.Size {
		return nil, d.raise(device.InvalidValue)
	}
	if access&(device.MapReadBit|device.MapWriteBit) == 0 {
		return nil, d.raise(device.InvalidOperation)
	}
	if b.Mapped {
		return nil, d.raise(device.InvalidOperation)
	}
	b.Mapped = true
	b.invalidated = false
	b.mapPtr = unsafe.Pointer(&b.Bytes()[offset])
	return b.mapPtr, d.ok("MapBufferRange")
}

func (d *Device) UnmapBuffer(target device.Enum) (bool, error) {
	if err := d.begin(); err != nil {
		return false, err
	}
	b, err := d.boundBuffer(target)
	if err != nil {
		return false, err
	}
	if !b.Mapped {
		return false, d.raise(device.InvalidOperation)
	}
	b.Mapped = false
	b.mapPtr = nil
	intact := !b.invalidated
	b.invalidated = false
	return intact, d.ok("UnmapBuffer")
}
