package headless

import "github.com/Carmen-Shannon/oxy-tiles/engine/device"

var attribTypes = map[device.Enum]bool{
	device.Byte:          true,
	device.UnsignedByte:  true,
	device.Short:         true,
	device.UnsignedShort: true,
	device.Int:           true,
	device.UnsignedInt:   true,
	device.Float:         true,
	device.Double:        true,
}

// maxVertexAttribs matches the minimum GL_MAX_VERTEX_ATTRIBS of a 4.3 core context.
const maxVertexAttribs = 16

func (d *Device) GenVertexArray() (uint32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	id := d.name()
	d.vertexArrays[id] = &VertexArray{ID: id, Attribs: make(map[uint32]*Attrib)}
	return id, d.ok("GenVertexArray")
}

func (d *Device) DeleteVertexArray(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	delete(d.vertexArrays, id)
	if d.boundArray == id {
		d.boundArray = 0
	}
	return d.ok("DeleteVertexArray")
}

func (d *Device) BindVertexArray(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if id != 0 && d.vertexArrays[id] == nil {
		return d.raise(device.InvalidOperation)
	}
	d.boundArray = id
	return d.ok("BindVertexArray")
}

// attrib returns the slot record of the bound vertex array, creating it on first use.
func (d *Device) attrib(index uint32) (*Attrib, error) {
	if index >= maxVertexAttribs {
		return nil, d.raise(device.InvalidValue)
	}
	va := d.vertexArrays[d.boundArray]
	if va == nil {
		return nil, d.raise(device.InvalidOperation)
	}
	a, ok := va.Attribs[index]
	if !ok {
		a = &Attrib{Index: index}
		va.Attribs[index] = a
	}
	return a, nil
}

func (d *Device) EnableVertexAttribArray(index uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	a, err := d.attrib(index)
	if err != nil {
		return err
	}
	a.Enabled = true
	return d.ok("EnableVertexAttribArray")
}

func (d *Device) describe(index uint32, size int32, xtype device.Enum, stride int32) (*Attrib, error) {
	if size < 1 || size > 4 || stride < 0 {
		return nil, d.raise(device.InvalidValue)
	}
	if !attribTypes[xtype] {
		return nil, d.raise(device.InvalidEnum)
	}
	if d.bound[device.ArrayBuffer] == 0 {
		return nil, d.raise(device.InvalidOperation)
	}
	return d.attrib(index)
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype device.Enum, normalized bool, stride int32, offset uintptr) error {
	if err := d.begin(); err != nil {
		return err
	}
	a, err := d.describe(index, size, xtype, stride)
	if err != nil {
		return err
	}
	a.Size, a.Type, a.Normalized, a.Integer = size, xtype, normalized, false
	a.Stride, a.Offset, a.Buffer = stride, offset, d.bound[device.ArrayBuffer]
	return d.ok("VertexAttribPointer")
}

func (d *Device) VertexAttribIPointer(index uint32, size int32, xtype device.Enum, stride int32, offset uintptr) error {
	if err := d.begin(); err != nil {
		return err
	}
	if xtype == device.Float || xtype == device.Double {
		return d.raise(device.InvalidEnum)
	}
	a, err := d.describe(index, size, xtype, stride)
	if err != nil {
		return err
	}
	a.Size, a.Type, a.Normalized, a.Integer = size, xtype, false, true
	a.Stride, a.Offset, a.Buffer = stride, offset, d.bound[device.ArrayBuffer]
	return d.ok("VertexAttribIPointer")
}
