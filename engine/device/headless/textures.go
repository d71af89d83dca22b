package headless

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
)

func (d *Device) GenTexture() (uint32, error) {
	if err := d.begin(); err != nil {
		return 0, err
	}
	id := d.name()
	d.textures[id] = &Texture{ID: id, Params: make(map[device.Enum]int32)}
	return id, d.ok("GenTexture")
}

func (d *Device) DeleteTexture(id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	delete(d.textures, id)
	for unit, bound := range d.boundTextures {
		if bound == id {
			delete(d.boundTextures, unit)
		}
	}
	return d.ok("DeleteTexture")
}

func (d *Device) ActiveTexture(unit device.Enum) error {
	if err := d.begin(); err != nil {
		return err
	}
	if unit < device.Texture0 || unit >= device.Texture0+32 {
		return d.raise(device.InvalidEnum)
	}
	d.activeUnit = unit
	return d.ok("ActiveTexture")
}

func (d *Device) BindTexture(target device.Enum, id uint32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if target != device.Texture2D {
		return d.raise(device.InvalidEnum)
	}
	if id != 0 && d.textures[id] == nil {
		return d.raise(device.InvalidOperation)
	}
	d.boundTextures[d.activeUnit] = id
	return d.ok("BindTexture")
}

func (d *Device) boundTexture(target device.Enum) (*Texture, error) {
	if target != device.Texture2D {
		return nil, d.raise(device.InvalidEnum)
	}
	t := d.textures[d.boundTextures[d.activeUnit]]
	if t == nil {
		return nil, d.raise(device.InvalidOperation)
	}
	return t, nil
}

func (d *Device) TexParameter(target device.Enum, pname device.Enum, param int32) error {
	if err := d.begin(); err != nil {
		return err
	}
	t, err := d.boundTexture(target)
	if err != nil {
		return err
	}
	t.Params[pname] = param
	return d.ok("TexParameter")
}

func (d *Device) TexImage2D(target device.Enum, level int32, internalFormat device.Enum, width, height int32, format, xtype device.Enum, pixels unsafe.Pointer) error {
	if err := d.begin(); err != nil {
		return err
	}
	t, err := d.boundTexture(target)
	if err != nil {
		return err
	}
	if level < 0 || width < 0 || height < 0 {
		return d.raise(device.InvalidValue)
	}
	if format != device.RGBA || xtype != device.UnsignedByte {
		return d.raise(device.InvalidEnum)
	}
	t.Width, t.Height, t.InternalFormat = width, height, internalFormat
	n := int(width) * int(height) * 4
	t.Pixels = make([]byte, n)
	if pixels != nil && n > 0 {
		copy(t.Pixels, unsafe.Slice((*byte)(pixels), n))
	}
	return d.ok("TexImage2D")
}
