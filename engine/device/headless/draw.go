package headless

import "github.com/Carmen-Shannon/oxy-tiles/engine/device"

func (d *Device) Viewport(x, y, width, height int32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return d.raise(device.InvalidValue)
	}
	d.viewport = [4]int32{x, y, width, height}
	return d.ok("Viewport")
}

func (d *Device) ClearColor(r, g, b, a float32) error {
	if err := d.begin(); err != nil {
		return err
	}
	d.clearColor = [4]float32{r, g, b, a}
	return d.ok("ClearColor")
}

func (d *Device) Clear(mask device.Enum) error {
	if err := d.begin(); err != nil {
		return err
	}
	if mask&^(device.ColorBufferBit|device.DepthBufferBit) != 0 {
		return d.raise(device.InvalidValue)
	}
	d.clears++
	return d.ok("Clear")
}

func (d *Device) DrawArraysInstanced(mode device.Enum, first, count, instances int32) error {
	if err := d.begin(); err != nil {
		return err
	}
	if mode != device.Triangles {
		return d.raise(device.InvalidEnum)
	}
	if first < 0 || count < 0 || instances < 0 {
		return d.raise(device.InvalidValue)
	}
	if d.current == 0 || d.boundArray == 0 {
		return d.raise(device.InvalidOperation)
	}
	d.draws = append(d.draws, Draw{
		Mode:        mode,
		First:       first,
		Count:       count,
		Instances:   instances,
		Program:     d.current,
		VertexArray: d.boundArray,
		ArrayBuffer: d.bound[device.ArrayBuffer],
		Texture:     d.boundTextures[device.Texture0],
	})
	return d.ok("DrawArraysInstanced")
}
