// Package texture uploads decoded images into device textures.
package texture

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/rotisserie/eris"
)

// Texture2D is a two-dimensional RGBA8 texture.
type Texture2D struct {
	dev      device.Device
	id       uint32
	width    uint32
	height   uint32
	filter   device.Enum
	wrap     device.Enum
	released bool
}

// NewTexture2D allocates a texture and uploads img into its base level. The texture is
// left bound to texture unit 0.
//
// Parameters:
//   - dev: the device that owns the texture
//   - img: the RGBA pixels to upload
//   - opts: sampling settings; nearest filtering and edge clamping by default
//
// Returns:
//   - *Texture2D: the texture
//   - error: an error if img is inconsistent or a device call failed
func NewTexture2D(dev device.Device, img common.ImageData, opts ...TextureOption) (*Texture2D, error) {
	if !img.Valid() {
		return nil, eris.Errorf("image of %dx%d has %d bytes, expected %d", img.Width, img.Height, len(img.Pixels), img.Width*img.Height*4)
	}
	t := &Texture2D{
		dev:    dev,
		width:  img.Width,
		height: img.Height,
		filter: device.Nearest,
		wrap:   device.ClampToEdge,
	}
	for _, opt := range opts {
		opt(t)
	}

	id, err := dev.GenTexture()
	if err != nil {
		return nil, eris.Wrap(err, "failed to allocate texture")
	}
	t.id = id
	if err := t.upload(img); err != nil {
		_ = dev.DeleteTexture(id)
		return nil, err
	}
	return t, nil
}

func (t *Texture2D) upload(img common.ImageData) error {
	if err := t.Bind(0); err != nil {
		return err
	}
	params := []struct {
		name  device.Enum
		value device.Enum
	}{
		{device.TextureMinFilter, t.filter},
		{device.TextureMagFilter, t.filter},
		{device.TextureWrapS, t.wrap},
		{device.TextureWrapT, t.wrap},
	}
	for _, p := range params {
		if err := t.dev.TexParameter(device.Texture2D, p.name, int32(p.value)); err != nil {
			return eris.Wrapf(err, "failed to set %s of texture %d", p.name, t.id)
		}
	}

	var pixels unsafe.Pointer
	if len(img.Pixels) > 0 {
		pixels = unsafe.Pointer(&img.Pixels[0])
	}
	err := t.dev.TexImage2D(device.Texture2D, 0, device.RGBA8, int32(img.Width), int32(img.Height), device.RGBA, device.UnsignedByte, pixels)
	if err != nil {
		return eris.Wrapf(err, "failed to upload %dx%d image to texture %d", img.Width, img.Height, t.id)
	}
	return nil
}

// ID returns the device name of the texture.
func (t *Texture2D) ID() uint32 {
	return t.id
}

// Size returns the width and height of the texture in pixels.
func (t *Texture2D) Size() (uint32, uint32) {
	return t.width, t.height
}

// Bind makes unit the active texture unit and binds the texture to it.
//
// Parameters:
//   - unit: the texture unit, the value a sampler uniform is set to
//
// Returns:
//   - error: the device error if the unit is out of range or the bind failed
func (t *Texture2D) Bind(unit uint32) error {
	if t.released {
		panic(fmt.Sprintf("texture: bind of released texture %d", t.id))
	}
	if err := t.dev.ActiveTexture(device.Texture0 + device.Enum(unit)); err != nil {
		return eris.Wrapf(err, "failed to select texture unit %d", unit)
	}
	if err := t.dev.BindTexture(device.Texture2D, t.id); err != nil {
		return eris.Wrapf(err, "failed to bind texture %d", t.id)
	}
	return nil
}

// Release deletes the texture. Calling it again has no effect.
func (t *Texture2D) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	if err := t.dev.DeleteTexture(t.id); err != nil {
		return eris.Wrapf(err, "failed to delete texture %d", t.id)
	}
	return nil
}
