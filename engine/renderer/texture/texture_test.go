package texture

import (
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-tiles/common"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker() common.ImageData {
	return common.ImageData{
		Pixels: []byte{
			0, 0, 0, 255, 255, 255, 255, 255,
			255, 255, 255, 255, 0, 0, 0, 255,
		},
		Width:  2,
		Height: 2,
	}
}

func TestNewTexture2DUploadsPixels(t *testing.T) {
	dev := headless.New()
	img := checker()

	tex, err := NewTexture2D(dev, img)
	require.NoError(t, err)

	state := dev.Texture(tex.ID())
	require.NotNil(t, state)
	assert.Equal(t, int32(2), state.Width)
	assert.Equal(t, int32(2), state.Height)
	assert.Equal(t, device.RGBA8, state.InternalFormat)
	assert.Equal(t, img.Pixels, state.Pixels)
	assert.Equal(t, int32(device.Nearest), state.Params[device.TextureMinFilter])
	assert.Equal(t, int32(device.Nearest), state.Params[device.TextureMagFilter])
	assert.Equal(t, int32(device.ClampToEdge), state.Params[device.TextureWrapS])
	assert.Equal(t, int32(device.ClampToEdge), state.Params[device.TextureWrapT])

	w, h := tex.Size()
	assert.Equal(t, [2]uint32{2, 2}, [2]uint32{w, h})
}

func TestOptionsOverrideSampling(t *testing.T) {
	dev := headless.New()
	tex, err := NewTexture2D(dev, checker(), WithFilter(device.Linear), WithWrap(device.ClampToEdge))
	require.NoError(t, err)
	assert.Equal(t, int32(device.Linear), dev.Texture(tex.ID()).Params[device.TextureMagFilter])
}

func TestBindSelectsUnit(t *testing.T) {
	dev := headless.New()
	tex, err := NewTexture2D(dev, checker())
	require.NoError(t, err)

	require.NoError(t, tex.Bind(3))
	assert.Equal(t, device.Texture0+3, dev.ActiveUnit())
	assert.Equal(t, tex.ID(), dev.BoundTexture(device.Texture0+3))

	assert.True(t, device.IsCode(tex.Bind(64), device.InvalidEnum))
}

func TestInconsistentImageIsRejected(t *testing.T) {
	dev := headless.New()
	img := checker()
	img.Height = 3
	_, err := NewTexture2D(dev, img)
	require.Error(t, err)
	assert.Empty(t, dev.Calls())
}

func TestFailedUploadDeletesTexture(t *testing.T) {
	dev := &failingUpload{Device: headless.New()}
	_, err := NewTexture2D(dev, checker())
	require.Error(t, err)
	assert.True(t, device.IsCode(err, device.InvalidValue))
	assert.Nil(t, dev.Texture(1))
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := headless.New()
	tex, err := NewTexture2D(dev, checker())
	require.NoError(t, err)

	require.NoError(t, tex.Release())
	require.NoError(t, tex.Release())
	assert.Nil(t, dev.Texture(tex.ID()))
	assert.Zero(t, dev.BoundTexture(device.Texture0))
	assert.Panics(t, func() { _ = tex.Bind(0) })
}

// failingUpload rejects every image upload.
type failingUpload struct {
	*headless.Device
}

func (f *failingUpload) TexImage2D(device.Enum, int32, device.Enum, int32, int32, device.Enum, device.Enum, unsafe.Pointer) error {
	return device.Check(device.InvalidValue)
}
