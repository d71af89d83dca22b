package buffer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tiles/engine/device"
	"github.com/Carmen-Shannon/oxy-tiles/engine/device/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color = [4]float32

func TestTargetOf(t *testing.T) {
	assert.Equal(t, device.ArrayBuffer, TargetOf[Array]())
	assert.Equal(t, device.ElementArrayBuffer, TargetOf[Element]())
	assert.Equal(t, device.ShaderStorageBuffer, TargetOf[ShaderStorage]())
	assert.Equal(t, device.UniformBuffer, TargetOf[Uniform]())
	assert.Equal(t, device.AtomicCounterBuffer, TargetOf[AtomicCounter]())
	assert.Equal(t, device.TransformFeedbackBuffer, TargetOf[TransformFeedback]())
	assert.Equal(t, device.QueryBuffer, TargetOf[Query]())
	assert.Equal(t, device.TextureBuffer, TargetOf[Texture]())
	assert.Equal(t, device.PixelPackBuffer, TargetOf[PixelPack]())
	assert.Equal(t, device.PixelUnpackBuffer, TargetOf[PixelUnpack]())
}

func TestUploadThenMapReadsBackEveryElement(t *testing.T) {
	dev := headless.New()
	buf, err := NewIndexed[color, ShaderStorage](dev, 0)
	require.NoError(t, err)

	data := []color{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {0.5, 0.5, 0.5, 0}}
	require.NoError(t, buf.Upload(data, DynamicDraw))
	assert.Equal(t, 4, buf.Len())

	view, err := buf.MapMut()
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Equal(t, len(data), view.Len())
	for i, want := range data {
		assert.Equal(t, want, view.Get(i))
	}
	view.Close()
	assert.False(t, buf.Mapped())
	assert.False(t, dev.Buffer(buf.ID()).Mapped)
}

func TestUploadTwiceKeepsLengthAndHandle(t *testing.T) {
	dev := headless.New()
	buf, err := New[[2]float32, Array](dev)
	require.NoError(t, err)
	id := buf.ID()

	quad := [][2]float32{{0, 0}, {0, 1}, {1, 1}}
	require.NoError(t, buf.Upload(quad, StaticDraw))
	require.NoError(t, buf.Upload(quad, StaticDraw))

	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, id, buf.ID())
	assert.Equal(t, 1, dev.LiveBuffers())
	assert.Equal(t, 2, dev.Buffer(id).Uploads)
	assert.Equal(t, quad, headless.Contents[[2]float32](dev, id))
	assert.Equal(t, device.StaticDraw, dev.Buffer(id).Usage)
}

func TestUploadBindsBeforeReplacingStore(t *testing.T) {
	dev := headless.New()
	buf, err := New[uint32, Element](dev)
	require.NoError(t, err)
	dev.ResetCalls()

	require.NoError(t, buf.Upload([]uint32{0, 1, 2}, StaticDraw))
	assert.Equal(t, []string{"BindBuffer", "BufferData"}, dev.Calls())
	assert.Equal(t, buf.ID(), dev.Bound(device.ElementArrayBuffer))
}

func TestIndexedBindUsesBindPoint(t *testing.T) {
	dev := headless.New()
	buf, err := NewIndexed[color, ShaderStorage](dev, 3)
	require.NoError(t, err)

	require.NoError(t, buf.Upload([]color{{1, 1, 1, 1}}, DynamicDraw))
	assert.Equal(t, uint32(3), buf.BindPoint())
	assert.Equal(t, buf.ID(), dev.BoundBase(device.ShaderStorageBuffer, 3))
	assert.Equal(t, buf.ID(), dev.Bound(device.ShaderStorageBuffer))
}

func TestMapMutOnEmptyBufferReturnsNoView(t *testing.T) {
	dev := headless.New()
	buf, err := NewIndexed[color, ShaderStorage](dev, 0)
	require.NoError(t, err)

	view, err := buf.MapMut()
	require.NoError(t, err)
	assert.Nil(t, view)

	require.NoError(t, buf.Upload(nil, DynamicDraw))
	view, err = buf.MapMut()
	require.NoError(t, err)
	assert.Nil(t, view)
	assert.False(t, buf.Mapped())

	called, err := WithMapped(buf, func(v *MappedView[color, ShaderStorage]) {
		t.Fatal("fn must not run for an empty buffer")
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestWithMappedWritesThroughAndUnmaps(t *testing.T) {
	dev := headless.New()
	buf, err := New[int32, ShaderStorage](dev)
	require.NoError(t, err)
	require.NoError(t, buf.Upload([]int32{10, 20, 30}, DynamicDraw))

	called, err := WithMapped(buf, func(v *MappedView[int32, ShaderStorage]) {
		v.Set(1, 21)
		*v.At(2) += 1
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, buf.Mapped())
	assert.Equal(t, []int32{10, 21, 31}, headless.Contents[int32](dev, buf.ID()))
}

func TestWithMappedUnmapsWhenFnPanics(t *testing.T) {
	dev := headless.New()
	buf, err := New[int32, ShaderStorage](dev)
	require.NoError(t, err)
	require.NoError(t, buf.Upload([]int32{1}, DynamicDraw))

	assert.Panics(t, func() {
		_, _ = WithMapped(buf, func(v *MappedView[int32, ShaderStorage]) {
			v.Get(5)
		})
	})
	assert.False(t, buf.Mapped())
	assert.False(t, dev.Buffer(buf.ID()).Mapped)
}

func TestMappedMisusePanics(t *testing.T) {
	dev := headless.New()
	buf, err := New[int32, ShaderStorage](dev)
	require.NoError(t, err)
	require.NoError(t, buf.Upload([]int32{1, 2}, DynamicDraw))

	view, err := buf.MapMut()
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = buf.MapMut() }, "double map")
	assert.Panics(t, func() { _ = buf.Upload([]int32{3}, DynamicDraw) }, "upload while mapped")
	assert.Panics(t, func() { _ = buf.Release() }, "release while mapped")
	assert.Panics(t, func() { view.Set(2, 0) }, "index out of range")
	assert.Panics(t, func() { view.Get(-1) }, "negative index")

	view.Close()
	view.Close()
	assert.Panics(t, func() { view.Get(0) }, "closed view")
	require.NoError(t, buf.Upload([]int32{3}, DynamicDraw))
}

func TestCloseCorruptedStorePanics(t *testing.T) {
	dev := headless.New()
	buf, err := New[int32, ShaderStorage](dev)
	require.NoError(t, err)
	require.NoError(t, buf.Upload([]int32{1, 2}, DynamicDraw))

	view, err := buf.MapMut()
	require.NoError(t, err)
	dev.Invalidate(buf.ID())

	assert.PanicsWithValue(t,
		"buffer: data store of SHADER_STORAGE_BUFFER buffer 1 was corrupted while mapped",
		view.Close,
	)
}

func TestDeviceErrorsSurface(t *testing.T) {
	dev := headless.New()
	dev.InjectError(device.InvalidValue)
	_, err := New[int32, Array](dev)
	require.Error(t, err)
	assert.True(t, device.IsCode(err, device.InvalidValue))

	buf, err := New[int32, Array](dev)
	require.NoError(t, err)
	dev.InjectError(device.InvalidOperation)
	err = buf.Upload([]int32{1}, StaticDraw)
	require.Error(t, err)
	assert.True(t, device.IsCode(err, device.InvalidOperation))
	assert.Equal(t, 0, buf.Len())
}

func TestReleaseIsIdempotent(t *testing.T) {
	dev := headless.New()
	buf, err := NewIndexed[color, ShaderStorage](dev, 0)
	require.NoError(t, err)
	require.NoError(t, buf.Upload([]color{{1, 1, 1, 1}}, DynamicDraw))
	require.Equal(t, 1, dev.LiveBuffers())

	require.NoError(t, buf.Release())
	assert.Equal(t, 0, dev.LiveBuffers())
	dev.ResetCalls()
	require.NoError(t, buf.Release())
	assert.Empty(t, dev.Calls())
	assert.Panics(t, func() { _ = buf.Bind() })
}

func TestUsageString(t *testing.T) {
	assert.Equal(t, "dynamic_draw", DynamicDraw.String())
	assert.Equal(t, "static_read", StaticRead.String())
}
