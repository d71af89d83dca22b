package texture

import "github.com/Carmen-Shannon/oxy-tiles/engine/device"

// TextureOption is a functional option used to configure a Texture2D during construction.
type TextureOption func(*Texture2D)

// WithFilter sets the minification and magnification filter.
//
// Parameters:
//   - filter: device.Nearest or device.Linear
//
// Returns:
//   - TextureOption: a function that sets the filter of the texture
func WithFilter(filter device.Enum) TextureOption {
	return func(t *Texture2D) {
		t.filter = filter
	}
}

// WithWrap sets the wrap mode of both texture coordinates.
//
// Parameters:
//   - wrap: the wrap mode, for example device.ClampToEdge
//
// Returns:
//   - TextureOption: a function that sets the wrap mode of the texture
func WithWrap(wrap device.Enum) TextureOption {
	return func(t *Texture2D) {
		t.wrap = wrap
	}
}
