// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageData holds decoded RGBA pixel data ready for a texture upload.
type ImageData struct {
	// Pixels is the pixel data in RGBA order, 4 bytes per pixel, rows top to bottom.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// Valid reports whether Pixels holds exactly Width*Height RGBA pixels.
func (d ImageData) Valid() bool {
	return uint64(len(d.Pixels)) == uint64(d.Width)*uint64(d.Height)*4
}

// DecodeImage decodes a PNG, JPEG, BMP or WebP image into RGBA pixels.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - ImageData: the decoded pixels
//   - error: error if the format is unknown or the data is corrupt
func DecodeImage(r io.Reader) (ImageData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// DecodeImageFile opens and decodes the image at path. See DecodeImage.
func DecodeImageFile(path string) (ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return ImageData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
