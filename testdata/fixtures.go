// Package testdata provides synthetic frames for tests.
package testdata

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
)

// JPEGFrame returns an encoded solid-color JPEG of the given size, a valid
// stand-in for one streamed video frame.
func JPEGFrame(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
