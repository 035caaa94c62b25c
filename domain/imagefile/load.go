// Package imagefile loads detector images from disk and provides host-side
// navigation across a list of files.
package imagefile

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// Load reads a TIFF or PNG file into a frame. 16-bit grayscale keeps its raw
// counts; other formats are converted to 16-bit luminance.
func Load(path string) (frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("open image: %w", err)
	}
	defer fh.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		img, err = tiff.Decode(fh)
	default:
		img, _, err = image.Decode(fh)
	}
	if err != nil {
		return frame.Frame{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return FromImage(img)
}

// FromImage converts a decoded image into a frame.
func FromImage(img image.Image) (frame.Frame, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float64, 0, w*h)
	switch src := img.(type) {
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				data = append(data, float64(src.Gray16At(x, y).Y))
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				data = append(data, float64(src.GrayAt(x, y).Y))
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				data = append(data, float64(g.Y))
			}
		}
	}
	return frame.New(h, w, data)
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff", ".png":
		return true
	}
	return false
}
