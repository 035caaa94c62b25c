package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// FitSize returns the largest size with the aspect ratio of w x h that fits
// within maxW x maxH. Sizes that already fit are returned unchanged.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := float64(maxW) / float64(w)
	if r := float64(maxH) / float64(h); r < ratio {
		ratio = r
	}
	newW := int(float64(w)*ratio + 0.5)
	newH := int(float64(h)*ratio + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return newW, newH
}

// Render draws f as an 8-bit grayscale image no larger than maxW x maxH,
// stretching the frame's min..max range to 0..255. Downscaling samples the
// nearest pixel. Empty frames return nil.
func Render(f frame.Frame, maxW, maxH int) *image.Gray {
	if f.Empty() {
		return nil
	}
	s := f.Shape()
	w, h := FitSize(s.Width, s.Height, maxW, maxH)
	lo, hi := f.Bounds()
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := y * s.Height / h
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range row {
			sx := x * s.Width / w
			row[x] = uint8((f.At(sy, sx)-lo)*scale + 0.5)
		}
	}
	return dst
}
