package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// Detector model names.
const (
	Model450D = "450D"
	Model540D = "540D"
)

// ChipLayout describes one detector module: a square grid of Chips x Chips
// sensor chips of Chip x Chip pixels. The raw readout packs chips edge to edge;
// restoration spreads them apart by Gap pixels filled with Fill.
type ChipLayout struct {
	Model string
	Chip  int
	Chips int
	Gap   int
	Fill  float64
}

// PinwheelLayout is four ChipLayout modules read out as a 2x2 grid. On
// restoration module q (clockwise from top-left) is rotated q quarter turns and
// the quadrants are separated by ModuleGap pixels.
type PinwheelLayout struct {
	ChipLayout
	ModuleGap int
}

var (
	layout450D = ChipLayout{Model: Model450D, Chip: 256, Chips: 6, Gap: 3, Fill: -1}
	layout540D = PinwheelLayout{ChipLayout: ChipLayout{Model: Model540D, Chip: 256, Chips: 6, Gap: 3, Fill: -1}, ModuleGap: 6}
)

// Restore450D restores a 1536x1536 single-module readout.
func Restore450D(f frame.Frame) (frame.Frame, error) { return layout450D.Restore(f) }

// Restore540D restores a 3072x3072 four-module readout.
func Restore540D(f frame.Frame) (frame.Frame, error) { return layout540D.Restore(f) }

// RawSide is the side of a raw module readout.
func (l ChipLayout) RawSide() int { return l.Chip * l.Chips }

// RestoredSide is the side of a restored module.
func (l ChipLayout) RestoredSide() int { return l.RawSide() + (l.Chips-1)*l.Gap }

// Restore maps a single-module readout onto its restored geometry.
func (l ChipLayout) Restore(f frame.Frame) (frame.Frame, error) {
	side := l.RawSide()
	if f.Shape() != (frame.Shape{Height: side, Width: side}) {
		return frame.Frame{}, &TransformError{Model: l.Model, Shape: f.Shape(), Reason: fmt.Sprintf("expected raw shape (%d,%d)", side, side)}
	}
	return frame.FromDense(l.restoreModule(f.Dense())), nil
}

func (l ChipLayout) restoreModule(src *mat.Dense) *mat.Dense {
	n := l.RestoredSide()
	dst := filled(n, n, l.Fill)
	step := l.Chip + l.Gap
	for i := 0; i < l.Chips; i++ {
		for j := 0; j < l.Chips; j++ {
			chip := src.Slice(i*l.Chip, (i+1)*l.Chip, j*l.Chip, (j+1)*l.Chip)
			dst.Slice(i*step, i*step+l.Chip, j*step, j*step+l.Chip).(*mat.Dense).Copy(chip)
		}
	}
	return dst
}

// RestoredSide is the side of the full restored image.
func (p PinwheelLayout) RestoredSide() int { return 2*p.ChipLayout.RestoredSide() + p.ModuleGap }

// quadrants in clockwise order from the top-left.
var quadrants = [4][2]int{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// Restore maps a 2x2 module readout onto the pinwheel geometry.
func (p PinwheelLayout) Restore(f frame.Frame) (frame.Frame, error) {
	raw := p.RawSide()
	if f.Shape() != (frame.Shape{Height: 2 * raw, Width: 2 * raw}) {
		return frame.Frame{}, &TransformError{Model: p.Model, Shape: f.Shape(), Reason: fmt.Sprintf("expected raw shape (%d,%d)", 2*raw, 2*raw)}
	}
	src := f.Dense()
	mod := p.ChipLayout.RestoredSide()
	n := p.RestoredSide()
	dst := filled(n, n, p.Fill)
	for q, pos := range quadrants {
		module := src.Slice(pos[0]*raw, (pos[0]+1)*raw, pos[1]*raw, (pos[1]+1)*raw).(*mat.Dense)
		restored := rotate90(p.restoreModule(module), q)
		r0 := pos[0] * (mod + p.ModuleGap)
		c0 := pos[1] * (mod + p.ModuleGap)
		dst.Slice(r0, r0+mod, c0, c0+mod).(*mat.Dense).Copy(restored)
	}
	return frame.FromDense(dst), nil
}

func filled(r, c int, v float64) *mat.Dense {
	data := make([]float64, r*c)
	if v != 0 {
		for i := range data {
			data[i] = v
		}
	}
	return mat.NewDense(r, c, data)
}

// rotate90 rotates a square matrix k quarter turns clockwise.
func rotate90(m *mat.Dense, k int) *mat.Dense {
	k = ((k % 4) + 4) % 4
	n, _ := m.Dims()
	for ; k > 0; k-- {
		out := mat.NewDense(n, n, nil)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				out.Set(c, n-1-r, m.At(r, c))
			}
		}
		m = out
	}
	return m
}
