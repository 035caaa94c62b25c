package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Shape is the (height, width) of a frame in pixels.
type Shape struct {
	Height int
	Width  int
}

func (s Shape) String() string { return fmt.Sprintf("(%d,%d)", s.Height, s.Width) }

// Len returns the number of pixels a buffer of this shape holds, or -1 when
// the product does not fit in an int.
func (s Shape) Len() int {
	if s.Width > 0 && s.Height > math.MaxInt/s.Width {
		return -1
	}
	return s.Height * s.Width
}

// Valid reports whether both dimensions are positive.
func (s Shape) Valid() bool { return s.Height > 0 && s.Width > 0 }

// Frame is a row-major numeric image buffer plus its shape and arrival sequence.
//
// Frames are immutable once constructed: transforms and sinks share the backing
// slice, so nobody may write to Data() after the frame has been handed out.
// The zero value is an empty frame.
type Frame struct {
	shape Shape
	data  []float64
	seq   uint64
}

// New wraps data as a frame of the given shape. The slice is not copied.
func New(height, width int, data []float64) (Frame, error) {
	if err := checkShape(Shape{Height: height, Width: width}, len(data)); err != nil {
		return Frame{}, err
	}
	return Frame{shape: Shape{Height: height, Width: width}, data: data}, nil
}

// Reshape copies a flat buffer into a frame of (height, width).
// It fails with *ReshapeError when height*width != len(buf) or a dimension is not positive.
func Reshape(buf []float64, height, width int) (Frame, error) {
	if err := checkShape(Shape{Height: height, Width: width}, len(buf)); err != nil {
		return Frame{}, err
	}
	data := make([]float64, len(buf))
	copy(data, buf)
	return Frame{shape: Shape{Height: height, Width: width}, data: data}, nil
}

// FromRows builds a frame from equal-length rows.
func FromRows(rows [][]float64) (Frame, error) {
	if len(rows) == 0 {
		return Frame{}, &ReshapeError{Shape: Shape{}, Len: 0}
	}
	w := len(rows[0])
	data := make([]float64, 0, len(rows)*w)
	for i, r := range rows {
		if len(r) != w {
			return Frame{}, fmt.Errorf("frame: row %d has %d values, want %d", i, len(r), w)
		}
		data = append(data, r...)
	}
	return New(len(rows), w, data)
}

// MustFromRows is FromRows for literals in tests and fixtures; it panics on error.
func MustFromRows(rows [][]float64) Frame {
	f, err := FromRows(rows)
	if err != nil {
		panic(err)
	}
	return f
}

// FromDense copies a gonum matrix into a new frame.
func FromDense(m mat.Matrix) Frame {
	r, c := m.Dims()
	data := make([]float64, r*c)
	dst := mat.NewDense(r, c, data)
	dst.Copy(m)
	return Frame{shape: Shape{Height: r, Width: c}, data: data}
}

func checkShape(s Shape, n int) error {
	if !s.Valid() || n < 0 || s.Len() != n {
		return &ReshapeError{Shape: s, Len: n}
	}
	return nil
}

func (f Frame) Shape() Shape { return f.shape }

// Seq is the arrival position assigned by the producer (0 when unknown).
func (f Frame) Seq() uint64 { return f.seq }

// WithSeq returns a copy of the frame header carrying seq. Pixel data is shared.
func (f Frame) WithSeq(seq uint64) Frame {
	f.seq = seq
	return f
}

// Empty reports whether the frame holds no pixels.
func (f Frame) Empty() bool { return len(f.data) == 0 }

// Data returns the backing buffer. Callers must treat it as read-only.
func (f Frame) Data() []float64 { return f.data }

// At returns the value at row r, column c.
func (f Frame) At(r, c int) float64 { return f.data[r*f.shape.Width+c] }

// Rows returns a copy of the frame as a slice of rows.
func (f Frame) Rows() [][]float64 {
	rows := make([][]float64, f.shape.Height)
	for r := range rows {
		row := make([]float64, f.shape.Width)
		copy(row, f.data[r*f.shape.Width:(r+1)*f.shape.Width])
		rows[r] = row
	}
	return rows
}

// Dense returns a gonum view over the frame pixels. The view shares memory with
// the frame and must only be read. Empty frames return nil.
func (f Frame) Dense() *mat.Dense {
	if f.Empty() {
		return nil
	}
	return mat.NewDense(f.shape.Height, f.shape.Width, f.data)
}

// Equal reports whether both frames have the same shape and bit-identical pixels.
// Sequence numbers are ignored.
func (f Frame) Equal(o Frame) bool {
	if f.shape != o.shape || len(f.data) != len(o.data) {
		return false
	}
	for i, v := range f.data {
		if v != o.data[i] {
			return false
		}
	}
	return true
}

// Bounds returns the minimum and maximum pixel values. Empty frames return 0, 0.
func (f Frame) Bounds() (lo, hi float64) {
	if f.Empty() {
		return 0, 0
	}
	lo, hi = f.data[0], f.data[0]
	for _, v := range f.data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
