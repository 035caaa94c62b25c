package source

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// Dimension names one of the two size channels of a live image.
type Dimension int

const (
	Height Dimension = iota
	Width
)

func (d Dimension) String() string {
	if d == Width {
		return "width"
	}
	return "height"
}

// Stats is a snapshot of adapter counters.
type Stats struct {
	Frames        uint64
	ReshapeErrors uint64
	Sequence      uint64
	Height        int
	Width         int
	LastFrame     time.Time
}

// Adapter turns flat array values into frames using the latest known dimensions.
// It is not safe for concurrent use; feed it from the UI context (see Mailbox).
type Adapter struct {
	height    int
	width     int
	listeners []func(frame.Frame)
	logger    *slog.Logger

	sequence      atomic.Uint64
	frames        atomic.Uint64
	reshapeErrors atomic.Uint64
	lastFrame     atomic.Int64
}

func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// OnFrame registers fn to receive every emitted frame.
func (a *Adapter) OnFrame(fn func(frame.Frame)) {
	if fn != nil {
		a.listeners = append(a.listeners, fn)
	}
}

// OnDimensionUpdate caches a new height or width. The change applies to the next
// array value; the last array is not reshaped again.
func (a *Adapter) OnDimensionUpdate(which Dimension, value int) {
	switch which {
	case Width:
		a.width = value
	default:
		a.height = value
	}
	if a.logger != nil {
		a.logger.Debug("source dimension", "which", which.String(), "value", value)
	}
}

// OnRawValue reshapes buf with the cached dimensions and emits the frame. On
// mismatch it returns *frame.ReshapeError and emits nothing.
func (a *Adapter) OnRawValue(buf []float64) error {
	f, err := frame.Reshape(buf, a.height, a.width)
	if err != nil {
		a.reshapeErrors.Add(1)
		if a.logger != nil {
			var re *frame.ReshapeError
			if errors.As(err, &re) {
				a.logger.Warn("dropping array value", "len", re.Len, "shape", re.Shape.String(), "error", err)
			} else {
				a.logger.Warn("dropping array value", "error", err)
			}
		}
		return err
	}
	f = f.WithSeq(a.sequence.Add(1))
	a.frames.Add(1)
	a.lastFrame.Store(time.Now().UnixNano())
	for _, fn := range a.listeners {
		fn(f)
	}
	return nil
}

// Dims returns the cached (height, width).
func (a *Adapter) Dims() (int, int) { return a.height, a.width }

func (a *Adapter) Stats() Stats {
	s := Stats{
		Frames:        a.frames.Load(),
		ReshapeErrors: a.reshapeErrors.Load(),
		Sequence:      a.sequence.Load(),
		Height:        a.height,
		Width:         a.width,
	}
	if ns := a.lastFrame.Load(); ns != 0 {
		s.LastFrame = time.Unix(0, ns)
	}
	return s
}
