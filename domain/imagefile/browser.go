package imagefile

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/soocke/pv-viewer-go/domain/coherence"
	"github.com/soocke/pv-viewer-go/domain/frame"
)

// ErrNoFiles is returned when a browser has nothing to show.
var ErrNoFiles = errors.New("no image files")

// Loader reads one file into a frame.
type Loader func(path string) (frame.Frame, error)

// Browser steps through a list of image files. Prev and Next write straight to
// the sink, the way a host viewer swaps images; whoever watches the sink sees an
// external change.
type Browser struct {
	paths  []string
	idx    int
	sink   coherence.Sink
	load   Loader
	logger *slog.Logger
}

func NewBrowser(paths []string, sink coherence.Sink, load Loader, logger *slog.Logger) *Browser {
	if load == nil {
		load = Load
	}
	return &Browser{paths: append([]string(nil), paths...), sink: sink, load: load, logger: logger}
}

// Current loads the file at the current position without touching the sink.
func (b *Browser) Current() (frame.Frame, error) {
	if len(b.paths) == 0 {
		return frame.Frame{}, ErrNoFiles
	}
	return b.load(b.paths[b.idx])
}

// Next shows the following file, wrapping around.
func (b *Browser) Next() error { return b.step(1) }

// Prev shows the preceding file, wrapping around.
func (b *Browser) Prev() error { return b.step(-1) }

func (b *Browser) step(d int) error {
	n := len(b.paths)
	if n == 0 {
		return ErrNoFiles
	}
	idx := ((b.idx+d)%n + n) % n
	f, err := b.load(b.paths[idx])
	if err != nil {
		if b.logger != nil {
			b.logger.Error("load image", "path", b.paths[idx], "error", err)
		}
		return err
	}
	b.idx = idx
	if b.logger != nil {
		b.logger.Info("image shown", "path", b.paths[idx], "shape", f.Shape().String())
	}
	b.sink.SetData(f)
	return nil
}

func (b *Browser) Len() int   { return len(b.paths) }
func (b *Browser) Index() int { return b.idx }

// Name returns the base name of the current file.
func (b *Browser) Name() string {
	if len(b.paths) == 0 {
		return ""
	}
	return filepath.Base(b.paths[b.idx])
}
