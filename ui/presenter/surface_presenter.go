package presenter

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pv-viewer-go/domain/coherence"
	"github.com/soocke/pv-viewer-go/domain/frame"
	"github.com/soocke/pv-viewer-go/domain/transform"
	"github.com/soocke/pv-viewer-go/ui/images"
)

// Coherence is the controller surface the presenter drives.
type Coherence interface {
	ToggleTransform(name string) error
	Snapshot() coherence.Snapshot
}

// FrameStore exposes the displayed frame and a change counter.
type FrameStore interface {
	Data() (frame.Frame, bool)
	Revision() uint64
}

// SurfaceView shows a rendered frame and a one-line status.
type SurfaceView interface {
	UpdateImage(img image.Image)
	SetStatus(text string)
}

// SurfacePresenter redraws a surface when its frame changes and routes
// transform selections to the controller.
type SurfacePresenter struct {
	ctrl   Coherence
	store  FrameStore
	view   SurfaceView
	logger *slog.Logger
	maxW   int
	maxH   int

	lastRev    uint64
	lastStatus string
	lastErr    error
	dirty      bool
}

func NewSurfacePresenter(ctrl Coherence, store FrameStore, view SurfaceView, maxW, maxH int, logger *slog.Logger) *SurfacePresenter {
	return &SurfacePresenter{ctrl: ctrl, store: store, view: view, maxW: maxW, maxH: maxH, logger: logger}
}

// SelectTransform handles a transform menu choice.
func (p *SurfacePresenter) SelectTransform(name string) {
	if p == nil || p.ctrl == nil {
		return
	}
	err := p.ctrl.ToggleTransform(name)
	var te *transform.TransformError
	switch {
	case err == nil:
		p.lastErr = nil
	case errors.As(err, &te):
		// already reported by the controller
	default:
		p.lastErr = err
		if p.logger != nil {
			p.logger.Error("select transform", "transform", name, "error", err)
		}
	}
	p.dirty = true
}

// ReportError records a non-fatal error for the status line.
// It is the controller's report callback.
func (p *SurfacePresenter) ReportError(err error) {
	if p == nil {
		return
	}
	p.lastErr = err
	p.dirty = true
}

// SetMaxSize changes the rendered image bound and forces a redraw.
func (p *SurfacePresenter) SetMaxSize(w, h int) {
	if p == nil {
		return
	}
	p.maxW, p.maxH = w, h
	p.lastRev = 0
}

// Tick redraws when the store changed since the last tick and refreshes the status.
func (p *SurfacePresenter) Tick(now time.Time) {
	if p == nil || p.store == nil || p.view == nil {
		return
	}
	rev := p.store.Revision()
	if rev != p.lastRev {
		p.lastRev = rev
		p.dirty = true
		if f, ok := p.store.Data(); ok {
			if img := images.Render(f, p.maxW, p.maxH); img != nil {
				p.view.UpdateImage(img)
			}
		}
	}
	if !p.dirty || p.ctrl == nil {
		return
	}
	p.dirty = false
	status := p.status()
	if status != p.lastStatus {
		p.lastStatus = status
		p.view.SetStatus(status)
	}
}

func (p *SurfacePresenter) status() string {
	s := p.ctrl.Snapshot()
	text := "Transform: " + s.Selection
	if s.HasRaw {
		text += fmt.Sprintf(" | raw %v", s.Raw)
	}
	if f, ok := p.store.Data(); ok {
		text += fmt.Sprintf(" | shown %v", f.Shape())
		if f.Seq() > 0 {
			text += fmt.Sprintf(" #%d", f.Seq())
		}
	}
	if p.lastErr != nil {
		text += " | " + p.lastErr.Error()
	}
	return text
}
