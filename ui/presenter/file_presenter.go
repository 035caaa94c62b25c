package presenter

import (
	"fmt"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// Navigator steps through image files, writing directly to the displayed surface.
type Navigator interface {
	Current() (frame.Frame, error)
	Next() error
	Prev() error
	Name() string
	Index() int
	Len() int
}

// Ingester accepts a new raw frame (the coherence controller).
type Ingester interface {
	Ingest(frame.Frame) error
}

// FileView shows the current file position.
type FileView interface {
	SetFileLabel(text string)
}

// FilePresenter opens the first file through the controller and maps
// Prev/Next buttons to host navigation.
type FilePresenter struct {
	nav    Navigator
	ingest Ingester
	view   FileView
}

func NewFilePresenter(nav Navigator, ingest Ingester, view FileView) *FilePresenter {
	return &FilePresenter{nav: nav, ingest: ingest, view: view}
}

// Open loads the current file as a new raw frame.
func (p *FilePresenter) Open() error {
	if p == nil || p.nav == nil || p.ingest == nil {
		return nil
	}
	f, err := p.nav.Current()
	if err != nil {
		p.label(err)
		return err
	}
	err = p.ingest.Ingest(f)
	p.label(nil)
	return err
}

func (p *FilePresenter) Next() {
	if p == nil || p.nav == nil {
		return
	}
	p.label(p.nav.Next())
}

func (p *FilePresenter) Prev() {
	if p == nil || p.nav == nil {
		return
	}
	p.label(p.nav.Prev())
}

func (p *FilePresenter) label(err error) {
	if p.view == nil {
		return
	}
	if err != nil {
		p.view.SetFileLabel(fmt.Sprintf("File: %v", err))
		return
	}
	p.view.SetFileLabel(fmt.Sprintf("File %d/%d: %s", p.nav.Index()+1, p.nav.Len(), p.nav.Name()))
}
