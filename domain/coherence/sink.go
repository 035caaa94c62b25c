package coherence

import "github.com/soocke/pv-viewer-go/domain/frame"

// Sink is the rendering surface that owns the visible image.
//
// SetData replaces the content and synchronously runs every change handler
// before it returns, whoever the caller is.
type Sink interface {
	Data() (frame.Frame, bool)
	SetData(frame.Frame)
	SubscribeChange(fn func()) (id string)
	UnsubscribeChange(id string)
}
