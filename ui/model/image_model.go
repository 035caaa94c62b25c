package model

import (
	"github.com/google/uuid"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// ImageModel holds the frame a surface displays and notifies change handlers
// synchronously on every SetData. The zero value is not usable; use NewImageModel.
// No synchronization: all calls happen on the UI thread.
type ImageModel struct {
	data     frame.Frame
	has      bool
	revision uint64
	handlers map[string]func()
	order    []string
}

func NewImageModel() *ImageModel { return &ImageModel{handlers: make(map[string]func())} }

// Data returns the displayed frame, if any.
func (m *ImageModel) Data() (frame.Frame, bool) {
	if m == nil {
		return frame.Frame{}, false
	}
	return m.data, m.has
}

// SetData replaces the displayed frame and runs every change handler before returning.
func (m *ImageModel) SetData(f frame.Frame) {
	if m == nil {
		return
	}
	m.data, m.has = f, true
	m.revision++
	// handlers may unsubscribe while running
	ids := append([]string(nil), m.order...)
	for _, id := range ids {
		if h, ok := m.handlers[id]; ok {
			h()
		}
	}
}

// SubscribeChange registers fn and returns its subscription id.
func (m *ImageModel) SubscribeChange(fn func()) string {
	if m == nil || fn == nil {
		return ""
	}
	id := uuid.NewString()
	m.handlers[id] = fn
	m.order = append(m.order, id)
	return id
}

// UnsubscribeChange removes a handler. Unknown ids are ignored.
func (m *ImageModel) UnsubscribeChange(id string) {
	if m == nil {
		return
	}
	if _, ok := m.handlers[id]; !ok {
		return
	}
	delete(m.handlers, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Revision increases on every SetData so views can redraw lazily.
func (m *ImageModel) Revision() uint64 {
	if m == nil {
		return 0
	}
	return m.revision
}

// Subscribers returns the number of registered change handlers.
func (m *ImageModel) Subscribers() int {
	if m == nil {
		return 0
	}
	return len(m.handlers)
}
