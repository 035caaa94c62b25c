package transform

import (
	"errors"
	"fmt"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// None is the identity entry present in every registry.
const None = "None"

// ErrUnknownTransform is returned by Get for names that were never registered.
var ErrUnknownTransform = errors.New("unknown transform")

// Func maps a frame to a new frame. It must not modify its input.
type Func func(frame.Frame) (frame.Frame, error)

// Entry is a named transform with its menu description.
type Entry struct {
	Name        string
	Description string
	Fn          Func
}

// Registry is an immutable name -> transform lookup built once at startup.
// The zero value is not usable; construct with NewRegistry.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// Identity returns its input unchanged.
func Identity(f frame.Frame) (frame.Frame, error) { return f, nil }

// NewRegistry builds a registry from entries. The None identity entry is always
// added first; entries may not redefine it or repeat a name.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries)+1)}
	r.entries[None] = Entry{Name: None, Description: "No transformation", Fn: Identity}
	r.order = append(r.order, None)
	for _, e := range entries {
		if e.Name == "" || e.Fn == nil {
			return nil, fmt.Errorf("transform: entry %q needs a name and a function", e.Name)
		}
		if _, dup := r.entries[e.Name]; dup {
			return nil, fmt.Errorf("transform: duplicate entry %q", e.Name)
		}
		r.entries[e.Name] = e
		r.order = append(r.order, e.Name)
	}
	return r, nil
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (Func, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	return e.Fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.entries[name]
	return ok
}

// Names lists entries in registration order, None first.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Describe returns the menu description for name, or name itself when unknown.
func (r *Registry) Describe(name string) string {
	if r == nil {
		return name
	}
	if e, ok := r.entries[name]; ok && e.Description != "" {
		return e.Description
	}
	return name
}

// Default returns the registry with the PiMega detector models.
func Default() *Registry {
	r, err := NewRegistry(
		Entry{Name: Model450D, Description: "450D model transformation", Fn: Restore450D},
		Entry{Name: Model540D, Description: "540D model transformation", Fn: Restore540D},
	)
	if err != nil {
		panic(err) // static entries
	}
	return r
}
