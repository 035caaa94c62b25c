// Package source adapts live detector channels into frames: a Subscription
// listens to the array and dimension channels, a Mailbox carries their updates
// to the UI context, and an Adapter reshapes arrays into frames.
package source

import (
	"fmt"

	"github.com/soocke/pv-viewer-go/domain/channel"
)

// Names identifies the three channels of one live image.
type Names struct {
	Array  string
	Width  string
	Height string
}

// Subscription holds the channels of one live image and their cancel functions.
type Subscription struct {
	names   Names
	cancels []func()
}

// Attach subscribes to the array, width and height channels and routes their
// updates into mb. Values already known to the transport seed the mailbox.
func Attach(t channel.Transport, names Names, mb *Mailbox) (*Subscription, error) {
	s := &Subscription{names: names}
	routes := []struct {
		name string
		put  func(channel.Value)
	}{
		{names.Width, mb.PutWidth},
		{names.Height, mb.PutHeight},
		{names.Array, mb.PutArray},
	}
	for _, r := range routes {
		ch, err := t.Channel(r.name)
		if err != nil {
			s.Detach()
			return nil, fmt.Errorf("attach %s: %w", r.name, err)
		}
		if v, ok := ch.Value(); ok {
			r.put(v)
		}
		s.cancels = append(s.cancels, ch.Subscribe(r.put))
	}
	return s, nil
}

func (s *Subscription) Names() Names { return s.names }

// Detach cancels every channel subscription. Safe to call more than once.
func (s *Subscription) Detach() {
	if s == nil {
		return
	}
	for _, c := range s.cancels {
		c()
	}
	s.cancels = nil
}
