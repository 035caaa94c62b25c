package source

import (
	"sync/atomic"

	"github.com/soocke/pv-viewer-go/domain/channel"
)

// slot is a single-value overwrite buffer. A value replaced before it was taken
// counts as a drop.
type slot struct {
	v     atomic.Pointer[channel.Value]
	drops atomic.Uint64
}

func (s *slot) put(v channel.Value) {
	if old := s.v.Swap(&v); old != nil {
		s.drops.Add(1)
	}
}

func (s *slot) take() (channel.Value, bool) {
	p := s.v.Swap(nil)
	if p == nil {
		return channel.Value{}, false
	}
	return *p, true
}

// Mailbox hands channel updates from transport goroutines to the UI context.
// Each channel keeps only its latest unconsumed value.
type Mailbox struct {
	array  slot
	width  slot
	height slot
}

// MailboxStats reports values overwritten before the UI drained them.
type MailboxStats struct {
	ArrayDrops  uint64
	WidthDrops  uint64
	HeightDrops uint64
}

func NewMailbox() *Mailbox { return &Mailbox{} }

func (m *Mailbox) PutArray(v channel.Value)  { m.array.put(v) }
func (m *Mailbox) PutWidth(v channel.Value)  { m.width.put(v) }
func (m *Mailbox) PutHeight(v channel.Value) { m.height.put(v) }

// Drain delivers pending values to the adapter: height, then width, then the
// array, so an array published after its dimensions is reshaped with them.
// It returns the array error, if any.
func (m *Mailbox) Drain(a *Adapter) error {
	if v, ok := m.height.take(); ok {
		if s, ok := v.Scalar(); ok {
			a.OnDimensionUpdate(Height, int(s))
		}
	}
	if v, ok := m.width.take(); ok {
		if s, ok := v.Scalar(); ok {
			a.OnDimensionUpdate(Width, int(s))
		}
	}
	if v, ok := m.array.take(); ok {
		return a.OnRawValue(v.Data)
	}
	return nil
}

func (m *Mailbox) Stats() MailboxStats {
	return MailboxStats{
		ArrayDrops:  m.array.drops.Load(),
		WidthDrops:  m.width.drops.Load(),
		HeightDrops: m.height.drops.Load(),
	}
}
