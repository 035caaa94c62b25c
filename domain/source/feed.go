package source

import (
	"log/slog"

	"github.com/soocke/pv-viewer-go/domain/channel"
)

// Feed ties one live image to an adapter: Start attaches the channels, Drain
// runs on the UI tick, Stop detaches.
type Feed struct {
	transport channel.Transport
	names     Names
	mailbox   *Mailbox
	adapter   *Adapter
	sub       *Subscription
	logger    *slog.Logger
}

func NewFeed(t channel.Transport, names Names, adapter *Adapter, logger *slog.Logger) *Feed {
	return &Feed{transport: t, names: names, mailbox: NewMailbox(), adapter: adapter, logger: logger}
}

// Start attaches to the channels. It is a no-op when already attached.
func (f *Feed) Start() error {
	if f.sub != nil {
		return nil
	}
	sub, err := Attach(f.transport, f.names, f.mailbox)
	if err != nil {
		return err
	}
	f.sub = sub
	if f.logger != nil {
		f.logger.Info("live channels attached", "array", f.names.Array, "width", f.names.Width, "height", f.names.Height)
	}
	return nil
}

// Stop detaches from the channels. Values already in the mailbox stay there
// until the next Start.
func (f *Feed) Stop() {
	if f.sub == nil {
		return
	}
	f.sub.Detach()
	f.sub = nil
	if f.logger != nil {
		f.logger.Info("live channels detached", "array", f.names.Array)
	}
}

// Drain hands pending channel values to the adapter.
func (f *Feed) Drain() error {
	if f.sub == nil {
		return nil
	}
	return f.mailbox.Drain(f.adapter)
}

func (f *Feed) Attached() bool        { return f.sub != nil }
func (f *Feed) Names() Names          { return f.names }
func (f *Feed) Adapter() *Adapter     { return f.adapter }
func (f *Feed) Mailbox() MailboxStats { return f.mailbox.Stats() }
