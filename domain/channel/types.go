package channel

import (
	"errors"
	"time"
)

// ErrClosed is returned by transports after Close.
var ErrClosed = errors.New("channel transport closed")

// Value is one update delivered on a channel. Scalar channels carry a single element.
type Value struct {
	Data      []float64
	Timestamp time.Time
}

// Scalar returns the first element of a scalar update.
func (v Value) Scalar() (float64, bool) {
	if len(v.Data) == 0 {
		return 0, false
	}
	return v.Data[0], true
}

// Channel is a named live data source delivering asynchronous value updates.
// Callbacks run on the transport's delivery goroutine, never on the UI thread.
type Channel interface {
	Name() string
	// Value returns the last known value, if any has been received.
	Value() (Value, bool)
	// Subscribe registers onValue and returns a function that removes it.
	Subscribe(onValue func(Value)) (cancel func())
}

// Transport resolves channel names to channels.
type Transport interface {
	Channel(name string) (Channel, error)
	Close() error
}
