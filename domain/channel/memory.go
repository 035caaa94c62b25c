package channel

import (
	"sync"
	"time"
)

// MemoryTransport keeps channels in process. It backs the simulator and tests.
type MemoryTransport struct {
	mu       sync.Mutex
	channels map[string]*Broadcast
	closed   bool
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{channels: make(map[string]*Broadcast)}
}

// Channel returns the named channel, creating it on first use.
func (t *MemoryTransport) Channel(name string) (Channel, error) {
	return t.broadcast(name)
}

func (t *MemoryTransport) broadcast(name string) (*Broadcast, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	b, ok := t.channels[name]
	if !ok {
		b = NewBroadcast(name)
		t.channels[name] = b
	}
	return b, nil
}

// Publish sends data on the named channel stamped with the current time.
func (t *MemoryTransport) Publish(name string, data ...float64) error {
	b, err := t.broadcast(name)
	if err != nil {
		return err
	}
	b.Publish(Value{Data: data, Timestamp: time.Now()})
	return nil
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
