package channel

import "sync"

// Broadcast is a Channel that fans published values out to its subscribers and
// remembers the last one. Safe for concurrent use.
type Broadcast struct {
	name string

	mu     sync.Mutex
	last   Value
	has    bool
	nextID uint64
	subs   map[uint64]func(Value)
}

// NewBroadcast returns an empty channel called name.
func NewBroadcast(name string) *Broadcast {
	return &Broadcast{name: name, subs: make(map[uint64]func(Value))}
}

func (b *Broadcast) Name() string { return b.name }

func (b *Broadcast) Value() (Value, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.has
}

func (b *Broadcast) Subscribe(onValue func(Value)) func() {
	if onValue == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = onValue
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish records v as the last value and delivers it to every subscriber.
// Subscribers are called outside the lock, in no particular order.
func (b *Broadcast) Publish(v Value) {
	b.mu.Lock()
	b.last, b.has = v, true
	subs := make([]func(Value), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

// Subscribers reports the number of active subscriptions.
func (b *Broadcast) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
