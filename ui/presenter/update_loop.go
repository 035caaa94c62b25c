package presenter

import "time"

// Ticker is a presenter driven by the UI loop.
type Ticker interface {
	Tick(now time.Time)
}

type namedTicker struct {
	name string
	t    Ticker
}

// Loop aggregates feature presenters and drives periodic updates.
//
// Presenters tick in registration order, so a live feed registered before its
// surface is drawn in the same tick. The zero value is usable (methods are nil-safe).
type Loop struct {
	tickers  []namedTicker
	Schedule func()
}

func NewLoop(schedule func()) *Loop { return &Loop{Schedule: schedule} }

// Add registers t under name. Several presenters may share a name so a window
// can remove all of its presenters at once.
func (l *Loop) Add(name string, t Ticker) {
	if l == nil || t == nil {
		return
	}
	l.tickers = append(l.tickers, namedTicker{name: name, t: t})
}

// Remove unregisters every presenter added under name.
func (l *Loop) Remove(name string) {
	if l == nil {
		return
	}
	out := l.tickers[:0]
	for _, nt := range l.tickers {
		if nt.name != name {
			out = append(out, nt)
		}
	}
	l.tickers = out
}

func (l *Loop) Len() int {
	if l == nil {
		return 0
	}
	return len(l.tickers)
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	for _, nt := range l.tickers {
		nt.t.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
