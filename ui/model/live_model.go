package model

import (
	"sync/atomic"
	"time"
)

// LiveModel tracks whether the live plot is attached to its channels and how
// long it has been attached. The zero value is detached and usable.
// The enabled flag is atomic because the debug stats logger reads it off the UI thread.
type LiveModel struct {
	enabled atomic.Bool

	active       bool
	attachStart  time.Time
	lastDuration time.Duration
	accumulated  time.Duration
}

func NewLiveModel() *LiveModel { return &LiveModel{} }

// Enabled reports whether the live channels are attached.
func (m *LiveModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the attached flag.
func (m *LiveModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.enabled.Store(b)
}

// OnTick advances the attach timers. Call periodically from a presenter tick.
func (m *LiveModel) OnTick(now time.Time) {
	if m == nil {
		return
	}
	if m.Enabled() {
		if !m.active { // detached -> attached
			m.active = true
			m.attachStart = now
			m.lastDuration = 0
		}
		m.lastDuration = now.Sub(m.attachStart)
	} else if m.active { // attached -> detached
		m.lastDuration = now.Sub(m.attachStart)
		m.accumulated += m.lastDuration
		m.active = false
	}
}

// Values returns the current attach duration and the total attached time,
// including the ongoing session.
func (m *LiveModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}
