package debug

import (
	"log/slog"
	"time"
)

type statsSource struct {
	name string
	fn   func() []any
}

// StatsLogger periodically logs domain counters (adapter, mailbox, transport,
// controller). It is driven by the UI loop so sources that are not safe for
// concurrent use are read on the UI thread.
type StatsLogger struct {
	interval time.Duration
	logger   *slog.Logger
	last     time.Time
	sources  []statsSource
}

func NewStatsLogger(interval time.Duration, logger *slog.Logger) *StatsLogger {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &StatsLogger{interval: interval, logger: logger}
}

// Add registers a source whose key/value pairs are logged under "stats.<name>".
func (s *StatsLogger) Add(name string, fn func() []any) {
	if s == nil || fn == nil {
		return
	}
	s.sources = append(s.sources, statsSource{name: name, fn: fn})
}

// Remove drops every source registered under name.
func (s *StatsLogger) Remove(name string) {
	if s == nil {
		return
	}
	out := s.sources[:0]
	for _, src := range s.sources {
		if src.name != name {
			out = append(out, src)
		}
	}
	s.sources = out
}

// Tick logs every source once per interval.
func (s *StatsLogger) Tick(now time.Time) {
	if s == nil || s.logger == nil {
		return
	}
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return
	}
	s.last = now
	for _, src := range s.sources {
		s.logger.Debug("stats."+src.name, src.fn()...)
	}
}
