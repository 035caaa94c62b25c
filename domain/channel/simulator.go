package channel

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

const simStatsLogInterval = 5 * time.Second

// Publisher sends values on named channels.
type Publisher interface {
	Publish(name string, data ...float64) error
}

// SimulatorOptions configures the synthetic detector.
type SimulatorOptions struct {
	ArrayChannel  string
	WidthChannel  string
	HeightChannel string
	Width         int
	Height        int
	Interval      time.Duration
}

// Simulator publishes synthetic detector frames the way an areaDetector IOC
// does: dimension channels first, then the flat array.
type Simulator struct {
	opts      SimulatorOptions
	pub       Publisher
	logger    *slog.Logger
	running   atomic.Bool
	published atomic.Uint64
	failed    atomic.Uint64
}

func NewSimulator(pub Publisher, opts SimulatorOptions, logger *slog.Logger) *Simulator {
	if opts.Interval <= 0 {
		opts.Interval = 200 * time.Millisecond
	}
	if opts.Width <= 0 {
		opts.Width = 256
	}
	if opts.Height <= 0 {
		opts.Height = 256
	}
	return &Simulator{opts: opts, pub: pub, logger: logger}
}

// Run publishes frames until ctx is done. It returns ctx.Err().
func (s *Simulator) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	defer s.running.Store(false)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(simStatsLogInterval)
	defer logTicker.Stop()

	var n int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-logTicker.C:
			if s.logger != nil {
				s.logger.Debug("sim.stats", "published", s.published.Load(), "failed", s.failed.Load())
			}
		case <-ticker.C:
			s.publishFrame(n)
			n++
		}
	}
}

func (s *Simulator) publishFrame(n int) {
	w, h := s.opts.Width, s.opts.Height
	if err := s.pub.Publish(s.opts.WidthChannel, float64(w)); err != nil {
		s.fail(err)
		return
	}
	if err := s.pub.Publish(s.opts.HeightChannel, float64(h)); err != nil {
		s.fail(err)
		return
	}
	if err := s.pub.Publish(s.opts.ArrayChannel, Pattern(w, h, n)...); err != nil {
		s.fail(err)
		return
	}
	s.published.Add(1)
}

func (s *Simulator) fail(err error) {
	s.failed.Add(1)
	if s.logger != nil {
		s.logger.Error("sim publish", "error", err)
	}
}

// Published reports the number of complete frames sent.
func (s *Simulator) Published() uint64 { return s.published.Load() }

// Pattern renders frame n of a drifting ring pattern as a flat row-major buffer.
func Pattern(w, h, n int) []float64 {
	buf := make([]float64, w*h)
	cx := float64(w)/2 + float64(w)/4*math.Cos(float64(n)/10)
	cy := float64(h)/2 + float64(h)/4*math.Sin(float64(n)/10)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			buf[y*w+x] = 1000 * (1 + math.Cos(d/4)) * math.Exp(-d/float64(w))
		}
	}
	return buf
}
