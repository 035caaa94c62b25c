package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/pv-viewer-go/domain/channel"
	"github.com/soocke/pv-viewer-go/domain/frame"
	"github.com/soocke/pv-viewer-go/domain/source"
	"github.com/soocke/pv-viewer-go/ui/model"
	"github.com/soocke/pv-viewer-go/ui/presenter"
)

// liveTicker names every loop and stats entry owned by the live plot.
const liveTicker = "live"

// liveView is what a live plot window provides besides its surface.
type liveView interface {
	presenter.LiveView
	Close()
}

// liveSession is one open live plot: channel feed, adapter and surface.
type liveSession struct {
	window    liveView
	surface   *Surface
	adapter   *source.Adapter
	feed      *source.Feed
	presenter *presenter.LivePresenter
}

// start wires the channel feed into the surface's controller. Frames produced
// by the adapter are ingested as new raw frames.
func (s *liveSession) start(t channel.Transport, names source.Names, live *model.LiveModel, logger *slog.Logger) {
	s.adapter = source.NewAdapter(logger)
	s.adapter.OnFrame(func(f frame.Frame) {
		if err := s.surface.Controller.Ingest(f); err != nil && logger != nil {
			logger.Debug("ingest live frame", "seq", f.Seq(), "error", err)
		}
	})
	s.feed = source.NewFeed(t, names, s.adapter, logger)
	s.presenter = presenter.NewLivePresenter(live, s.feed, s.window)
}

func (s *liveSession) stats(live *model.LiveModel, v presenter.StatsView) *presenter.StatsPresenter {
	return presenter.NewStatsPresenter(live, s.counters, v)
}

// counters is the one-line status of the live feed.
func (s *liveSession) counters() string {
	a := s.adapter.Stats()
	mb := s.feed.Mailbox()
	c := s.surface.Controller.Stats()
	return fmt.Sprintf("frames %d | shape (%d,%d) | reshape errors %d | dropped %d | transform errors %d",
		a.Frames, a.Height, a.Width, a.ReshapeErrors, mb.ArrayDrops, c.TransformErrors)
}

func (s *liveSession) debugStats() []any {
	a := s.adapter.Stats()
	mb := s.feed.Mailbox()
	return append([]any{
		"frames", a.Frames,
		"seq", a.Sequence,
		"reshape_errors", a.ReshapeErrors,
		"array_drops", mb.ArrayDrops,
		"width_drops", mb.WidthDrops,
		"height_drops", mb.HeightDrops,
	}, controllerStats(s.surface)...)
}

// close detaches the channels before the controller so no frame reaches a
// closed surface.
func (s *liveSession) close() {
	s.presenter.Disable()
	s.surface.Close()
	s.window.Close()
}

func controllerStats(s *Surface) []any {
	if s == nil {
		return nil
	}
	c := s.Controller.Stats()
	return []any{
		"phase", s.Controller.Phase().String(),
		"transform", s.Controller.Selection(),
		"ingested", c.Ingested,
		"toggles", c.Toggles,
		"external_refreshes", c.ExternalRefreshes,
		"external_foreign", c.ExternalForeign,
		"suppressed", c.Suppressed,
		"transform_errors", c.TransformErrors,
	}
}
