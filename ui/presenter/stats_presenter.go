package presenter

import (
	"time"

	"github.com/soocke/pv-viewer-go/ui/model"
)

// StatsView displays attach durations and a counters line.
type StatsView interface {
	SetSession(session, total time.Duration)
	SetCounters(text string)
}

// StatsPresenter formats live attach durations and counters for the view.
type StatsPresenter struct {
	live     *model.LiveModel
	counters func() string
	view     StatsView
	last     string
}

// NewStatsPresenter returns a new StatsPresenter. counters may be nil.
func NewStatsPresenter(live *model.LiveModel, counters func() string, view StatsView) *StatsPresenter {
	return &StatsPresenter{live: live, counters: counters, view: view}
}

// Tick advances the live model and pushes values to the view.
func (p *StatsPresenter) Tick(now time.Time) {
	if p == nil || p.live == nil || p.view == nil {
		return
	}
	p.live.OnTick(now)
	s, t := p.live.Values()
	p.view.SetSession(s, t)
	if p.counters == nil {
		return
	}
	if text := p.counters(); text != p.last {
		p.last = text
		p.view.SetCounters(text)
	}
}
