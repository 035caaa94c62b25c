package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// StatsView shows live attach durations and a counters line.
type StatsView interface {
	SetSession(session, total time.Duration)
	SetCounters(text string)
}

type statsView struct {
	sessionLbl  *LabelWidget
	totalLbl    *LabelWidget
	countersLbl *LabelWidget
}

// NewStatsView creates the labels in parent at (row, startCol..startCol+2).
func NewStatsView(parent *Window, row, startCol int) StatsView {
	s := &statsView{
		sessionLbl:  parent.Label(Width(14)),
		totalLbl:    parent.Label(Width(14)),
		countersLbl: parent.Label(Anchor("w")),
	}
	Grid(s.sessionLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	Grid(s.countersLbl, Row(row), Column(startCol+2), Columnspan(2), Sticky("we"), Padx("0.2m"))
	s.SetSession(0, 0)
	return s
}

func (s *statsView) SetSession(session, total time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Live: " + clock(session)))
	s.totalLbl.Configure(Txt("Total: " + clock(total)))
}

func (s *statsView) SetCounters(text string) {
	if s != nil && s.countersLbl != nil {
		s.countersLbl.Configure(Txt(text))
	}
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
