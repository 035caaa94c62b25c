package view

import (
	"github.com/soocke/pv-viewer-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// LiveHandlers are the user actions of a live plot window.
type LiveHandlers struct {
	OnToggle    func()
	OnTransform func(name string)
	OnClose     func()
}

// LiveWindow plots a live channel, either in its own toplevel window or in
// the main window when the viewer runs in live-only mode.
type LiveWindow struct {
	win      *ToplevelWidget // nil when built in the main window
	Surface  SurfaceView
	Stats    StatsView
	state    *LabelWidget
	editable func(bool)
}

// NewLiveWindow builds the plot. title is normally the array channel name.
// editable, when set, receives ConfigEditable calls from the live presenter.
func NewLiveWindow(title string, ownWindow bool, choices []TransformChoice, h LiveHandlers, editable func(bool)) *LiveWindow {
	lw := &LiveWindow{editable: editable}
	parent := App
	if ownWindow {
		lw.win = App.Toplevel(Borderwidth(2))
		lw.win.WmTitle(title)
		parent = lw.win.Window
		if h.OnClose != nil {
			WmProtocol(parent, "WM_DELETE_WINDOW", h.OnClose)
			Bind(lw.win, "<Escape>", Command(h.OnClose))
		}
	} else {
		App.WmTitle(title)
		if h.OnClose != nil {
			WmProtocol(App, "WM_DELETE_WINDOW", h.OnClose)
		}
	}

	lw.state = parent.Label(Txt("Live: detached"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(lw.state, Row(0), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	if h.OnToggle != nil {
		btn := parent.TButton(Txt("Attach / Pause"), Style(theme.StylePrimaryButton), Command(h.OnToggle))
		Grid(btn, Row(0), Column(3), Sticky("e"), Padx("0.3m"), Pady("0.3m"))
	}
	if h.OnClose != nil {
		btn := parent.TButton(Txt("Close"), Style(theme.StyleDangerButton), Command(h.OnClose))
		Grid(btn, Row(0), Column(4), Sticky("e"), Padx("0.3m"), Pady("0.3m"))
	}
	lw.Stats = NewStatsView(parent, 1, 0)
	lw.Surface, _ = NewSurfaceView(parent, 2, choices, h.OnTransform)
	return lw
}

// SetLiveState updates the attach state label.
func (lw *LiveWindow) SetLiveState(text string) {
	if lw != nil && lw.state != nil {
		lw.state.Configure(Txt(text))
	}
}

// ConfigEditable forwards to the editable callback, if any.
func (lw *LiveWindow) ConfigEditable(b bool) {
	if lw != nil && lw.editable != nil {
		lw.editable(b)
	}
}

// Close destroys the toplevel window. It is a no-op for a plot in the main window.
func (lw *LiveWindow) Close() {
	if lw == nil || lw.win == nil {
		return
	}
	Destroy(lw.win)
	lw.win = nil
}
