package app

import (
	"context"
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pv-viewer-go/config"
	"github.com/soocke/pv-viewer-go/debug"
	"github.com/soocke/pv-viewer-go/domain/imagefile"
	"github.com/soocke/pv-viewer-go/ui/presenter"
	"github.com/soocke/pv-viewer-go/ui/theme"
	"github.com/soocke/pv-viewer-go/ui/view"
)

// Options selects the window layout.
type Options struct {
	Title  string
	Width  int
	Height int
	// PVOnly shows the live plot in the main window and skips the file viewer.
	PVOnly bool
}

type app struct {
	c       *AppContainer
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	afterID string

	main *Surface
	fp   *presenter.FilePresenter
	live *liveSession
}

func NewApp(c *AppContainer, opts Options) *app {
	ctx, cancel := context.WithCancel(context.Background())
	a := &app{c: c, opts: opts, ctx: ctx, cancel: cancel}
	c.Loop.Schedule = a.scheduleUpdate

	App.WmTitle(opts.Title)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", opts.Width, opts.Height))
	return a
}

func (a *app) Start() {
	theme.InitStyles()

	if a.c.Config.Debug {
		interval := time.Duration(a.c.Config.StatsLogS) * time.Second
		debug.StartGoroutineLogger(a.ctx, interval, a.c.Logger)
		debug.StartMemLogger(a.ctx, interval, a.c.Logger)
		a.c.Loop.Add("debug", a.c.Stats)
	}

	if a.opts.PVOnly {
		a.openLive(false)
	} else {
		a.buildFileViewer()
	}
	if a.ctx.Err() != nil {
		return
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) buildFileViewer() {
	rv := a.c.RootView
	rv.Build(a.c.TransformChoices(), view.RootHandlers{
		OnPrev:          func() { a.fp.Prev() },
		OnNext:          func() { a.fp.Next() },
		OnPlotPV:        func() { a.openLive(true) },
		OnExit:          a.exitHandler,
		OnTransform:     func(name string) { a.main.Presenter.SelectTransform(name) },
		OnConfigApplied: a.applyConfig,
	})
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)

	a.main = a.c.NewSurface(rv.Surface)
	browser := imagefile.NewBrowser(a.c.Files, a.main.Model, imagefile.Load, a.c.Logger)
	a.fp = presenter.NewFilePresenter(browser, a.main.Controller, rv)
	if err := a.fp.Open(); err != nil && a.c.Logger != nil {
		a.c.Logger.Warn("open image file", "error", err)
	}
	a.c.Loop.Add("main", a.main.Presenter)
	a.c.Stats.Add("main", func() []any { return controllerStats(a.main) })
}

// openLive plots the live array channel. ownWindow opens a toplevel next to the
// file viewer; otherwise the plot fills the main window. A second call while a
// plot is open is ignored.
func (a *app) openLive(ownWindow bool) {
	if a.live != nil {
		return
	}
	t, err := a.c.Transport(a.ctx)
	if err != nil {
		if a.c.Logger != nil {
			a.c.Logger.Error("live transport", "error", err)
		}
		a.c.RootView.SetFileLabel("Live: " + err.Error())
		if !ownWindow {
			a.exitHandler()
		}
		return
	}
	names := a.c.LiveNames()
	s := &liveSession{}
	onClose := a.closeLive
	if !ownWindow {
		onClose = a.exitHandler
	}
	lw := view.NewLiveWindow(names.Array, ownWindow, a.c.TransformChoices(), view.LiveHandlers{
		OnToggle:    func() { s.presenter.Toggle() },
		OnTransform: func(name string) { s.surface.Presenter.SelectTransform(name) },
		OnClose:     onClose,
	}, a.c.RootView.SetConfigEditable)
	s.window = lw
	s.surface = a.c.NewSurface(lw.Surface)
	s.start(t, names, a.c.Live, a.c.Logger)

	a.live = s
	a.c.Loop.Add(liveTicker, s.presenter)
	a.c.Loop.Add(liveTicker, s.surface.Presenter)
	a.c.Loop.Add(liveTicker, s.stats(a.c.Live, lw.Stats))
	a.c.Stats.Add(liveTicker, s.debugStats)
	s.presenter.Enable()
}

// closeLive detaches the live channels and destroys the plot window.
func (a *app) closeLive() {
	s := a.live
	if s == nil {
		return
	}
	a.live = nil
	a.c.Loop.Remove(liveTicker)
	a.c.Stats.Remove(liveTicker)
	s.close()
}

func (a *app) applyConfig(cfg *config.Config) {
	if a.main != nil {
		a.main.Presenter.SetMaxSize(cfg.PreviewMaxW, cfg.PreviewMaxH)
	}
	if a.live != nil {
		a.live.surface.Presenter.SetMaxSize(cfg.PreviewMaxW, cfg.PreviewMaxH)
	}
	if a.c.Logger != nil {
		a.c.Logger.Info("config applied", "tick_ms", cfg.TickMS, "preview_max_w", cfg.PreviewMaxW, "preview_max_h", cfg.PreviewMaxH)
	}
}

func (a *app) exitHandler() {
	if a.ctx.Err() != nil {
		return
	}
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	a.closeLive()
	a.main.Close()
	a.cancel()
	if err := a.c.Close(); err != nil && a.c.Logger != nil {
		a.c.Logger.Warn("close transport", "error", err)
	}
	Destroy(App)
}

func (a *app) update() { a.c.Loop.Tick() }

func (a *app) scheduleUpdate() {
	// TclAfter keeps every tick on Tk's event loop thread.
	a.afterID = TclAfter(time.Duration(a.c.Config.TickMS)*time.Millisecond, a.update)
}
