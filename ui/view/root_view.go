package view

import (
	"log/slog"

	"github.com/soocke/pv-viewer-go/config"
	"github.com/soocke/pv-viewer-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootHandlers are the user actions of the file viewer window.
type RootHandlers struct {
	OnPrev          func()
	OnNext          func()
	OnPlotPV        func()
	OnExit          func()
	OnTransform     func(name string)
	OnConfigApplied func(*config.Config)
}

// RootView composes the file viewer layout in the main window and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Surface     SurfaceView
	Stats       StatsView
	ConfigPanel ConfigPanel

	// Widgets
	FileLabel *LabelWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(choices []TransformChoice, h RootHandlers) {
	if rv == nil {
		return
	}
	// Row 0: file label and navigation buttons
	rv.FileLabel = App.Label(Txt("File: <none>"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(rv.FileLabel, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := App.Frame()
	Grid(btnFrame, Row(0), Column(2), Columnspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"< Prev", "", h.OnPrev},
		{"Next >", "", h.OnNext},
		{"Plot PV", theme.StylePrimaryButton, h.OnPlotPV},
		{"Dark Mode", "", func() { theme.ToggleDark() }},
		{"Exit", theme.StyleDangerButton, h.OnExit},
	}
	for i, b := range buttons {
		if b.fn == nil {
			continue
		}
		opts := []Opt{Txt(b.text), Command(b.fn)}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(App.TButton(opts...), In(btnFrame), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	// Row 1: live attach stats (filled while a live plot is open)
	rv.Stats = NewStatsView(App, 1, 0)

	// Surface rows
	var next int
	rv.Surface, next = NewSurfaceView(App, 2, choices, h.OnTransform)

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.OnConfigApplied)
	rv.ConfigPanel.Build(App, next)
}

// SetFileLabel updates the current file label.
func (rv *RootView) SetFileLabel(text string) {
	if rv != nil && rv.FileLabel != nil {
		rv.FileLabel.Configure(Txt(text))
	}
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}
