package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/pv-viewer-go/config"
	"github.com/soocke/pv-viewer-go/debug"
	"github.com/soocke/pv-viewer-go/domain/channel"
	"github.com/soocke/pv-viewer-go/domain/channel/mqttpv"
	"github.com/soocke/pv-viewer-go/domain/coherence"
	"github.com/soocke/pv-viewer-go/domain/source"
	"github.com/soocke/pv-viewer-go/domain/transform"
	"github.com/soocke/pv-viewer-go/ui/model"
	"github.com/soocke/pv-viewer-go/ui/presenter"
	"github.com/soocke/pv-viewer-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	CfgPath  string
	Logger   *slog.Logger
	Registry *transform.Registry
	Channels config.ChannelNames
	Files    []string
	Simulate bool

	Live     *model.LiveModel
	Loop     *presenter.Loop
	Stats    *debug.StatsLogger
	RootView *view.RootView

	transport channel.Transport
}

// BuildContainer constructs the long-lived components. It has no side effects;
// the transport is opened on first use.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger, channels config.ChannelNames, files []string, simulate bool) *AppContainer {
	c := &AppContainer{
		Config:   cfg,
		CfgPath:  cfgPath,
		Logger:   logger,
		Registry: transform.Default(),
		Channels: channels,
		Files:    files,
		Simulate: simulate,
		Live:     model.NewLiveModel(),
		Loop:     presenter.NewLoop(nil),
		Stats:    debug.NewStatsLogger(time.Duration(cfg.StatsLogS)*time.Second, logger),
	}
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	return c
}

// Surface is one display surface: the image model acting as render sink, its
// coherence controller and the presenter drawing it.
type Surface struct {
	Model      *model.ImageModel
	Controller *coherence.Controller
	Presenter  *presenter.SurfacePresenter
}

// NewSurface is the factory for every display surface, the file viewer and
// each live plot alike. Each surface owns its controller exclusively.
func (c *AppContainer) NewSurface(v presenter.SurfaceView) *Surface {
	s := &Surface{Model: model.NewImageModel()}
	s.Controller = coherence.NewController(c.Registry, s.Model, c.Logger, func(err error) {
		s.Presenter.ReportError(err)
	})
	s.Presenter = presenter.NewSurfacePresenter(s.Controller, s.Model, v, c.Config.PreviewMaxW, c.Config.PreviewMaxH, c.Logger)
	return s
}

// Close detaches the controller from its sink.
func (s *Surface) Close() {
	if s != nil {
		s.Controller.Close()
	}
}

// TransformChoices lists the registry entries for transform selectors.
func (c *AppContainer) TransformChoices() []view.TransformChoice {
	names := c.Registry.Names()
	out := make([]view.TransformChoice, 0, len(names))
	for _, n := range names {
		out = append(out, view.TransformChoice{Name: n, Label: fmt.Sprintf("%s: %s", n, c.Registry.Describe(n))})
	}
	return out
}

// LiveNames returns the channel names of the live image.
func (c *AppContainer) LiveNames() source.Names {
	return source.Names{
		Array:  c.Channels.ArrayChannel(),
		Width:  c.Channels.WidthChannel(),
		Height: c.Channels.HeightChannel(),
	}
}

// Transport opens the live transport on first use: MQTT when a broker is
// configured, in-process otherwise. With Simulate set a synthetic detector
// publishes into it until ctx is done.
func (c *AppContainer) Transport(ctx context.Context) (channel.Transport, error) {
	if c.transport != nil {
		return c.transport, nil
	}
	var (
		t   channel.Transport
		pub channel.Publisher
	)
	if c.Config.Broker != "" {
		mt, err := mqttpv.Dial(ctx, mqttpv.Options{
			Broker:         c.Config.Broker,
			TopicPrefix:    c.Config.TopicPrefix,
			QoS:            byte(c.Config.QoS),
			ConnectTimeout: time.Duration(c.Config.ConnectTimeoutS) * time.Second,
		}, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("open live transport: %w", err)
		}
		c.Stats.Add("transport", func() []any {
			s := mt.Stats()
			return []any{"connected", s.Connected, "channels", s.Channels, "received", s.Received, "decode_errors", s.DecodeErrors}
		})
		t, pub = mt, mt
	} else {
		mem := channel.NewMemoryTransport()
		if !c.Simulate && c.Logger != nil {
			c.Logger.Warn("no broker configured; live plot receives data only with -sim")
		}
		t, pub = mem, mem
	}
	if c.Simulate {
		names := c.LiveNames()
		sim := channel.NewSimulator(pub, channel.SimulatorOptions{
			ArrayChannel:  names.Array,
			WidthChannel:  names.Width,
			HeightChannel: names.Height,
			Width:         c.Config.SimWidth,
			Height:        c.Config.SimHeight,
			Interval:      time.Duration(c.Config.SimIntervalMS) * time.Millisecond,
		}, c.Logger)
		go func() { _ = sim.Run(ctx) }()
		c.Stats.Add("sim", func() []any { return []any{"published", sim.Published()} })
	}
	c.transport = t
	return t, nil
}

// Close releases the transport.
func (c *AppContainer) Close() error {
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}
