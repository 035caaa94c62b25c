package app

import (
	"strings"
	"testing"
	"time"

	"github.com/soocke/pv-viewer-go/config"
	"github.com/soocke/pv-viewer-go/domain/channel"
	"github.com/soocke/pv-viewer-go/domain/frame"
	"github.com/soocke/pv-viewer-go/domain/transform"
)

type mockLiveWindow struct {
	states   []string
	editable []bool
	closed   int
}

func (m *mockLiveWindow) SetLiveState(text string) { m.states = append(m.states, text) }
func (m *mockLiveWindow) ConfigEditable(b bool)    { m.editable = append(m.editable, b) }
func (m *mockLiveWindow) Close()                   { m.closed++ }

func testContainer(t *testing.T) *AppContainer {
	t.Helper()
	names := config.ChannelNames{ArrayPrefix: "SIM:image1:", WidthSuffix: "ArraySize0_RBV", HeightSuffix: "ArraySize1_RBV"}
	return BuildContainer(config.DefaultConfig(), "", nil, names, nil, false)
}

func TestLiveSession_FramesReachSurface(t *testing.T) {
	c := testContainer(t)
	tr := channel.NewMemoryTransport()
	win := &mockLiveWindow{}
	s := &liveSession{window: win, surface: c.NewSurface(nil)}
	s.start(tr, c.LiveNames(), c.Live, nil)
	s.presenter.Enable()
	if !c.Live.Enabled() || len(win.editable) != 1 || win.editable[0] {
		t.Fatalf("enable must attach and lock config, states=%v editable=%v", win.states, win.editable)
	}

	_ = tr.Publish("SIM:image1:ArraySize0_RBV", 3)
	_ = tr.Publish("SIM:image1:ArraySize1_RBV", 2)
	_ = tr.Publish("SIM:image1:ArrayData", 1, 2, 3, 4, 5, 6)
	s.presenter.Tick(time.Now())

	got, ok := s.surface.Model.Data()
	if !ok || got.Shape() != (frame.Shape{Height: 2, Width: 3}) {
		t.Fatalf("expected 2x3 frame on the surface, got ok=%v %v", ok, got.Shape())
	}
	if text := s.counters(); !strings.Contains(text, "frames 1") || !strings.Contains(text, "shape (2,3)") {
		t.Fatalf("unexpected counters %q", text)
	}

	s.close()
	if c.Live.Enabled() || win.closed != 1 {
		t.Fatalf("close must detach and close the window")
	}
	if s.surface.Model.Subscribers() != 0 {
		t.Fatalf("controller still subscribed after close")
	}
	_ = tr.Publish("SIM:image1:ArrayData", 6, 5, 4, 3, 2, 1)
	s.presenter.Tick(time.Now())
	if s.adapter.Stats().Frames != 1 {
		t.Fatalf("closed session must not ingest")
	}
}

func TestLiveSession_TransformAppliesToLiveFrames(t *testing.T) {
	c := testContainer(t)
	reg, err := transform.NewRegistry(transform.Entry{
		Name:        "Offset",
		Description: "add 500",
		Fn: func(f frame.Frame) (frame.Frame, error) {
			out := make([]float64, len(f.Data()))
			for i, v := range f.Data() {
				out[i] = v + 500
			}
			return frame.Reshape(out, f.Shape().Height, f.Shape().Width)
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c.Registry = reg
	tr := channel.NewMemoryTransport()
	s := &liveSession{window: &mockLiveWindow{}, surface: c.NewSurface(nil)}
	s.start(tr, c.LiveNames(), c.Live, nil)
	s.presenter.Enable()
	if err := s.surface.Controller.ToggleTransform("Offset"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	_ = tr.Publish("SIM:image1:ArraySize0_RBV", 2)
	_ = tr.Publish("SIM:image1:ArraySize1_RBV", 1)
	_ = tr.Publish("SIM:image1:ArrayData", 1, 2)
	s.presenter.Tick(time.Now())

	got, _ := s.surface.Model.Data()
	if got.At(0, 0) != 501 || got.At(0, 1) != 502 {
		t.Fatalf("expected transformed frame got %v", got.Rows())
	}
	raw, _ := s.surface.Controller.Raw()
	if raw.At(0, 0) != 1 {
		t.Fatalf("raw frame must stay untransformed")
	}
	s.close()
}

func TestContainer_TransformChoicesAndTransport(t *testing.T) {
	c := testContainer(t)
	choices := c.TransformChoices()
	if len(choices) != len(c.Registry.Names()) || choices[0].Name != transform.None {
		t.Fatalf("unexpected choices %+v", choices)
	}

	tr, err := c.Transport(t.Context())
	if err != nil {
		t.Fatalf("transport: %v", err)
	}
	again, _ := c.Transport(t.Context())
	if tr != again {
		t.Fatalf("transport must be opened once")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestControllerStats_NilSurface(t *testing.T) {
	if controllerStats(nil) != nil {
		t.Fatalf("expected nil")
	}
}
