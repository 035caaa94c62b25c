package coherence

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/soocke/pv-viewer-go/domain/frame"
	"github.com/soocke/pv-viewer-go/domain/source"
	"github.com/soocke/pv-viewer-go/domain/transform"
)

// fakeSink notifies handlers synchronously like the real image model.
type fakeSink struct {
	data     frame.Frame
	has      bool
	handlers map[string]func()
	next     int
	sets     int
}

func newFakeSink() *fakeSink { return &fakeSink{handlers: map[string]func(){}} }

func (s *fakeSink) Data() (frame.Frame, bool) { return s.data, s.has }

func (s *fakeSink) SetData(f frame.Frame) {
	s.data, s.has = f, true
	s.sets++
	for _, h := range s.handlers {
		h()
	}
}

func (s *fakeSink) SubscribeChange(fn func()) string {
	s.next++
	id := fmt.Sprintf("h%d", s.next)
	s.handlers[id] = fn
	return id
}

func (s *fakeSink) UnsubscribeChange(id string) { delete(s.handlers, id) }

func addConstant(k float64) transform.Func {
	return func(f frame.Frame) (frame.Frame, error) {
		out := make([]float64, len(f.Data()))
		for i, v := range f.Data() {
			out[i] = v + k
		}
		return frame.New(f.Shape().Height, f.Shape().Width, out)
	}
}

func failing(frame.Frame) (frame.Frame, error) {
	return frame.Frame{}, errors.New("unsupported geometry")
}

func newTestController(t *testing.T) (*Controller, *fakeSink, *[]error) {
	t.Helper()
	return newLoggedController(t, nil)
}

func newLoggedController(t *testing.T, logger *slog.Logger) (*Controller, *fakeSink, *[]error) {
	t.Helper()
	reg, err := transform.NewRegistry(
		transform.Entry{Name: "ModelA", Description: "add 500", Fn: addConstant(500)},
		transform.Entry{Name: "ModelB", Description: "add 100", Fn: addConstant(100)},
		transform.Entry{Name: "Broken", Description: "always fails", Fn: failing},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	sink := newFakeSink()
	var reported []error
	c := NewController(reg, sink, logger, func(err error) { reported = append(reported, err) })
	return c, sink, &reported
}

func shown(t *testing.T, s *fakeSink) [][]float64 {
	t.Helper()
	f, ok := s.Data()
	if !ok {
		t.Fatalf("sink is empty")
	}
	return f.Rows()
}

func sameRows(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func square(n int, v float64) frame.Frame {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = v + float64(i%7)
	}
	f, _ := frame.New(n, n, data)
	return f
}

func TestController_EndToEndAddConstant(t *testing.T) {
	c, sink, _ := newTestController(t)
	raw := [][]float64{{1, 2}, {3, 4}}

	if err := c.Ingest(frame.MustFromRows(raw)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := shown(t, sink); !sameRows(got, raw) {
		t.Fatalf("disabled display got=%v", got)
	}
	if err := c.ToggleTransform("ModelA"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := shown(t, sink); !sameRows(got, [][]float64{{501, 502}, {503, 504}}) {
		t.Fatalf("transformed display got=%v", got)
	}
	if err := c.ToggleTransform(transform.None); err != nil {
		t.Fatalf("toggle none: %v", err)
	}
	if got := shown(t, sink); !sameRows(got, raw) {
		t.Fatalf("restored display got=%v", got)
	}
}

func TestController_ToggleIdempotence(t *testing.T) {
	c, sink, _ := newTestController(t)
	raw := square(16, 0.25)
	_ = c.Ingest(raw)
	_ = c.ToggleTransform("ModelA")
	_ = c.ToggleTransform(transform.None)
	got, _ := sink.Data()
	if !got.Equal(raw) {
		t.Fatalf("sink content differs from raw after toggling off")
	}
	if r, _ := c.Raw(); !r.Equal(raw) {
		t.Fatalf("raw frame changed by toggling")
	}
}

func TestController_NoRecursiveMutation(t *testing.T) {
	c, sink, _ := newTestController(t)
	_ = c.Ingest(square(4, 1))
	_ = c.ToggleTransform("ModelA")
	_ = c.Ingest(square(4, 2))
	_ = c.ToggleTransform(transform.None)

	st := c.Stats()
	if st.ExternalRefreshes != 0 || st.ExternalForeign != 0 {
		t.Fatalf("own setData reached the mutating branch: %+v", st)
	}
	if st.Suppressed != uint64(sink.sets) {
		t.Fatalf("expected every own notification suppressed: suppressed=%d sets=%d", st.Suppressed, sink.sets)
	}

	// An external change runs the mutating branch exactly once even though it
	// pushes a re-transformed frame back into the sink.
	_ = c.ToggleTransform("ModelA")
	before := c.Stats()
	sink.SetData(square(4, 3))
	after := c.Stats()
	if after.ExternalRefreshes-before.ExternalRefreshes != 1 {
		t.Fatalf("mutating branch ran %d times", after.ExternalRefreshes-before.ExternalRefreshes)
	}
	if c.Phase() != Displaying {
		t.Fatalf("phase got=%v", c.Phase())
	}
}

func TestController_ExternalRefreshReappliesTransform(t *testing.T) {
	c, sink, _ := newTestController(t)
	_ = c.Ingest(frame.MustFromRows([][]float64{{1, 2}, {3, 4}}))
	_ = c.ToggleTransform("ModelA")

	sink.SetData(frame.MustFromRows([][]float64{{10, 20}, {30, 40}}))

	if got := shown(t, sink); !sameRows(got, [][]float64{{510, 520}, {530, 540}}) {
		t.Fatalf("refresh not re-transformed: %v", got)
	}
	if r, _ := c.Raw(); !sameRows(r.Rows(), [][]float64{{10, 20}, {30, 40}}) {
		t.Fatalf("raw not updated on refresh: %v", r.Rows())
	}
}

func TestController_ExternalRefreshWhileDisabled(t *testing.T) {
	c, sink, _ := newTestController(t)
	_ = c.Ingest(frame.MustFromRows([][]float64{{1, 2}, {3, 4}}))
	_ = c.ToggleTransform("ModelA")
	_ = c.ToggleTransform(transform.None)
	setsBefore := sink.sets

	host := [][]float64{{10, 20}, {30, 40}}
	sink.SetData(frame.MustFromRows(host))

	if sink.sets-setsBefore != 1 {
		t.Fatalf("disabled refresh must not push, sets=%d", sink.sets-setsBefore)
	}
	if got := shown(t, sink); !sameRows(got, host) {
		t.Fatalf("host content replaced: %v", got)
	}
	if r, _ := c.Raw(); !sameRows(r.Rows(), host) {
		t.Fatalf("raw not updated on refresh: %v", r.Rows())
	}
	if st := c.Stats(); st.ExternalRefreshes != 1 || st.ExternalForeign != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}

	_ = c.ToggleTransform("ModelA")
	if got := shown(t, sink); !sameRows(got, [][]float64{{510, 520}, {530, 540}}) {
		t.Fatalf("toggle did not use refreshed raw: %v", got)
	}
}

func TestController_BaselineSetOncePerSession(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, sink, _ := newLoggedController(t, logger)
	_ = c.Ingest(frame.MustFromRows([][]float64{{1, 2}, {3, 4}}))

	_ = c.ToggleTransform("ModelA")
	_ = c.ToggleTransform(transform.None)
	_ = c.ToggleTransform("ModelA")
	_ = c.ToggleTransform("ModelB")

	if b, ok := c.Baseline(); !ok || b != (frame.Shape{Height: 2, Width: 2}) {
		t.Fatalf("baseline got=%v ok=%v", b, ok)
	}
	if n := strings.Count(buf.String(), "transform session started"); n != 1 {
		t.Fatalf("baseline set %d times, want once", n)
	}
	if got := shown(t, sink); !sameRows(got, [][]float64{{101, 102}, {103, 104}}) {
		t.Fatalf("switched model display got=%v", got)
	}

	// A frame of a new shape starts a new session on the next toggle.
	_ = c.Ingest(square(3, 0))
	_ = c.ToggleTransform("ModelA")
	if b, _ := c.Baseline(); b != (frame.Shape{Height: 3, Width: 3}) {
		t.Fatalf("new shape must reset baseline, got=%v", b)
	}
	if n := strings.Count(buf.String(), "transform session started"); n != 2 {
		t.Fatalf("session starts got=%d", n)
	}
}

func TestController_BaselineShapeScenario(t *testing.T) {
	c, sink, _ := newTestController(t)
	big := square(512, 1)
	_ = c.Ingest(big)
	if err := c.ToggleTransform("ModelA"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if b, ok := c.Baseline(); !ok || b != (frame.Shape{Height: 512, Width: 512}) {
		t.Fatalf("baseline got=%v %v", b, ok)
	}

	small := square(256, 7)
	sink.SetData(small)

	got, _ := sink.Data()
	if !got.Equal(small) {
		t.Fatalf("unrelated image must stay as displayed")
	}
	if r, _ := c.Raw(); !r.Equal(big) {
		t.Fatalf("raw frame must not be replaced by unrelated image")
	}
	if c.Stats().ExternalForeign != 1 {
		t.Fatalf("expected one foreign change, got %+v", c.Stats())
	}

	// The next explicit toggle adopts the new image and starts a new session.
	if err := c.ToggleTransform("ModelA"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if b, _ := c.Baseline(); b != (frame.Shape{Height: 256, Width: 256}) {
		t.Fatalf("baseline not reset, got=%v", b)
	}
	got, _ = sink.Data()
	if got.At(0, 0) != small.At(0, 0)+500 {
		t.Fatalf("new session not transformed: %v", got.At(0, 0))
	}
}

func TestController_TransformErrorFallsBackToRaw(t *testing.T) {
	c, sink, reported := newTestController(t)
	raw := frame.MustFromRows([][]float64{{1, 2}, {3, 4}})
	_ = c.Ingest(raw)

	err := c.ToggleTransform("Broken")
	var te *transform.TransformError
	if !errors.As(err, &te) || te.Model != "Broken" {
		t.Fatalf("expected TransformError got=%v", err)
	}
	if got, _ := sink.Data(); !got.Equal(raw) {
		t.Fatalf("expected raw display on failure")
	}
	if !c.Enabled() || c.Selection() != "Broken" {
		t.Fatalf("transform must stay enabled after failure")
	}
	if len(*reported) != 1 {
		t.Fatalf("expected one reported error got=%d", len(*reported))
	}
	if err := c.Ingest(raw); err == nil {
		t.Fatalf("next frame should retry the transform")
	}
	if c.Stats().TransformErrors != 2 {
		t.Fatalf("transform errors got=%d", c.Stats().TransformErrors)
	}
}

func TestController_UnknownTransform(t *testing.T) {
	c, sink, _ := newTestController(t)
	_ = c.Ingest(frame.MustFromRows([][]float64{{1}}))
	sets := sink.sets
	if err := c.ToggleTransform("nope"); !errors.Is(err, transform.ErrUnknownTransform) {
		t.Fatalf("expected ErrUnknownTransform got=%v", err)
	}
	if c.Enabled() || sink.sets != sets || c.Stats().Toggles != 0 {
		t.Fatalf("unknown transform changed state")
	}
}

func TestController_EnabledBeforeFirstFrame(t *testing.T) {
	c, sink, _ := newTestController(t)
	if err := c.ToggleTransform("ModelA"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if sink.sets != 0 || c.Phase() != Idle {
		t.Fatalf("nothing should be displayed before a frame arrives")
	}
	_ = c.Ingest(frame.MustFromRows([][]float64{{1, 2}}))
	if got := shown(t, sink); !sameRows(got, [][]float64{{501, 502}}) {
		t.Fatalf("got=%v", got)
	}
	if b, ok := c.Baseline(); !ok || b != (frame.Shape{Height: 1, Width: 2}) {
		t.Fatalf("baseline got=%v %v", b, ok)
	}
}

func TestController_ReshapeContractThroughAdapter(t *testing.T) {
	c, sink, _ := newTestController(t)
	a := source.NewAdapter(nil)
	a.OnFrame(func(f frame.Frame) { _ = c.Ingest(f) })
	a.OnDimensionUpdate(source.Height, 2)
	a.OnDimensionUpdate(source.Width, 2)

	if err := a.OnRawValue([]float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("reshape: %v", err)
	}
	if got := shown(t, sink); !sameRows(got, [][]float64{{1, 2}, {3, 4}}) {
		t.Fatalf("got=%v", got)
	}
	err := a.OnRawValue([]float64{1, 2, 3})
	var re *frame.ReshapeError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReshapeError got=%v", err)
	}
	if got := shown(t, sink); !sameRows(got, [][]float64{{1, 2}, {3, 4}}) {
		t.Fatalf("previous display not retained: %v", got)
	}
}

func TestController_CloseUnsubscribes(t *testing.T) {
	c, sink, _ := newTestController(t)
	c.Close()
	c.Close()
	if len(sink.handlers) != 0 {
		t.Fatalf("handler still registered")
	}
	sink.SetData(frame.MustFromRows([][]float64{{1}}))
	if c.Stats().ExternalForeign != 0 {
		t.Fatalf("closed controller observed a change")
	}
}
