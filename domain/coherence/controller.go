// Package coherence keeps the raw frame, the selected transform and the
// displayed frame consistent while live data, host navigation and the user all
// change what a surface shows.
package coherence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soocke/pv-viewer-go/domain/frame"
	"github.com/soocke/pv-viewer-go/domain/transform"
)

// Phase is the controller lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Displaying
	Mutating
)

func (p Phase) String() string {
	switch p {
	case Displaying:
		return "displaying"
	case Mutating:
		return "mutating"
	default:
		return "idle"
	}
}

// Stats counts controller activity.
type Stats struct {
	Ingested          uint64
	Toggles           uint64
	ExternalRefreshes uint64 // external changes treated as the same image
	ExternalForeign   uint64 // external changes treated as an unrelated image
	Suppressed        uint64 // notifications ignored during own mutations
	TransformErrors   uint64
}

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	Phase       Phase
	Selection   string
	Enabled     bool
	Raw         frame.Shape
	HasRaw      bool
	Baseline    frame.Shape
	HasBaseline bool
	Stats       Stats
}

// Controller is the per-surface coherence state machine. One controller owns one
// sink. It must only be used from the UI context.
type Controller struct {
	registry *transform.Registry
	sink     Sink
	logger   *slog.Logger
	report   func(error)
	subID    string

	raw         frame.Frame
	hasRaw      bool
	baseline    frame.Shape
	hasBaseline bool
	enabled     bool
	selection   string
	suppressing bool
	phase       Phase
	// foreign is set when the sink shows an image the controller did not ingest
	// and that does not belong to the current session.
	foreign bool

	stats Stats
}

// NewController attaches a controller to sink. report receives non-fatal errors
// such as transform failures and may be nil.
func NewController(reg *transform.Registry, sink Sink, logger *slog.Logger, report func(error)) *Controller {
	c := &Controller{
		registry:  reg,
		sink:      sink,
		logger:    logger,
		report:    report,
		selection: transform.None,
	}
	c.subID = sink.SubscribeChange(c.OnExternalChange)
	return c
}

// Close detaches the controller from its sink.
func (c *Controller) Close() {
	if c == nil || c.subID == "" {
		return
	}
	c.sink.UnsubscribeChange(c.subID)
	c.subID = ""
}

// Ingest records f as the raw frame and displays it, transformed when a
// transform is enabled.
func (c *Controller) Ingest(f frame.Frame) error {
	c.stats.Ingested++
	c.raw, c.hasRaw = f, true
	c.foreign = false
	if c.enabled && !c.hasBaseline {
		c.baseline, c.hasBaseline = f.Shape(), true
	}
	err := c.display()
	c.phase = Displaying
	return err
}

// ToggleTransform selects the named transform; transform.None disables it.
// Unknown names return transform.ErrUnknownTransform and change nothing.
func (c *Controller) ToggleTransform(name string) error {
	if !c.registry.Has(name) {
		return fmt.Errorf("toggle %q: %w", name, transform.ErrUnknownTransform)
	}
	c.stats.Toggles++
	c.adoptForeign()

	if name == transform.None {
		c.enabled = false
		c.selection = transform.None
		if c.logger != nil {
			c.logger.Debug("transform disabled")
		}
		if !c.hasRaw {
			return nil
		}
		c.mutate(c.raw)
		c.phase = Displaying
		return nil
	}

	c.enabled = true
	c.selection = name
	if !c.hasRaw {
		return nil
	}
	if !c.hasBaseline || c.baseline != c.raw.Shape() {
		c.baseline, c.hasBaseline = c.raw.Shape(), true
		if c.logger != nil {
			c.logger.Debug("transform session started", "transform", name, "baseline", c.baseline.String())
		}
	}
	err := c.display()
	c.phase = Displaying
	return err
}

// OnExternalChange handles a sink change made by someone other than this
// controller. A content shape equal to the session baseline is a refresh of the
// same image; anything else is an unrelated image that is left untouched.
func (c *Controller) OnExternalChange() {
	if c.suppressing {
		c.stats.Suppressed++
		return
	}
	cur, ok := c.sink.Data()
	if !ok {
		return
	}
	if !c.hasBaseline || cur.Shape() != c.baseline {
		c.stats.ExternalForeign++
		c.foreign = true
		if c.logger != nil {
			c.logger.Debug("external image outside session", "shape", cur.Shape().String())
		}
		return
	}
	c.stats.ExternalRefreshes++
	c.raw, c.hasRaw = cur, true
	c.foreign = false
	if c.enabled {
		_ = c.display()
	}
	c.phase = Displaying
}

// adoptForeign makes an unrelated image shown by the host the new raw frame.
func (c *Controller) adoptForeign() {
	if !c.foreign {
		return
	}
	c.foreign = false
	if cur, ok := c.sink.Data(); ok {
		c.raw, c.hasRaw = cur, true
		c.phase = Displaying
	}
}

// display pushes the raw frame, transformed when enabled. A transform failure
// displays the raw frame, is reported and returned; the transform stays enabled.
func (c *Controller) display() error {
	if !c.enabled {
		c.mutate(c.raw)
		return nil
	}
	out, err := c.apply(c.raw)
	if err != nil {
		c.stats.TransformErrors++
		if c.logger != nil {
			c.logger.Error("transform failed, showing raw frame", "transform", c.selection, "shape", c.raw.Shape().String(), "error", err)
		}
		if c.report != nil {
			c.report(err)
		}
		c.mutate(c.raw)
		return err
	}
	c.mutate(out)
	return nil
}

func (c *Controller) apply(f frame.Frame) (frame.Frame, error) {
	fn, err := c.registry.Get(c.selection)
	if err != nil {
		return frame.Frame{}, err
	}
	out, err := fn(f)
	if err != nil {
		var te *transform.TransformError
		if !errors.As(err, &te) {
			err = &transform.TransformError{Model: c.selection, Shape: f.Shape(), Reason: err.Error()}
		}
		return frame.Frame{}, err
	}
	return out.WithSeq(f.Seq()), nil
}

// mutate is the only place the controller writes to the sink.
func (c *Controller) mutate(f frame.Frame) {
	prev := c.phase
	c.phase = Mutating
	c.suppressing = true
	defer func() {
		c.suppressing = false
		c.phase = prev
	}()
	c.sink.SetData(f)
}

// Raw returns the current raw frame.
func (c *Controller) Raw() (frame.Frame, bool) { return c.raw, c.hasRaw }

// Baseline returns the shape that started the current transform session.
func (c *Controller) Baseline() (frame.Shape, bool) { return c.baseline, c.hasBaseline }

func (c *Controller) Enabled() bool     { return c.enabled }
func (c *Controller) Selection() string { return c.selection }
func (c *Controller) Phase() Phase      { return c.phase }
func (c *Controller) Stats() Stats      { return c.stats }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Phase:       c.phase,
		Selection:   c.selection,
		Enabled:     c.enabled,
		Raw:         c.raw.Shape(),
		HasRaw:      c.hasRaw,
		Baseline:    c.baseline,
		HasBaseline: c.hasBaseline,
		Stats:       c.stats,
	}
}
