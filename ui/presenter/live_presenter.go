package presenter

import (
	"errors"
	"fmt"
	"time"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// LiveModel provides attached state access.
type LiveModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// LiveFeed narrows what the presenter needs from the live channel feed.
type LiveFeed interface {
	Start() error
	Stop()
	Drain() error
}

// LiveView updates UI elements affected by attaching the live channels.
type LiveView interface {
	SetLiveState(text string)
	ConfigEditable(bool)
}

// LivePresenter owns attaching and detaching a live image and pumps its
// channel updates on every tick.
type LivePresenter struct {
	model LiveModel
	feed  LiveFeed
	view  LiveView

	lastWarn string
}

func NewLivePresenter(model LiveModel, feed LiveFeed, view LiveView) *LivePresenter {
	return &LivePresenter{model: model, feed: feed, view: view}
}

// Enable attaches the channels. Idempotent.
func (c *LivePresenter) Enable() {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil {
		return
	}
	if c.model.Enabled() {
		return
	}
	if err := c.feed.Start(); err != nil {
		c.view.SetLiveState("Live: " + err.Error())
		return
	}
	c.model.SetEnabled(true)
	c.lastWarn = ""
	c.view.SetLiveState("Live: attached")
	c.view.ConfigEditable(false)
}

// Disable detaches the channels, keeping the last frame on screen. Idempotent.
func (c *LivePresenter) Disable() {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil {
		return
	}
	if !c.model.Enabled() {
		return
	}
	c.feed.Stop()
	c.model.SetEnabled(false)
	c.view.SetLiveState("Live: paused")
	c.view.ConfigEditable(true)
}

// Toggle flips attached state delegating to Enable/Disable.
func (c *LivePresenter) Toggle() {
	if c == nil || c.model == nil {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}

// Tick drains pending channel values into the adapter. Reshape failures are
// shown as a warning; the previous frame stays on screen.
func (c *LivePresenter) Tick(now time.Time) {
	if c == nil || c.model == nil || c.feed == nil || c.view == nil || !c.model.Enabled() {
		return
	}
	err := c.feed.Drain()
	var re *frame.ReshapeError
	switch {
	case err == nil:
		if c.lastWarn != "" {
			c.lastWarn = ""
			c.view.SetLiveState("Live: attached")
		}
	case errors.As(err, &re):
		warn := fmt.Sprintf("Live: dropped array (%v)", err)
		if warn != c.lastWarn {
			c.lastWarn = warn
			c.view.SetLiveState(warn)
		}
	default:
		c.lastWarn = "Live: " + err.Error()
		c.view.SetLiveState(c.lastWarn)
	}
}
