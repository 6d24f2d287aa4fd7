// Package rotation cycles signage entries on one-shot timers.
package rotation

import (
	"sync"
	"time"

	"menuboard/internal"
)

type Kind string

const (
	KindPromo   Kind = "promo"
	KindSummary Kind = "summary"
	KindQR      Kind = "qr"
)

// Entry is one screen of the rotation. Duration zero means the controller's
// default.
type Entry struct {
	Kind     Kind           `json:"kind"`
	Item     *internal.Item `json:"item,omitempty"`
	Title    string         `json:"title,omitempty"`
	Lines    []string       `json:"lines,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Frame is what the render callback receives. Empty frames carry no entry
// and mean "nothing to show".
type Frame struct {
	Entry    *Entry        `json:"entry,omitempty"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Empty    bool          `json:"empty"`
	ShownAt  time.Time     `json:"shownAt"`
	Duration time.Duration `json:"duration"`
}

type RenderFunc func(Frame)

type Option func(*Controller)

func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// Controller shows entries[i] for that entry's duration, then i+1, looping.
// Every Load tears down the pending timer and restarts from index 0.
//
// Render calls are serialized and never overlap. The render callback may
// read Current or Progress and may call Stop, but must not call Load.
type Controller struct {
	clock           Clock
	render          RenderFunc
	defaultDuration time.Duration

	renderMu sync.Mutex

	mu      sync.Mutex
	entries []Entry
	index   int
	gen     uint64
	timer   Timer
	current Frame
}

func New(render RenderFunc, defaultDuration time.Duration, opts ...Option) *Controller {
	if render == nil {
		render = func(Frame) {}
	}
	if defaultDuration <= 0 {
		defaultDuration = 9 * time.Second
	}
	c := &Controller{clock: realClock{}, render: render, defaultDuration: defaultDuration}
	for _, opt := range opts {
		opt(c)
	}
	c.current = Frame{Empty: true}
	return c
}

// Load replaces the entry list. An empty list puts the controller in the
// idle state: one empty frame is rendered and no timer is armed.
func (c *Controller) Load(entries []Entry) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	c.stopLocked()
	c.entries = append([]Entry(nil), entries...)
	c.index = 0
	gen := c.gen
	frame := c.frameLocked()
	c.mu.Unlock()

	c.show(gen, frame)
}

// Stop cancels the pending timer and leaves the last frame in place.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) Current() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Progress is the elapsed fraction of the current frame, in [0, 1].
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.Empty || c.current.Duration <= 0 {
		return 0
	}
	p := float64(c.clock.Now().Sub(c.current.ShownAt)) / float64(c.current.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Idle reports whether there is nothing to rotate.
func (c *Controller) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries) == 0
}

func (c *Controller) tick(gen uint64) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if gen != c.gen || len(c.entries) == 0 {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.index = (c.index + 1) % len(c.entries)
	frame := c.frameLocked()
	c.mu.Unlock()

	c.show(gen, frame)
}

// show renders frame and then arms the timer for it, unless a Stop or Load
// intervened while rendering.
func (c *Controller) show(gen uint64, frame Frame) {
	c.render(frame)
	if frame.Empty {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.timer = c.clock.AfterFunc(frame.Duration, func() { c.tick(gen) })
}

func (c *Controller) frameLocked() Frame {
	now := c.clock.Now()
	if len(c.entries) == 0 {
		c.current = Frame{Empty: true, ShownAt: now}
		return c.current
	}
	e := c.entries[c.index]
	d := e.Duration
	if d <= 0 {
		d = c.defaultDuration
	}
	c.current = Frame{Entry: &e, Index: c.index, Total: len(c.entries), ShownAt: now, Duration: d}
	return c.current
}

func (c *Controller) stopLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
