// Package livestream drives recognition against a stream of frames,
// pausing result churn while the same identity stays in front of the
// camera and resuming as soon as it changes or disappears.
package livestream

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/facegate/internal/recognition"
)

// State is the controller's capture state.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// FrameSource produces single frames on demand.
type FrameSource interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Recognizer submits one ephemeral frame for recognition.
type Recognizer interface {
	RecognizeFrame(ctx context.Context, frame []byte) (*recognition.Outcome, error)
}

// Hooks are optional observer callbacks. All of them are invoked from
// the controller's own goroutines.
type Hooks struct {
	// OnStateChange fires on every state transition.
	OnStateChange func(state State)
	// OnResult fires for every recognition response while active.
	OnResult func(outcome *recognition.Outcome)
	// OnOverlay redraws the display. While paused it fires at the
	// overlay refresh rate with the last known result; on stop it
	// fires once with nil to clear.
	OnOverlay func(outcome *recognition.Outcome)
}

// Options configure a Controller.
type Options struct {
	// CaptureInterval is the delay between frame submissions (default 1s).
	CaptureInterval time.Duration
	// OverlayRefresh is the redraw period while paused (default 100ms).
	OverlayRefresh time.Duration
	Hooks          Hooks
}

// Controller runs the capture loop. One controller serves one session;
// Start and Stop bracket its lifetime.
type Controller struct {
	source   FrameSource
	rec      Recognizer
	interval time.Duration
	refresh  time.Duration
	hooks    Hooks

	mu       sync.Mutex
	state    State
	lastID   int64 // 0 means no identity seen
	lastSeen *recognition.Outcome
	inFlight bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewController wires a frame source to a recognizer.
func NewController(source FrameSource, rec Recognizer, opts Options) *Controller {
	if opts.CaptureInterval <= 0 {
		opts.CaptureInterval = time.Second
	}
	if opts.OverlayRefresh <= 0 {
		opts.OverlayRefresh = 100 * time.Millisecond
	}
	return &Controller{
		source:   source,
		rec:      rec,
		interval: opts.CaptureInterval,
		refresh:  opts.OverlayRefresh,
		hooks:    opts.Hooks,
		state:    StateIdle,
	}
}

// State returns the current capture state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins periodic capture. It is a no-op if already running.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateActive
	c.mu.Unlock()

	c.notifyState(StateActive)
	go c.run(runCtx)
}

// Stop ends the session. Capture and overlay redraw cease and the
// overlay is cleared. Safe to call multiple times.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.state = StateIdle
	c.lastID = 0
	c.lastSeen = nil
	c.mu.Unlock()

	c.notifyState(StateIdle)
	if c.hooks.OnOverlay != nil {
		c.hooks.OnOverlay(nil)
	}
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	capture := time.NewTicker(c.interval)
	defer capture.Stop()
	overlay := time.NewTicker(c.refresh)
	defer overlay.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-capture.C:
			c.submit(ctx)
		case <-overlay.C:
			c.redraw()
		}
	}
}

// submit captures and recognizes one frame. A tick that arrives while a
// previous request is still pending is skipped so slow backends do not
// pile up in-flight calls.
func (c *Controller) submit(ctx context.Context) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.inFlight = false
			c.mu.Unlock()
		}()

		frame, err := c.source.Capture(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("livestream: frame capture failed: %v", err)
			}
			return
		}

		outcome, err := c.rec.RecognizeFrame(ctx, frame)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("livestream: recognition failed: %v", err)
			}
			c.handleOutcome(nil)
			return
		}
		c.handleOutcome(outcome)
	}()
}

// handleOutcome applies the pause/resume state machine. Pausing takes
// two consecutive responses with the same identity: the first one
// records it, the second one confirms stability. Any different
// identity, or a frame with no recognized face, resumes immediately.
func (c *Controller) handleOutcome(outcome *recognition.Outcome) {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}

	prev := c.state
	recognized := outcome != nil && outcome.Recognized && outcome.Person != nil
	switch {
	case recognized && outcome.Person.ID == c.lastID:
		if c.state == StateActive {
			c.state = StatePaused
		}
		c.lastSeen = outcome
	case recognized:
		c.lastID = outcome.Person.ID
		c.lastSeen = outcome
		if c.state == StatePaused {
			c.state = StateActive
		}
	default:
		c.lastID = 0
		c.lastSeen = nil
		if c.state == StatePaused {
			c.state = StateActive
		}
	}
	state := c.state
	c.mu.Unlock()

	if state != prev {
		c.notifyState(state)
	}
	if c.hooks.OnResult != nil {
		c.hooks.OnResult(outcome)
	}
	if c.hooks.OnOverlay != nil {
		c.hooks.OnOverlay(outcome)
	}
}

// redraw keeps the overlay fresh between responses while paused.
func (c *Controller) redraw() {
	c.mu.Lock()
	paused := c.state == StatePaused
	last := c.lastSeen
	c.mu.Unlock()

	if paused && last != nil && c.hooks.OnOverlay != nil {
		c.hooks.OnOverlay(last)
	}
}

func (c *Controller) notifyState(state State) {
	if c.hooks.OnStateChange != nil {
		c.hooks.OnStateChange(state)
	}
}
