package view

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
	"github.com/eliasnord/neonpane/internal/state"
)

// DebounceInterval is the quiet window that collapses bursts of change
// notifications into a single render.
const DebounceInterval = 150 * time.Millisecond

// Renderer is the presentation layer as the controller sees it.
type Renderer interface {
	// RenderSignIn shows the sign-in surface.
	RenderSignIn()

	// Render shows the normal view for the given snapshot.
	Render(snap state.Snapshot)
}

// AuthState is the slice of the token source the controller needs.
type AuthState interface {
	Authenticated() bool
	OnAuthChanged(listener func()) domain.Subscription
}

// Controller is the only component that talks to the presentation layer. It
// reads the selection machine and the auth state and decides what to render.
// At most one render is ever in flight; update requests arriving meanwhile
// are dropped, not queued.
type Controller struct {
	machine  *state.Machine
	auth     AuthState
	renderer Renderer

	inFlight  atomic.Bool
	debouncer *Debouncer
	sub       domain.Subscription
}

func NewController(machine *state.Machine, auth AuthState, renderer Renderer) *Controller {
	c := &Controller{
		machine:  machine,
		auth:     auth,
		renderer: renderer,
	}
	c.debouncer = NewDebouncer(DebounceInterval, c.RequestUpdate)
	return c
}

// Start subscribes to auth-state changes. A sign-out resets the selection and
// repaints immediately; a sign-in rebuilds the organization list first.
func (c *Controller) Start(ctx context.Context) {
	c.sub = c.auth.OnAuthChanged(func() {
		if !c.auth.Authenticated() {
			logger.Log("View: Auth lost, resetting")
			c.machine.Reset()
			c.RequestUpdate()
			return
		}

		logger.Log("View: Authenticated, rebuilding")
		go func() {
			if err := c.machine.RefreshOrganizations(ctx); err != nil {
				logger.LogError("REFRESH_ORGS", "auth-change", err)
			}
			c.RequestUpdate()
		}()
	})
}

// Close releases the auth subscription and any pending debounce timer.
func (c *Controller) Close() {
	if c.sub != nil {
		c.sub.Close()
	}
	c.debouncer.Stop()
}

// RequestUpdate schedules a render of the current state. Idempotent while a
// render is in progress: the extra request is a no-op.
func (c *Controller) RequestUpdate() {
	if !c.inFlight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.inFlight.Store(false)
		c.render()
	}()
}

// RequestUpdateDebounced coalesces bursts of triggers into one render per
// quiet interval.
func (c *Controller) RequestUpdateDebounced() {
	c.debouncer.Trigger()
}

func (c *Controller) render() {
	// The sign-in surface is the last line of defense: anything unexpected
	// during a render resolves to it rather than a broken partial view.
	defer func() {
		if r := recover(); r != nil {
			logger.Log("View: Render panicked (%v), falling back to sign-in", r)
			c.renderer.RenderSignIn()
		}
	}()

	if !c.auth.Authenticated() {
		c.renderer.RenderSignIn()
		return
	}

	c.renderer.Render(c.machine.Snapshot())
}

// Debouncer collapses rapid triggers into a single execution once the quiet
// interval elapses.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
