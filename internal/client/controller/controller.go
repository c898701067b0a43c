// Package controller is the root of the client: it keeps the cached
// session, routes the user after every session change and shows the app
// lock overlay on top of signed-in screens.
//
// All inputs (session changes, lifecycle transitions, lock state changes
// and user navigation) are funnelled through one ordered queue and handled
// on a single goroutine.
package controller

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/applock"
	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/client/lifecycle"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/routing"
	"github.com/dmitrijs2005/orbit/internal/client/session"
	"github.com/dmitrijs2005/orbit/internal/logging"
)

// LockPolicy is the part of applock.Policy the controller drives.
type LockPolicy interface {
	Initialize(ctx context.Context)
	OnAppForeground()
	Locked() bool
	Capability() biometric.Capability
	Challenge(ctx context.Context) bool
	LastError() string
	Changes(fn func(applock.State)) events.Subscription
}

type Lifecycle interface {
	Subscribe(fn func(lifecycle.Transition)) events.Subscription
}

// Overlay describes the lock screen.
type Overlay struct {
	Visible bool
	Hint    string
	Error   string
}

type Controller struct {
	store     session.Store
	policy    LockPolicy
	nav       *routing.Navigator
	lifecycle Lifecycle
	logger    logging.Logger

	inbox    *events.Stream[func()]
	overlays *events.Stream[Overlay]

	mu      sync.Mutex
	session *models.Session
	overlay Overlay
	mounted bool
	pending bool
	subs    []events.Subscription
}

func New(store session.Store, policy LockPolicy, nav *routing.Navigator, lc Lifecycle, logger logging.Logger) *Controller {
	return &Controller{
		store:     store,
		policy:    policy,
		nav:       nav,
		lifecycle: lc,
		logger:    logger,
		inbox:     events.NewStream[func()](),
		overlays:  events.NewStream[Overlay](),
	}
}

// Start initializes the lock policy, loads the session, makes the first
// routing decision and then subscribes to all event sources.
func (c *Controller) Start(ctx context.Context) {
	c.policy.Initialize(ctx)

	s, err := c.store.GetSession(ctx)
	if err != nil {
		c.logger.Warn(ctx, "cannot load session", "error", err)
		s = nil
	}

	c.subs = append(c.subs, c.inbox.Subscribe(func(fn func()) { fn() }))
	c.inbox.Publish(func() { c.onSession(ctx, s) })
	c.inbox.Flush()

	c.subs = append(c.subs,
		c.store.OnSessionChange(func(s *models.Session) {
			c.inbox.Publish(func() { c.onSession(ctx, s) })
		}),
		c.lifecycle.Subscribe(func(t lifecycle.Transition) {
			c.inbox.Publish(func() { c.onLifecycle(ctx, t) })
		}),
		c.policy.Changes(func(applock.State) {
			c.inbox.Publish(c.refreshOverlay)
		}),
	)
}

// Stop unsubscribes from every source and stops the event loop.
func (c *Controller) Stop() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
	c.inbox.Close()
	<-c.inbox.Done()
	c.overlays.Close()
}

func (c *Controller) onSession(ctx context.Context, s *models.Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	before := c.nav.Location()
	if c.nav.Evaluate(s) {
		c.logger.Info(ctx, "route changed", "from", before.Path(), "to", c.nav.Location().Path())
	}
	c.refreshOverlay()
}

func (c *Controller) onLifecycle(ctx context.Context, t lifecycle.Transition) {
	c.logger.Debug(ctx, "app state changed", "from", t.Prev.String(), "to", t.Next.String())
	if lifecycle.IsForegroundTransition(t.Prev, t.Next) {
		c.policy.OnAppForeground()
	}
}

// refreshOverlay recomputes the lock overlay. Mounting the overlay arms a
// single automatic challenge, see AutoUnlock.
func (c *Controller) refreshOverlay() {
	c.mu.Lock()
	visible := c.session != nil && c.policy.Locked()
	switch {
	case visible && !c.mounted:
		c.mounted = true
		c.pending = true
	case !visible:
		c.mounted = false
		c.pending = false
	}

	ov := Overlay{Visible: visible}
	if visible {
		ov.Hint = applock.UnlockHint(c.policy.Capability())
		ov.Error = c.policy.LastError()
	}
	changed := ov != c.overlay
	c.overlay = ov
	c.mu.Unlock()

	if changed {
		c.overlays.Publish(ov)
	}
}

// Navigate moves to route on user request and re-applies the routing
// rules for the new location.
func (c *Controller) Navigate(ctx context.Context, route string) {
	c.inbox.Publish(func() {
		c.nav.Navigate(route)

		c.mu.Lock()
		s := c.session
		c.mu.Unlock()
		c.nav.Evaluate(s)
	})
	c.inbox.Flush()
}

// AutoUnlock runs the challenge armed by the last overlay mount, at most
// once per mount. It reports whether the app got unlocked.
func (c *Controller) AutoUnlock(ctx context.Context) bool {
	c.mu.Lock()
	pending := c.pending
	c.pending = false
	c.mu.Unlock()

	if !pending {
		return false
	}
	return c.Unlock(ctx)
}

// Unlock is the manual retry of the lock overlay.
func (c *Controller) Unlock(ctx context.Context) bool {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()

	ok := c.policy.Challenge(ctx)
	c.inbox.Publish(c.refreshOverlay)
	c.inbox.Flush()
	return ok
}

func (c *Controller) Session() *models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) Overlay() Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay
}

func (c *Controller) OverlayVisible() bool {
	return c.Overlay().Visible
}

func (c *Controller) Location() routing.Location {
	return c.nav.Location()
}

// OnOverlayChange registers fn for overlay changes.
func (c *Controller) OnOverlayChange(fn func(Overlay)) events.Subscription {
	return c.overlays.Subscribe(fn)
}

// Flush waits until every queued event has been handled.
func (c *Controller) Flush() {
	c.inbox.Flush()
	c.overlays.Flush()
}
